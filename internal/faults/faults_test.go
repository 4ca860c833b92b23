package faults_test

import (
	"errors"
	"strings"
	"testing"

	"lading/internal/faults"
)

func TestWrapTagsMarker(t *testing.T) {
	cause := errors.New("permission denied")
	err := faults.Wrap(faults.ErrChecksum, "indexing", "hash file", "a.bin", cause)
	if !errors.Is(err, faults.ErrChecksum) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
	for _, want := range []string{"indexing", "hash file", "a.bin", "permission denied"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("detail missing %q: %v", want, err)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := faults.Wrap(faults.ErrParse, "manifest", "parse row", "too few fields", nil)
	if !errors.Is(err, faults.ErrParse) {
		t.Fatalf("marker lost: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToMove(t *testing.T) {
	err := faults.Wrap(nil, "mover", "rename", "", errors.New("boom"))
	if !errors.Is(err, faults.ErrMove) {
		t.Fatalf("expected move marker: %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := faults.Wrap(faults.ErrConflict, "", "", "", nil)
	if !strings.Contains(err.Error(), "reconciliation failure") {
		t.Fatalf("expected placeholder detail: %v", err)
	}
}

func TestFatal(t *testing.T) {
	if !faults.Fatal(faults.Wrap(faults.ErrConfiguration, "preflight", "", "missing dir", nil)) {
		t.Fatal("configuration errors must be fatal")
	}
	for _, err := range []error{
		faults.ErrParse,
		faults.ErrManifestIO,
		faults.ErrChecksum,
		faults.ErrMove,
		faults.ErrConflict,
		nil,
	} {
		if faults.Fatal(err) {
			t.Fatalf("%v must not be fatal", err)
		}
	}
}
