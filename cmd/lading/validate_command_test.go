package main

import (
	"errors"
	"path/filepath"
	"testing"

	"lading/internal/testsupport"
)

func TestValidateCommandRendersTable(t *testing.T) {
	cfg, configPath := newCLIConfig(t)
	manifestPath := testsupport.WriteManifest(t, cfg.Paths.ManifestDir, "box_set.csv",
		testsupport.ManifestRow("a.bin", "alpha", "discs/one", "first"),
		testsupport.ManifestRow("b.bin", "bravo", "", ""),
	)

	out, _, err := runCLI(t, []string{"validate", manifestPath}, configPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	requireContains(t, out, "box_set")
	requireContains(t, out, "Manifest")
	requireContains(t, out, "2")
}

func TestValidateCommandUnreadableManifestExitsPartial(t *testing.T) {
	_, configPath := newCLIConfig(t)
	absent := filepath.Join(t.TempDir(), "absent.csv")

	_, _, err := runCLI(t, []string{"validate", absent}, configPath)
	if err == nil {
		t.Fatal("expected error for unreadable manifest")
	}
	var exit *exitError
	if !errors.As(err, &exit) {
		t.Fatalf("expected exit error, got %T: %v", err, err)
	}
	if exit.code != 2 {
		t.Fatalf("unexpected exit code: %d", exit.code)
	}
	requireContains(t, exit.Error(), "could not be read")
}
