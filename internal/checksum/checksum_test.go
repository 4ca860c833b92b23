package checksum_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lading/internal/checksum"
)

func TestReaderKnownVector(t *testing.T) {
	sum, size, err := checksum.Reader(strings.NewReader("123456789"))
	if err != nil {
		t.Fatalf("Reader returned error: %v", err)
	}
	if sum != "CBF43926" {
		t.Fatalf("unexpected checksum: got %s want CBF43926", sum)
	}
	if size != 9 {
		t.Fatalf("unexpected size: got %d want 9", size)
	}
}

func TestReaderEmptyInput(t *testing.T) {
	sum, size, err := checksum.Reader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Reader returned error: %v", err)
	}
	if sum != "00000000" {
		t.Fatalf("unexpected checksum for empty input: %s", sum)
	}
	if size != 0 {
		t.Fatalf("unexpected size: %d", size)
	}
}

func TestFileMatchesReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("123456789"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sum, size, err := checksum.File(path)
	if err != nil {
		t.Fatalf("File returned error: %v", err)
	}
	if sum != "CBF43926" || size != 9 {
		t.Fatalf("unexpected result: %s %d", sum, size)
	}
}

func TestFileMissing(t *testing.T) {
	if _, _, err := checksum.File(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"cbf43926", "CBF43926", true},
		{"CBF43926", "CBF43926", true},
		{" cbf43926 ", "CBF43926", true},
		{"00000000", "00000000", true},
		{"cbf4392", "", false},
		{"cbf439261", "", false},
		{"cbf4392g", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := checksum.Normalize(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestKey(t *testing.T) {
	if got := checksum.Key("cbf43926", 9); got != "CBF43926:9" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := checksum.Key("00000000", 0); got != "00000000:0" {
		t.Fatalf("unexpected key: %s", got)
	}
}
