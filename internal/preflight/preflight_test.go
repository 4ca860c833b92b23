package preflight_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"lading/internal/config"
	"lading/internal/faults"
	"lading/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	res := preflight.CheckDirectoryAccess("Source directory", dir, preflight.ReadWrite)
	if !res.Passed {
		t.Fatalf("writable temp dir must pass: %+v", res)
	}

	res = preflight.CheckDirectoryAccess("Source directory", filepath.Join(dir, "absent"), preflight.ReadOnly)
	if res.Passed {
		t.Fatalf("missing dir must fail: %+v", res)
	}

	file := filepath.Join(dir, "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	res = preflight.CheckDirectoryAccess("Source directory", file, preflight.ReadOnly)
	if res.Passed {
		t.Fatalf("regular file must fail the directory check: %+v", res)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()

	res := preflight.CheckFreeSpace(dir, 1)
	if !res.Passed {
		t.Fatalf("one byte must fit: %+v", res)
	}

	// No filesystem holds this much.
	res = preflight.CheckFreeSpace(dir, 1<<62)
	if res.Passed {
		t.Fatalf("absurd requirement must fail: %+v", res)
	}
}

func TestRunAllAndGate(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.ManifestDir = filepath.Join(base, "manifests")
	cfg.Paths.DestDir = filepath.Join(base, "dest")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	for _, dir := range []string{cfg.Paths.SourceDir, cfg.Paths.ManifestDir, cfg.Paths.DestDir, cfg.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}

	results := preflight.RunAll(&cfg, false)
	if len(results) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(results))
	}
	if err := preflight.Gate(results); err != nil {
		t.Fatalf("all-pass gate returned error: %v", err)
	}

	// Remove one input directory: the gate must turn fatal.
	if err := os.RemoveAll(cfg.Paths.SourceDir); err != nil {
		t.Fatalf("remove source: %v", err)
	}
	err := preflight.Gate(preflight.RunAll(&cfg, false))
	if err == nil {
		t.Fatal("expected gate error")
	}
	if !errors.Is(err, faults.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
