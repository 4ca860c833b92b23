package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lading/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantSource := filepath.Join(tempHome, ".local", "share", "lading", "source")
	if cfg.Paths.SourceDir != wantSource {
		t.Fatalf("unexpected source dir: got %q want %q", cfg.Paths.SourceDir, wantSource)
	}
	if cfg.Indexing.Workers != 4 {
		t.Fatalf("unexpected default workers: %d", cfg.Indexing.Workers)
	}
	if cfg.Conflicts.VerifyThreshold != 25 {
		t.Fatalf("unexpected default threshold: %d", cfg.Conflicts.VerifyThreshold)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lading.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
source_dir = "`+filepath.Join(base, "in")+`"
manifest_dir = "`+filepath.Join(base, "manifests")+`"
dest_dir = "`+filepath.Join(base, "out")+`"
report_dir = "`+filepath.Join(base, "reports")+`"
log_dir = "`+filepath.Join(base, "logs")+`"

[indexing]
workers = 8

[overrides]
force_complete = ["box_*"]
allow_empty_force = true

[conflicts]
verify_threshold = 5
auto_confirm = true

[logging]
format = "json"
level = "debug"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q %v", resolved, exists)
	}
	if cfg.Indexing.Workers != 8 {
		t.Fatalf("workers not loaded: %d", cfg.Indexing.Workers)
	}
	if len(cfg.Overrides.ForceComplete) != 1 || !cfg.Overrides.AllowEmptyForce {
		t.Fatalf("overrides not loaded: %+v", cfg.Overrides)
	}
	if cfg.Conflicts.VerifyThreshold != 5 || !cfg.Conflicts.AutoConfirm {
		t.Fatalf("conflicts not loaded: %+v", cfg.Conflicts)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not loaded: %+v", cfg.Logging)
	}
}

func TestValidateRejectsSameSourceAndDest(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
source_dir = "`+base+`"
manifest_dir = "`+filepath.Join(base, "m")+`"
dest_dir = "`+base+`"
report_dir = "`+filepath.Join(base, "r")+`"
log_dir = "`+filepath.Join(base, "l")+`"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected same-dir rejection, got %v", err)
	}
}

func TestValidateRejectsPatternInBothOverrideLists(t *testing.T) {
	cfg := config.Default()
	cfg.Overrides.ForceComplete = []string{"box_*"}
	cfg.Overrides.ForceMoveOnly = []string{"box_*"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "both") {
		t.Fatalf("expected override collision rejection, got %v", err)
	}
}

func TestValidateRejectsBadPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Overrides.ForceComplete = []string{"[unterminated"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected bad pattern rejection")
	}
}

func TestValidateRejectsBadLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected format rejection")
	}
	cfg = config.Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected level rejection")
	}
}

func TestNormalizeClampsWorkers(t *testing.T) {
	base := t.TempDir()
	path := writeConfig(t, `
[paths]
source_dir = "`+filepath.Join(base, "in")+`"
manifest_dir = "`+filepath.Join(base, "m")+`"
dest_dir = "`+filepath.Join(base, "out")+`"
report_dir = "`+filepath.Join(base, "r")+`"
log_dir = "`+filepath.Join(base, "l")+`"

[indexing]
workers = -3
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Indexing.Workers != 4 {
		t.Fatalf("non-positive workers must fall back to default, got %d", cfg.Indexing.Workers)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config must load: %v %v", exists, err)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.ReportDir = "/reports"
	cfg.Paths.LogDir = "/logs"
	if cfg.LedgerPath() != filepath.Join("/reports", "run.db") {
		t.Fatalf("unexpected ledger path: %s", cfg.LedgerPath())
	}
	if cfg.LockPath() != filepath.Join("/reports", "lading.lock") {
		t.Fatalf("unexpected lock path: %s", cfg.LockPath())
	}
	if cfg.LogPath() != filepath.Join("/logs", "lading.log") {
		t.Fatalf("unexpected log path: %s", cfg.LogPath())
	}
}
