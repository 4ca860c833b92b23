package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"lading/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// The source, manifest, dest, and report directories are created; paths can
// be overridden through options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.ManifestDir = filepath.Join(base, "manifests")
	cfg.Paths.DestDir = filepath.Join(base, "dest")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Indexing.Workers = 2
	cfg.Conflicts.AutoConfirm = true

	for _, opt := range opts {
		opt(&cfg)
	}

	for _, dir := range []string{
		cfg.Paths.SourceDir,
		cfg.Paths.ManifestDir,
		cfg.Paths.DestDir,
		cfg.Paths.ReportDir,
		cfg.Paths.LogDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create test directory %s: %v", dir, err)
		}
	}
	return &cfg
}

// WithOverrides sets the completion override lists on the test config.
func WithOverrides(forceComplete, forceMoveOnly []string, allowEmpty bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Overrides.ForceComplete = forceComplete
		cfg.Overrides.ForceMoveOnly = forceMoveOnly
		cfg.Overrides.AllowEmptyForce = allowEmpty
	}
}

// WithVerifyThreshold tunes the conflict verification gate.
func WithVerifyThreshold(threshold int, autoConfirm bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conflicts.VerifyThreshold = threshold
		cfg.Conflicts.AutoConfirm = autoConfirm
	}
}
