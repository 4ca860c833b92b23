package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories a run operates over.
type Paths struct {
	// SourceDir is the root of the physical file pool to index.
	SourceDir string `toml:"source_dir"`
	// ManifestDir holds the manifest CSV files to reconcile.
	ManifestDir string `toml:"manifest_dir"`
	// DestDir is where complete manifest sets are relocated.
	DestDir string `toml:"dest_dir"`
	// ReportDir receives missing-files reports, conflict reports, and the
	// run ledger database.
	ReportDir string `toml:"report_dir"`
	LogDir    string `toml:"log_dir"`
}

// Indexing controls the candidate indexing phase.
type Indexing struct {
	// Workers bounds concurrent file-read+checksum operations.
	Workers int `toml:"workers"`
}

// Overrides contains the manifest-level completion override policies.
// A manifest name matching patterns in both lists is a configuration error.
type Overrides struct {
	// ForceComplete marks matching manifests Complete even when entries are
	// missing, provided at least one entry matched (or AllowEmptyForce).
	ForceComplete []string `toml:"force_complete"`
	// AllowEmptyForce lets a force-complete manifest complete with zero
	// matched entries.
	AllowEmptyForce bool `toml:"allow_empty_force"`
	// ForceMoveOnly moves the matched subset of matching manifests without
	// marking the manifest Complete or relocating the manifest file.
	ForceMoveOnly []string `toml:"force_move_only"`
}

// Conflicts controls the destination-collision verification pass.
type Conflicts struct {
	// VerifyThreshold is the unresolved-conflict count above which the
	// checksum verification pass asks for confirmation.
	VerifyThreshold int `toml:"verify_threshold"`
	// AutoConfirm skips the confirmation prompt.
	AutoConfirm bool `toml:"auto_confirm"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for lading.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Indexing  Indexing  `toml:"indexing"`
	Overrides Overrides `toml:"overrides"`
	Conflicts Conflicts `toml:"conflicts"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lading/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("lading.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. SourceDir and
// ManifestDir are inputs and must already exist; they are checked by
// preflight instead.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DestDir, c.Paths.ReportDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the run log file path under LogDir.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "lading.log")
}

// LedgerPath returns the SQLite run ledger path under ReportDir.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.ReportDir, "run.db")
}

// LockPath returns the run lock file path under ReportDir.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.ReportDir, "lading.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
