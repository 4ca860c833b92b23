package config

import (
	"errors"
	"fmt"
	"path"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIndexing(); err != nil {
		return err
	}
	if err := c.validateOverrides(); err != nil {
		return err
	}
	if err := c.validateConflicts(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	for name, value := range map[string]string{
		"paths.source_dir":   c.Paths.SourceDir,
		"paths.manifest_dir": c.Paths.ManifestDir,
		"paths.dest_dir":     c.Paths.DestDir,
		"paths.report_dir":   c.Paths.ReportDir,
		"paths.log_dir":      c.Paths.LogDir,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", name)
		}
	}
	if c.Paths.SourceDir == c.Paths.DestDir {
		return errors.New("paths.source_dir and paths.dest_dir must differ")
	}
	return nil
}

func (c *Config) validateIndexing() error {
	if c.Indexing.Workers <= 0 {
		return errors.New("indexing.workers must be positive")
	}
	return nil
}

func (c *Config) validateOverrides() error {
	for _, list := range [][]string{c.Overrides.ForceComplete, c.Overrides.ForceMoveOnly} {
		for _, pattern := range list {
			if _, err := path.Match(pattern, "probe"); err != nil {
				return fmt.Errorf("overrides pattern %q: %w", pattern, err)
			}
		}
	}
	// The same pattern in both lists always collides; per-manifest overlap
	// between distinct patterns is checked again before any manifest is
	// processed.
	for _, fc := range c.Overrides.ForceComplete {
		for _, fm := range c.Overrides.ForceMoveOnly {
			if fc == fm {
				return fmt.Errorf("overrides: pattern %q appears in both force_complete and force_move_only", fc)
			}
		}
	}
	return nil
}

func (c *Config) validateConflicts() error {
	if c.Conflicts.VerifyThreshold < 0 {
		return errors.New("conflicts.verify_threshold must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
