package config

import "strings"

func (c *Config) normalize() error {
	var err error
	for _, field := range []*string{
		&c.Paths.SourceDir,
		&c.Paths.ManifestDir,
		&c.Paths.DestDir,
		&c.Paths.ReportDir,
		&c.Paths.LogDir,
	} {
		*field, err = expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
	}

	if c.Indexing.Workers <= 0 {
		c.Indexing.Workers = defaultIndexWorkers
	}

	c.Overrides.ForceComplete = trimPatterns(c.Overrides.ForceComplete)
	c.Overrides.ForceMoveOnly = trimPatterns(c.Overrides.ForceMoveOnly)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func trimPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
