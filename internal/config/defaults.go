package config

const (
	defaultSourceDir       = "~/.local/share/lading/source"
	defaultManifestDir     = "~/.local/share/lading/manifests"
	defaultDestDir         = "~/.local/share/lading/sorted"
	defaultReportDir       = "~/.local/share/lading/reports"
	defaultLogDir          = "~/.local/share/lading/logs"
	defaultIndexWorkers    = 4
	defaultVerifyThreshold = 25
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:   defaultSourceDir,
			ManifestDir: defaultManifestDir,
			DestDir:     defaultDestDir,
			ReportDir:   defaultReportDir,
			LogDir:      defaultLogDir,
		},
		Indexing: Indexing{
			Workers: defaultIndexWorkers,
		},
		Conflicts: Conflicts{
			VerifyThreshold: defaultVerifyThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
