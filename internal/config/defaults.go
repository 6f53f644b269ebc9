package config

const (
	defaultDataDir            = "~/.local/share/plinth"
	defaultLogDir             = "~/.local/share/plinth/logs"
	defaultYieldEvery         = 5
	defaultProgressIntervalMS = 100
	defaultPreviewSize        = 128
	defaultMaxFileMiB         = 256
	defaultWatcherDebounceMS  = 750
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Import: Import{
			YieldEvery:         defaultYieldEvery,
			ProgressIntervalMS: defaultProgressIntervalMS,
			PreviewSize:        defaultPreviewSize,
			MaxFileMiB:         defaultMaxFileMiB,
		},
		Watcher: Watcher{
			DebounceMS: defaultWatcherDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
