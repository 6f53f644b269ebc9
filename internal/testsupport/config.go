package testsupport

import (
	"path/filepath"
	"testing"

	"plinth/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithYieldEvery overrides the import yield cadence on the test config.
func WithYieldEvery(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Import.YieldEvery = n
	}
}

// WithProgressInterval overrides the aggregation window on the test config.
func WithProgressInterval(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Import.ProgressIntervalMS = ms
	}
}
