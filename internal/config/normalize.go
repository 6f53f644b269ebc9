package config

import (
	"fmt"
	"strings"

	"plinth/internal/fileutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeImport()
	c.normalizeWatcher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = fileutil.ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = fileutil.ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeImport() {
	if c.Import.YieldEvery <= 0 {
		c.Import.YieldEvery = defaultYieldEvery
	}
	if c.Import.ProgressIntervalMS <= 0 {
		c.Import.ProgressIntervalMS = defaultProgressIntervalMS
	}
	if c.Import.PreviewSize <= 0 {
		c.Import.PreviewSize = defaultPreviewSize
	}
	if c.Import.MaxFileMiB <= 0 {
		c.Import.MaxFileMiB = defaultMaxFileMiB
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.DebounceMS <= 0 {
		c.Watcher.DebounceMS = defaultWatcherDebounceMS
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
