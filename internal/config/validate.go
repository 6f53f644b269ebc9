package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateImport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateImport() error {
	if c.Import.YieldEvery < 1 {
		return errors.New("import.yield_every must be at least 1")
	}
	if c.Import.ProgressIntervalMS < 1 {
		return errors.New("import.progress_interval_ms must be at least 1")
	}
	if c.Import.PreviewSize < 16 || c.Import.PreviewSize > 1024 {
		return fmt.Errorf("import.preview_size must be between 16 and 1024, got %d", c.Import.PreviewSize)
	}
	if c.Import.MaxFileMiB < 1 {
		return errors.New("import.max_file_mib must be at least 1")
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
