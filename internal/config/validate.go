package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateDialogs(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q must be host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateServices() error {
	if c.Services.RequestTimeoutSeconds < 0 {
		return errors.New("services.request_timeout_seconds must be zero or positive")
	}
	if c.Services.DefaultDilate < 0 {
		return errors.New("services.default_dilate must be zero or positive")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if len(c.Archive.Extension) < 2 {
		return fmt.Errorf("archive.extension %q must name a file extension", c.Archive.Extension)
	}
	if c.Archive.ReleaseDelayMS < 0 {
		return errors.New("archive.release_delay_ms must be zero or positive")
	}
	if c.Archive.CompressionLevel < minCompressionLevel || c.Archive.CompressionLevel > maxCompressionLevel {
		return fmt.Errorf("archive.compression_level must be between %d and %d", minCompressionLevel, maxCompressionLevel)
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.ThumbnailSize < 0 || c.Library.ThumbnailSize > maxThumbnailSize {
		return fmt.Errorf("library.thumbnail_size must be between 0 and %d", maxThumbnailSize)
	}
	return nil
}

func (c *Config) validateDialogs() error {
	switch c.Dialogs.Mode {
	case DialogModeRequest, DialogModeZenity:
		return nil
	default:
		return fmt.Errorf("dialogs.mode: unsupported value %q (want %q or %q)", c.Dialogs.Mode, DialogModeRequest, DialogModeZenity)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be zero or positive")
	}
	return nil
}
