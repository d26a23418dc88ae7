package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServices()
	c.normalizeArchive()
	c.normalizeLibrary()
	c.normalizeFonts()
	c.normalizeLogging()
	c.Dialogs.Mode = strings.ToLower(strings.TrimSpace(c.Dialogs.Mode))
	if c.Dialogs.Mode == "" {
		c.Dialogs.Mode = defaultDialogMode
	}
	if c.Events.BufferSize <= 0 {
		c.Events.BufferSize = defaultEventBufferSize
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if value, ok := os.LookupEnv("MANGATL_API_BIND"); ok && strings.TrimSpace(value) != "" {
		c.Paths.APIBind = value
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MANGATL_API_TOKEN"); ok {
			c.Paths.APIToken = value
		}
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)

	origins := make([]string, 0, len(c.Paths.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.Paths.AllowedOrigins))
	for _, origin := range c.Paths.AllowedOrigins {
		normalized := strings.TrimRight(strings.TrimSpace(origin), "/")
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		origins = append(origins, normalized)
	}
	c.Paths.AllowedOrigins = origins
	return nil
}

func (c *Config) normalizeServices() {
	c.Services.DefaultOCREngine = strings.TrimSpace(c.Services.DefaultOCREngine)
	if c.Services.DefaultOCREngine == "" {
		c.Services.DefaultOCREngine = defaultOCREngine
	}
	c.Services.DefaultInpaintModel = strings.TrimSpace(c.Services.DefaultInpaintModel)
	if c.Services.DefaultInpaintModel == "" {
		c.Services.DefaultInpaintModel = defaultInpaintModel
	}
	c.Services.UserAgent = strings.TrimSpace(c.Services.UserAgent)
	if c.Services.UserAgent == "" {
		c.Services.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeArchive() {
	ext := strings.ToLower(strings.TrimSpace(c.Archive.Extension))
	if ext == "" {
		ext = defaultArchiveExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Archive.Extension = ext
	if c.Archive.CompressionLevel == 0 {
		c.Archive.CompressionLevel = defaultCompressionLevel
	}
}

func (c *Config) normalizeLibrary() {
	if c.Library.ImportWorkers <= 0 {
		c.Library.ImportWorkers = defaultImportWorkers
	}
}

func (c *Config) normalizeFonts() {
	families := make([]string, 0, len(c.Fonts.Fallback))
	for _, family := range c.Fonts.Fallback {
		if trimmed := strings.TrimSpace(family); trimmed != "" {
			families = append(families, trimmed)
		}
	}
	if len(families) == 0 {
		families = append(families, DefaultFallbackFonts...)
	}
	c.Fonts.Fallback = families
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("MANGATL_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
