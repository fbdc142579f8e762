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
	c.normalizeFetch()
	c.normalizeSources()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = defaultCatalogPath
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.ImageDir) == "" {
		c.Paths.ImageDir = defaultImageDir
	}
	if c.Paths.ImageDir, err = expandPath(c.Paths.ImageDir); err != nil {
		return fmt.Errorf("paths.image_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFetch() {
	if c.Fetch.RequestsPerSecond <= 0 {
		c.Fetch.RequestsPerSecond = defaultRequestsPerSecond
	}
	if c.Fetch.MergeThreshold <= 0 {
		c.Fetch.MergeThreshold = defaultMergeThreshold
	}
}

func (c *Config) normalizeSources() {
	if c.Sources.IGDB.APIKey == "" {
		if value, ok := os.LookupEnv("IGDB_API_KEY"); ok {
			c.Sources.IGDB.APIKey = value
		}
	}
	c.Sources.IGDB.BaseURL = trimBaseURL(c.Sources.IGDB.BaseURL, defaultIGDBBaseURL)

	if c.Sources.OMDB.APIKey == "" {
		if value, ok := os.LookupEnv("OMDB_API_KEY"); ok {
			c.Sources.OMDB.APIKey = value
		}
	}
	c.Sources.OMDB.BaseURL = trimBaseURL(c.Sources.OMDB.BaseURL, defaultOMDBBaseURL)

	c.Sources.Kino.BaseURL = trimBaseURL(c.Sources.Kino.BaseURL, defaultKinoBaseURL)
	c.Sources.OpenLibrary.BaseURL = trimBaseURL(c.Sources.OpenLibrary.BaseURL, defaultOpenLibraryBaseURL)
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return strings.TrimRight(value, "/")
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
