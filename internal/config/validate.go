package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable. Missing API keys are not an
// error here: keyed sources report a configuration failure at fetch time so
// keyless sources stay usable.
func (c *Config) Validate() error {
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.RequestsPerSecond <= 0 {
		return errors.New("fetch.requests_per_second must be positive")
	}
	if c.Fetch.MergeThreshold <= 0 {
		return errors.New("fetch.merge_threshold must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	for name, base := range map[string]string{
		"sources.igdb.base_url":        c.Sources.IGDB.BaseURL,
		"sources.omdb.base_url":        c.Sources.OMDB.BaseURL,
		"sources.kino.base_url":        c.Sources.Kino.BaseURL,
		"sources.openlibrary.base_url": c.Sources.OpenLibrary.BaseURL,
	} {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s is not an absolute URL: %q", name, base)
		}
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
