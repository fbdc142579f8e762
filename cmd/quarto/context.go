package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"quarto/internal/catalog"
	"quarto/internal/config"
	"quarto/internal/fetch"
	"quarto/internal/fetch/igdb"
	"quarto/internal/fetch/kino"
	"quarto/internal/fetch/omdb"
	"quarto/internal/fetch/openlibrary"
	"quarto/internal/images"
	"quarto/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	log        *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.log = logging.NewNop()
			return
		}
		c.log = logger
	})
	return c.log
}

func (c *commandContext) registrar() images.Registrar {
	cfg, err := c.ensureConfig()
	if err != nil {
		return images.Nop{}
	}
	reg, err := images.NewDirectory(cfg.Paths.ImageDir, c.logger())
	if err != nil {
		c.logger().Warn("image directory unavailable", logging.Error(err))
		return images.Nop{}
	}
	return reg
}

// newOrchestrator wires the enabled sources into a fetch orchestrator.
func (c *commandContext) newOrchestrator() (*fetch.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger()
	registrar := c.registrar()

	var fetchers []fetch.Fetcher
	if cfg.Sources.IGDB.Enabled {
		fetchers = append(fetchers, igdb.New(cfg.Sources.IGDB.APIKey, cfg.Sources.IGDB.BaseURL, registrar, logger))
	}
	if cfg.Sources.OMDB.Enabled {
		fetchers = append(fetchers, omdb.New(cfg.Sources.OMDB.APIKey, cfg.Sources.OMDB.BaseURL, registrar, logger))
	}
	if cfg.Sources.Kino.Enabled {
		fetchers = append(fetchers, kino.New(cfg.Sources.Kino.BaseURL, registrar, logger))
	}
	if cfg.Sources.OpenLibrary.Enabled {
		fetchers = append(fetchers, openlibrary.New(cfg.Sources.OpenLibrary.BaseURL, registrar, logger))
	}

	limiter := fetch.NewSourceLimiter(cfg.Fetch.RequestsPerSecond)
	return fetch.NewOrchestrator(logger, fetchers, fetch.WithSourceLimiter(limiter)), nil
}

func (c *commandContext) openStore(ctx context.Context) (*catalog.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.OpenStore(ctx, cfg.Paths.CatalogPath)
}
