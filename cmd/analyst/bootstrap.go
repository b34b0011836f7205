package main

import (
	"context"
	"fmt"

	analyst "github.com/Protocol-Lattice/go-analyst"
	"github.com/Protocol-Lattice/go-analyst/internal/config"
	"github.com/Protocol-Lattice/go-analyst/internal/logger"
	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/Protocol-Lattice/go-analyst/src/normalize"
	"go.uber.org/zap"
)

// container holds everything a command needs once configuration is valid.
type container struct {
	cfg      *config.Config
	logger   *zap.Logger
	provider models.Provider
	session  *analyst.Session
}

func (c *container) Close() {
	if err := c.provider.Close(); err != nil {
		c.logger.Warn("closing provider", zap.Error(err))
	}
	_ = c.logger.Sync()
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if rootFlags.provider != "" {
		cfg.AI.Provider = rootFlags.provider
	}
	if rootFlags.model != "" {
		cfg.AI.Model = rootFlags.model
	}
	if rootFlags.persona != "" {
		cfg.App.Persona = rootFlags.persona
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bootstrap(ctx context.Context, cfg *config.Config) (*container, error) {
	persona, err := analyst.ParsePersona(cfg.App.Persona)
	if err != nil {
		return nil, &config.ConfigurationError{Key: "DEFAULT_PERSONA", Reason: err.Error()}
	}

	log := logger.New(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.IsProduction(),
	})
	if !cfg.App.DotEnvLoaded {
		log.Info(".env file not found, using system environment")
	}

	pc := cfg.ProviderConfig()
	pc.Logger = log.Named("models")
	provider, err := models.NewProvider(ctx, pc)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("init provider %s: %w", cfg.AI.Provider, err)
	}

	normalizer := normalize.New(
		normalize.WithTempDir(cfg.Upload.TempDir),
		normalize.WithMaxBytes(cfg.Upload.MaxBytes),
		normalize.WithLogger(log.Named("normalize")),
	)

	session, err := analyst.New(analyst.Options{
		Provider:   provider,
		Normalizer: normalizer,
		Persona:    persona,
		Logger:     log.Named("session"),
	})
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	log.Info("session ready",
		zap.String("provider", provider.Name()),
		zap.String("persona", persona.String()))
	return &container{cfg: cfg, logger: log, provider: provider, session: session}, nil
}
