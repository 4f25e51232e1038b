package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"prompter/internal/config"
	"prompter/internal/logging"
	"prompter/internal/store"
	"prompter/internal/store/postgres"
	"prompter/internal/store/sqlite"
)

func openDB(ctx context.Context, cfg *config.ProjectConfig) (store.Store, error) {
	dsn := cfg.Database.DSN
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		client, err := sqlite.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		client, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}
}

// loadProject reads the project config and the optional presets file.
func loadProject() (*config.ProjectConfig, *config.Presets, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	presets, err := config.LoadPresets(presetsPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, presets, nil
}

func newLogger(cfg *config.ProjectConfig) (*zap.Logger, error) {
	return logging.New(cfg.Logging)
}
