package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"prompter/internal/api"
	"prompter/internal/config"
	"prompter/internal/mcp"
	"prompter/internal/persist"
	"prompter/internal/state"
	"prompter/internal/store"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP workspace server (and the MCP server over stdio when enabled)",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, presets, err := loadProject()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	storage, fileStorage, err := openStorage(cfg, db)
	if err != nil {
		return err
	}

	registry := state.NewRegistry(storage, state.RegistryOptions{
		HistorySize: cfg.Limits.HistorySize,
		MaxSlides:   cfg.Limits.MaxStorySlides,
		Presets:     presets,
		Logger:      logger.Named("workspace"),
	})

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(api.Deps{
		Store:    db,
		Registry: registry,
		Storage:  storage,
		Config:   cfg,
		Logger:   logger,
	})
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.Server.MCP {
		mcpServer := mcp.NewServer(db, version, mcp.Options{
			Owner:     cfg.Scripts.Owner,
			MaxSlides: cfg.Limits.MaxStorySlides,
			Presets:   presets,
			Logger:    logger,
		})
		group.Go(func() error {
			return mcpServer.Run(ctx, &sdk.StdioTransport{})
		})
	}

	if fileStorage != nil && cfg.Storage.Watch {
		group.Go(func() error {
			return fileStorage.Watch(ctx, func(key string) {
				registry.Rehydrate(ctx, key)
			})
		})
	}

	return group.Wait()
}

// openStorage builds the workspace storage for the configured driver. The
// file storage is also returned on its own so it can be watched.
func openStorage(cfg *config.ProjectConfig, db store.Store) (persist.Storage, *persist.FileStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return persist.NewMemoryStorage(cfg.Storage.QuotaBytes), nil, nil
	case config.StorageDatabase:
		return persist.NewDBStorage(db), nil, nil
	case config.StorageFile:
		fs, err := persist.NewFileStorage(cfg.Storage.Dir, cfg.Storage.QuotaBytes)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
