// Package app wires configuration, storage and the service graph for the binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"alfredoptarigan/talent-allocator/internal/config"
	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/repositories"
	"alfredoptarigan/talent-allocator/internal/services"
)

type App struct {
	Config    *config.Config
	Log       *zap.Logger
	DB        *gorm.DB
	Container *services.Container
}

// Bootstrap loads configuration, opens and migrates the database and builds every service.
// Overrides run after the environment has been parsed.
func Bootstrap(ctx context.Context, overrides ...func(*config.Config)) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(cfg)
	}

	log, err := logger.New(logger.Options{JSON: cfg.Server.LogJSON, Debug: cfg.Server.LogDebug})
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using process environment")
	}
	log.Info("config loaded", zap.String("env", cfg.Server.Env), zap.String("llm_provider", cfg.Reasoning.Provider))

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	gen, index, err := services.BuildReasoning(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reasoning backend: %w", err)
	}
	log.Info("reasoning backend initialized",
		zap.String(logger.FieldProvider, gen.Provider()),
		zap.String(logger.FieldModel, gen.Model()),
		zap.Bool("cache", cfg.Redis.URL != ""),
		zap.Bool("position_index", index != nil))

	container := services.NewContainer(cfg, repositories.NewStore(db), gen, index, log)
	if err := container.Storage.EnsureUploadDir(); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &App{Config: cfg, Log: log, DB: db, Container: container}, nil
}

// Close releases the database handle and flushes the logger.
func (a *App) Close() {
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
