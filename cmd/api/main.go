package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/app"
	"alfredoptarigan/talent-allocator/internal/handlers"
	"alfredoptarigan/talent-allocator/internal/seed"
	"alfredoptarigan/talent-allocator/internal/services"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer a.Close()

	cfg, zlog, c := a.Config, a.Log, a.Container

	// Seed default positions
	if cfg.Seed.OnEmpty {
		defs, err := seed.Load(cfg.Seed.PositionsFile)
		if err != nil {
			zlog.Fatal("failed to load seed catalog", zap.Error(err))
		}
		created, err := c.Positions.SeedIfEmpty(ctx, defs)
		if err != nil {
			zlog.Fatal("failed to seed positions", zap.Error(err))
		}
		if created > 0 {
			zlog.Info("default positions seeded", zap.Int("created", created))
		}
	}

	// Initialize worker
	worker := services.NewWorker(
		c.Store.IntakeJobs(),
		c.Pipeline,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		zlog,
	)
	worker.Start(ctx)
	zlog.Info("worker started", zap.Int("concurrency", cfg.Worker.Concurrency))

	// Create Fiber app
	fiberApp := fiber.New(fiber.Config{
		AppName:      "Talent Allocator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Actor",
	}))

	// Routes
	handlers.NewHandlers(c, worker, cfg.Storage.MaxFileSize).Register(fiberApp.Group("/api/v1"))
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	fiberApp.Get("/", handlers.HandleRoot)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zlog.Info("shutting down server")
		worker.Stop()
		cancel()
		if err := fiberApp.Shutdown(); err != nil {
			zlog.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server starting", zap.String("addr", addr))

	if err := fiberApp.Listen(addr); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}
