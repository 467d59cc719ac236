package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"census-backend/internal/adapters/http/middleware"
	"census-backend/internal/adapters/http/routes"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/config"
	"census-backend/internal/core/services"
	"census-backend/internal/pkg/logger"
	"census-backend/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "census-backend/docs" // Swagger docs
)

// @title Census API
// @version 1.0
// @description Hierarchical census survey backend: accounts, location tree and survey records.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "census-backend")
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := config.ConnectDatabase(cfg, zlog)
	if err != nil {
		zlog.Fatal("❌ Failed to connect to database", zap.Error(err))
	}
	defer config.CloseDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(db, cfg.Root, zlog).Run(ctx); err != nil {
		cancel()
		zlog.Fatal("❌ Failed to seed database", zap.Error(err))
	}
	cancel()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	revocations, closeRevocations, err := session.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cancel()
	if err != nil {
		zlog.Fatal("❌ Failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = closeRevocations() }()
	if cfg.Redis.Addr == "" {
		zlog.Warn("⚠️ REDIS_ADDR not set, token revocations are kept in memory")
	}

	maintenance := services.NewMaintenanceService(repositories.NewRefreshTokenRepository(db), zlog)
	if err := maintenance.Start(cfg.Jobs.TokenCleanupCron); err != nil {
		zlog.Fatal("❌ Failed to start scheduler", zap.Error(err))
	}
	defer maintenance.Stop()

	app := fiber.New(fiber.Config{
		AppName:      "Census API v1.0",
		ErrorHandler: middleware.ErrorHandler(zlog),
		BodyLimit:    12 << 20,
	})

	middleware.Setup(app, cfg)
	routes.Setup(app, db, cfg, revocations, zlog)

	go gracefulShutdown(app, zlog)

	zlog.Info("🚀 Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Error("❌ Server stopped", zap.Error(err))
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("❌ Error during shutdown", zap.Error(err))
	}
	zlog.Info("✅ Server stopped gracefully")
}
