package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"anoa.com/campusforum/internal/bootstrap"
	"anoa.com/campusforum/internal/config"
	"anoa.com/campusforum/internal/server"
	"anoa.com/campusforum/pkg/database"
	"anoa.com/campusforum/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog := logger.New(logger.Config{
		Service: "campusforum",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		appLog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := bootstrap.Migrate(db); err != nil {
		appLog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if err := bootstrap.SeedSuperadmin(ctx, db, cfg.SeedSuperadminEmail, cfg.SeedSuperadminPassword); err != nil {
		appLog.Error("failed to seed superadmin", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		// Redis is optional; features degrade to their redis-free paths.
		appLog.Warn("redis unavailable", "error", err)
		redisClient = nil
	}
	if redisClient == nil {
		appLog.Info("running without redis")
	} else {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient, appLog)
	if err != nil {
		appLog.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		appLog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	appLog.Info("server stopped")
}
