package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"farmcraft/internal/bot"
	"farmcraft/internal/config"
	"farmcraft/internal/farm"
	"farmcraft/internal/storage"
	"farmcraft/internal/storage/file"
	"farmcraft/internal/storage/memory"
	"farmcraft/internal/storage/postgres"
	redisstore "farmcraft/internal/storage/redis"
	"farmcraft/pkg/logger"
	"farmcraft/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	store, err := openStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to open storage",
			zap.String("driver", cfg.StorageDriver),
			zap.Error(err))
	}
	defer store.Close()

	farms := farm.NewService(store, zapLogger)
	if err := farms.Load(ctx); err != nil {
		// The service retries on the next request.
		zapLogger.Warn("Initial load failed", zap.Error(err))
	}

	tgBot, err := bot.New(
		cfg.TelegramToken,
		cfg.TelegramDebug,
		farms,
		zapLogger,
		cfg.ReportsDir,
	)
	if err != nil {
		zapLogger.Fatal("Failed to create bot", zap.Error(err))
	}

	if err := tgBot.Start(ctx); err != nil {
		zapLogger.Fatal("Bot stopped with error", zap.Error(err))
	}

	zapLogger.Info("Bot shutdown gracefully")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.New(), nil

	case config.DriverRedis:
		client := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.WaitReady(ctx, cfg.ConnectTimeout, logger); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis unavailable: %w", err)
		}
		logger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		return redisstore.New(client, cfg.Redis.KeyPrefix), nil

	case config.DriverPostgres:
		db := cfg.Database
		return postgres.Connect(ctx, postgres.Config{
			Host:            db.Host,
			Port:            db.Port,
			User:            db.User,
			Password:        db.Password,
			Name:            db.Name,
			SSLMode:         db.SSLMode,
			MaxOpenConns:    db.MaxOpenConns,
			MaxIdleConns:    db.MaxIdleConns,
			ConnMaxLifetime: db.ConnMaxLifetime,
			ConnMaxIdleTime: db.ConnMaxIdleTime,
			ConnectTimeout:  cfg.ConnectTimeout,
		}, logger)

	default:
		logger.Info("Using file storage", zap.String("path", cfg.StoragePath))
		return file.Open(cfg.StoragePath)
	}
}
