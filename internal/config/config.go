package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	TelegramToken  string        `env:"TELEGRAM_TOKEN,required,notEmpty"`
	TelegramDebug  bool          `env:"TELEGRAM_DEBUG" envDefault:"false"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"file"`
	StoragePath    string        `env:"STORAGE_PATH" envDefault:"data/farmcraft.json"`
	ReportsDir     string        `env:"REPORTS_DIR" envDefault:"reports"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"2m"`
	Redis          RedisConfig   `envPrefix:"REDIS_"`
	Database       DBConfig      `envPrefix:"DB_"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"farmcraft:"`
}

type DBConfig struct {
	Host            string        `env:"HOST" envDefault:"localhost"`
	Port            int           `env:"PORT" envDefault:"5432"`
	User            string        `env:"USER"`
	Password        string        `env:"PASSWORD"`
	Name            string        `env:"NAME" envDefault:"farmcraft"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"5"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"2"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"2m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverFile:
		if cfg.StoragePath == "" {
			return nil, fmt.Errorf("STORAGE_PATH is required for the file driver")
		}
	case DriverMemory, DriverRedis:
	case DriverPostgres:
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	return &cfg, nil
}
