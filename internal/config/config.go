package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	JWTSecret string
	Store     string

	DatabaseURL string
	Redis       RedisConfig
	Dashboard   DashboardConfig
	RateLimit   RateLimitConfig
	Admin       AdminConfig
}

// RedisConfig contains Redis connection parameters. An empty Addr disables
// Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DashboardConfig struct {
	TopN          int
	LowStockLimit int
	TrendDays     int
	SnapshotTTL   time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AdminConfig seeds an administrator account on startup when both fields are
// set.
type AdminConfig struct {
	Email    string
	Password string
	FullName string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DASHBOARD_TOP_N", 5)
	v.SetDefault("DASHBOARD_LOW_STOCK_LIMIT", 5)
	v.SetDefault("DASHBOARD_TREND_DAYS", 7)
	v.SetDefault("SNAPSHOT_TTL", "10m")
	v.SetDefault("RATE_LIMIT_RPS", 5.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_FULL_NAME", "Administrator")
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it is loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("PORT"),
		Env:         v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		Store:       strings.ToLower(v.GetString("STORE")),
		DatabaseURL: v.GetString("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Dashboard: DashboardConfig{
			TopN:          v.GetInt("DASHBOARD_TOP_N"),
			LowStockLimit: v.GetInt("DASHBOARD_LOW_STOCK_LIMIT"),
			TrendDays:     v.GetInt("DASHBOARD_TREND_DAYS"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
			FullName: v.GetString("ADMIN_FULL_NAME"),
		},
	}

	ttl, err := time.ParseDuration(v.GetString("SNAPSHOT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TTL: %w", err)
	}
	if ttl < 0 {
		return nil, errors.New("invalid SNAPSHOT_TTL: duration must be >= 0")
	}
	cfg.Dashboard.SnapshotTTL = ttl

	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL must be set when STORE=postgres")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE %q: expected %s or %s", cfg.Store, StorePostgres, StoreMemory)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	if cfg.Dashboard.TopN <= 0 || cfg.Dashboard.TrendDays <= 0 {
		return nil, errors.New("DASHBOARD_TOP_N and DASHBOARD_TREND_DAYS must be positive")
	}
	if cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}
