// Package config loads settings for both servers from defaults, an optional
// config.yaml, an optional .env file and the environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	API      APIConfig
	Desk     DeskConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Log      LogConfig
}

// APIConfig configures the events API server.
type APIConfig struct {
	Port string
}

// DeskConfig configures the desk server.
type DeskConfig struct {
	Port       string
	GatewayURL string
	// SessionStore is "memory" or "redis".
	SessionStore   string
	SessionTTL     time.Duration
	GatewayTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds the Redis connection URL used by the session store.
type RedisConfig struct {
	URL string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// envKeys binds configuration keys to the environment variable names used in
// deployments.
var envKeys = map[string]string{
	"api.port":            "PORT",
	"desk.port":           "DESK_PORT",
	"desk.gatewayurl":     "GATEWAY_URL",
	"desk.sessionstore":   "SESSION_STORE",
	"desk.sessionttl":     "SESSION_TTL",
	"desk.gatewaytimeout": "GATEWAY_TIMEOUT",
	"database.host":       "DB_HOST",
	"database.port":       "DB_PORT",
	"database.user":       "DB_USER",
	"database.password":   "DB_PASSWORD",
	"database.name":       "DB_NAME",
	"database.sslmode":    "DB_SSLMODE",
	"redis.url":           "REDIS_URL",
	"jwt.secret":          "JWT_SECRET",
	"jwt.expiresin":       "JWT_EXPIRES_IN",
	"log.level":           "LOG_LEVEL",
	"log.json":            "LOG_JSON",
}

// Load reads configuration. A missing .env or config.yaml is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("desk.port", "8081")
	v.SetDefault("desk.gatewayurl", "http://localhost:8080")
	v.SetDefault("desk.sessionstore", "memory")
	v.SetDefault("desk.sessionttl", 12*time.Hour)
	v.SetDefault("desk.gatewaytimeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "eventdesk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiresin", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}
