// Package config holds the application configuration and its loader.
package config

import (
	"fmt"

	"github.com/pulsemetrics/analytics-api/pkg/errors"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // in minutes
}

// GetDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig holds counter store connection settings. Timeouts are in milliseconds.
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Addr returns the host:port address of the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Quota pairs a request limit with the window length it applies to.
type Quota struct {
	Limit int `mapstructure:"limit"`
	Per   int `mapstructure:"per"` // window length in seconds
}

// RateLimitConfig holds per-route-group quotas and limiter tuning.
type RateLimitConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Tabular Quota `mapstructure:"tabular"` // events and stats endpoints
	POI     Quota `mapstructure:"poi"`     // point-of-interest endpoints

	// ExpirationWindow is the grace period in seconds past a window's end
	// before its counter key expires.
	ExpirationWindow int `mapstructure:"expiration_window"`

	// CheckTimeout bounds the admission check's store round trip, in milliseconds.
	CheckTimeout int `mapstructure:"check_timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MonitoringConfig holds observability toggles.
type MonitoringConfig struct {
	PprofEnabled bool `mapstructure:"pprof_enabled"`
}

// Validate checks for essential configuration values. Invalid quotas are a
// programming or deployment error and fail the process at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrInvalidConfig(fmt.Sprintf("invalid server port: %d", c.Server.Port))
	}
	if c.RateLimit.Enabled {
		for name, q := range map[string]Quota{"tabular": c.RateLimit.Tabular, "poi": c.RateLimit.POI} {
			if q.Limit <= 0 {
				return errors.ErrInvalidConfig(fmt.Sprintf("rate_limit.%s.limit must be positive, got %d", name, q.Limit))
			}
			if q.Per <= 0 {
				return errors.ErrInvalidConfig(fmt.Sprintf("rate_limit.%s.per must be positive, got %d", name, q.Per))
			}
		}
		if c.RateLimit.ExpirationWindow < 0 {
			return errors.ErrInvalidConfig("rate_limit.expiration_window must not be negative")
		}
		if c.RateLimit.CheckTimeout <= 0 {
			return errors.ErrInvalidConfig("rate_limit.check_timeout must be positive")
		}
	}
	return nil
}
