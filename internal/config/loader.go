package config

import (
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads the configuration from file and environment variables.
// Environment variables use the ANALYTICS prefix with dots replaced by
// underscores, e.g. ANALYTICS_DATABASE_HOST.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/analytics-api/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("ANALYTICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "analytics")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 1000)
	v.SetDefault("redis.read_timeout", 500)
	v.SetDefault("redis.write_timeout", 500)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.tabular.limit", 100)
	v.SetDefault("rate_limit.tabular.per", 60)
	v.SetDefault("rate_limit.poi.limit", 10)
	v.SetDefault("rate_limit.poi.per", 20)
	v.SetDefault("rate_limit.expiration_window", 10)
	v.SetDefault("rate_limit.check_timeout", 500)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("monitoring.pprof_enabled", false)
}
