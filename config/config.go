// Package config loads runtime settings from the environment and an optional
// config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

type Config struct {
	Env           string
	AddressListen string
	WhitelistHost string
	CertCacheDir  string

	DBDriver string
	DBURL    string

	LogLevel string

	RedisURL         string
	TaxonomyCacheTTL time.Duration

	SentryDSN string

	ContactRateLimit float64

	SiteTitle       string
	SiteDescription string
}

func (c Config) IsDev() bool {
	return c.Env == DevEnv
}

// Load reads configuration. Environment variables win over config.yaml,
// which wins over defaults.
func Load() (Config, error) {
	return load(viper.New(), ".")
}

func load(v *viper.Viper, configPaths ...string) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", ProEnv)
	v.SetDefault("address_listen", "")
	v.SetDefault("whitelist_host", "")
	v.SetDefault("cert_cache_dir", "/var/www/.cache")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("redis_url", "")
	v.SetDefault("taxonomy_cache_ttl", 10*time.Minute)
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("contact_rate_limit", 1.0)
	v.SetDefault("site_title", "Backyard Business")
	v.SetDefault("site_description", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	c := Config{
		Env:              strings.ToLower(v.GetString("env")),
		AddressListen:    v.GetString("address_listen"),
		WhitelistHost:    v.GetString("whitelist_host"),
		CertCacheDir:     v.GetString("cert_cache_dir"),
		DBDriver:         v.GetString("db_driver"),
		DBURL:            v.GetString("db_url"),
		LogLevel:         v.GetString("log_level"),
		RedisURL:         v.GetString("redis_url"),
		TaxonomyCacheTTL: v.GetDuration("taxonomy_cache_ttl"),
		SentryDSN:        v.GetString("sentry_dsn"),
		ContactRateLimit: v.GetFloat64("contact_rate_limit"),
		SiteTitle:        v.GetString("site_title"),
		SiteDescription:  v.GetString("site_description"),
	}

	if c.Env != DevEnv && c.Env != ProEnv {
		return Config{}, fmt.Errorf("unknown ENV %q, want %q or %q", c.Env, DevEnv, ProEnv)
	}
	if c.IsDev() && c.AddressListen == "" {
		c.AddressListen = ":8080"
	}
	if c.DBURL == "" && c.DBDriver == "sqlite" {
		c.DBURL = "./bizsite.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	if c.ContactRateLimit <= 0 {
		return Config{}, fmt.Errorf("CONTACT_RATE_LIMIT must be positive, got %v", c.ContactRateLimit)
	}
	return c, nil
}
