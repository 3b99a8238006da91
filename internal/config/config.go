// Package config loads runtime configuration from environment variables,
// with a .env file honored in dev via the caller (see cmd/server).
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Oversell policies. "allow" completes the sale, clamps stock at zero and
// flags the gap; "reject" refuses the checkout.
const (
	OversellAllow  = "allow"
	OversellReject = "reject"
)

type Config struct {
	AppEnv        string
	Port          string
	AllowedOrigin string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DefaultWarehouseID string
	OversellPolicy     string
	CatalogCacheTTL    time.Duration
}

func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "*")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEFAULT_WAREHOUSE_ID", "wh-main")
	v.SetDefault("OVERSELL_POLICY", OversellAllow)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 300)

	c := Config{
		AppEnv:             v.GetString("APP_ENV"),
		Port:               v.GetString("PORT"),
		AllowedOrigin:      v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		DefaultWarehouseID: v.GetString("DEFAULT_WAREHOUSE_ID"),
		OversellPolicy:     v.GetString("OVERSELL_POLICY"),
		CatalogCacheTTL:    time.Duration(v.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
	}

	if c.OversellPolicy != OversellAllow && c.OversellPolicy != OversellReject {
		return c, fmt.Errorf("OVERSELL_POLICY must be %q or %q, got %q", OversellAllow, OversellReject, c.OversellPolicy)
	}
	return c, nil
}
