// Copyright (c) 2025-2026 iBook140
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"EVENTFIX_DB_PATH" envDefault:"./data/eventfix.db"`
	ServerHost string `env:"EVENTFIX_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"EVENTFIX_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"EVENTFIX_ENV" envDefault:"development"`
	LogLevel   string `env:"EVENTFIX_LOG_LEVEL" envDefault:"info"`

	// Debug gates the slug-repair diagnostic log lines. It never changes
	// repair behavior, only its visibility.
	Debug bool `env:"EVENTFIX_DEBUG" envDefault:"false"`

	// Cache configuration
	RedisURL     string `env:"EVENTFIX_REDIS_URL"`                           // Optional Redis URL for distributed caching
	CachePrefix  string `env:"EVENTFIX_CACHE_PREFIX" envDefault:"eventfix:"` // Redis key prefix
	CacheTTL     int    `env:"EVENTFIX_CACHE_TTL" envDefault:"3600"`         // Default cache TTL in seconds
	CacheMaxSize int    `env:"EVENTFIX_CACHE_MAX_SIZE" envDefault:"10000"`   // Max memory cache entries
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
