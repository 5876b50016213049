package config

import (
	"fmt"
	"time"
)

const (
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
	defaultAssetCacheMaxAge   = 60 * time.Second
	maxAssetCacheMaxAge       = time.Hour
	defaultAdminMaxClockSkew  = 5 * time.Minute
)

type ServerConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	ReadTimeout      time.Duration `mapstructure:"read-timeout"`
	WriteTimeout     time.Duration `mapstructure:"write-timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle-timeout"`
	AssetCacheMaxAge time.Duration `mapstructure:"asset-cache-max-age"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("server host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server port must be between 0 and 65535")
	}

	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultServerReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultServerWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultServerIdleTimeout
	}

	if cfg.AssetCacheMaxAge <= 0 {
		cfg.AssetCacheMaxAge = defaultAssetCacheMaxAge
	}
	if cfg.AssetCacheMaxAge > maxAssetCacheMaxAge {
		return fmt.Errorf("asset-cache-max-age must not exceed %s", maxAssetCacheMaxAge)
	}

	return nil
}

func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// AdminConfig describes the listener for owner-only mutating endpoints.
// It is kept apart from the public asset listener so it can stay on a private interface.
type AdminConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MaxClockSkew time.Duration `mapstructure:"max-clock-skew"`
}

func (cfg *AdminConfig) Validate() error {
	if cfg.Host == "" {
		return fmt.Errorf("admin host is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("admin port must be between 0 and 65535")
	}
	if cfg.MaxClockSkew <= 0 {
		cfg.MaxClockSkew = defaultAdminMaxClockSkew
	}

	return nil
}

func (cfg *AdminConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
