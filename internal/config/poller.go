package config

import (
	"time"
)

const defaultRefreshInterval = 24 * time.Hour

type PollerConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}

	return nil
}
