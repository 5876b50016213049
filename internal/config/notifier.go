package config

import (
	"fmt"
	"time"
)

const defaultNotifierPublishTimeout = 5 * time.Second

type NotifierConfig struct {
	URL            string        `mapstructure:"url"`
	Exchange       string        `mapstructure:"exchange"`
	RoutingKey     string        `mapstructure:"routing-key"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

func (cfg *NotifierConfig) Validate() error {
	if cfg.URL == "" {
		return fmt.Errorf("notifier url is required")
	}
	if cfg.Exchange == "" {
		return fmt.Errorf("notifier exchange is required")
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultNotifierPublishTimeout
	}

	return nil
}
