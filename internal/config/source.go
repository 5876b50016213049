package config

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultSourcePageSize      = 200
	defaultSourceMaxPages      = 100
	defaultSourceMaxPageBytes  = 2_000_000
	defaultSourceMaxCountBytes = 1_000_000
	defaultSourceTimeout       = 30 * time.Second
	defaultSourceMaxRetryTimes = 3
	defaultSourceRetryInterval = time.Second
	defaultSourceWindow        = 24 * time.Hour
)

// SourceConfig configures access to the upstream GraphQL indexer.
type SourceConfig struct {
	// URL is only used to seed a freshly initialized state; afterwards the
	// owner-controlled source URL stored in the state wins.
	URL           string        `mapstructure:"url"`
	PageSize      int           `mapstructure:"page-size"`
	MaxPages      int           `mapstructure:"max-pages"`
	MaxPageBytes  int64         `mapstructure:"max-page-bytes"`
	MaxCountBytes int64         `mapstructure:"max-count-bytes"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
	Window        time.Duration `mapstructure:"window"`
}

func DefaultSourceConfig() *SourceConfig {
	return &SourceConfig{
		PageSize:      defaultSourcePageSize,
		MaxPages:      defaultSourceMaxPages,
		MaxPageBytes:  defaultSourceMaxPageBytes,
		MaxCountBytes: defaultSourceMaxCountBytes,
		Timeout:       defaultSourceTimeout,
		MaxRetryTimes: defaultSourceMaxRetryTimes,
		RetryInterval: defaultSourceRetryInterval,
		Window:        defaultSourceWindow,
	}
}

// ValidateSourceURL accepts only absolute http(s) URLs.
func ValidateSourceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source url must be an absolute http(s) URL")
	}
	return nil
}

func (cfg *SourceConfig) Validate() error {
	if cfg.URL != "" {
		if err := ValidateSourceURL(cfg.URL); err != nil {
			return err
		}
	}

	defaults := DefaultSourceConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaults.PageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaults.MaxPages
	}
	if cfg.MaxPageBytes <= 0 {
		cfg.MaxPageBytes = defaults.MaxPageBytes
	}
	if cfg.MaxCountBytes <= 0 {
		cfg.MaxCountBytes = defaults.MaxCountBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetryTimes == 0 {
		cfg.MaxRetryTimes = defaults.MaxRetryTimes
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaults.RetryInterval
	}
	if cfg.Window <= 0 {
		cfg.Window = defaults.Window
	}

	return nil
}
