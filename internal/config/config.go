package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "METRICS_PUBLISHER"

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Source        SourceConfig        `mapstructure:"source"`
	Poller        PollerConfig        `mapstructure:"poller"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Db            *DbConfig           `mapstructure:"db"`
	Certification CertificationConfig `mapstructure:"certification"`
	Owner         OwnerConfig         `mapstructure:"owner"`
	Notifier      *NotifierConfig     `mapstructure:"notifier"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	LogLevel      string              `mapstructure:"log-level"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	if err := cfg.Admin.Validate(); err != nil {
		return err
	}

	if err := cfg.Source.Validate(); err != nil {
		return err
	}

	if err := cfg.Poller.Validate(); err != nil {
		return err
	}

	if err := cfg.Storage.Validate(); err != nil {
		return err
	}

	if cfg.Storage.Type == StorageTypeMongo {
		if cfg.Db == nil {
			return fmt.Errorf("db config is required when storage type is %q", StorageTypeMongo)
		}
		if err := cfg.Db.Validate(); err != nil {
			return err
		}
	}

	if err := cfg.Certification.Validate(); err != nil {
		return err
	}

	if err := cfg.Owner.Validate(); err != nil {
		return err
	}

	// Notifier is optional
	if cfg.Notifier != nil {
		if err := cfg.Notifier.Validate(); err != nil {
			return err
		}
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}

	return nil
}

// New returns a fully parsed Config object from a given file path.
// Every key can be overridden through METRICS_PUBLISHER_<SECTION>_<KEY> env variables.
func New(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
