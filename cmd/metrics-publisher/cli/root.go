package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/pkg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFileName = "config.yml"
	productionEnvironment = "production"
)

var (
	cfgPath string
	rootCmd = &cobra.Command{
		Use:          "metrics-publisher",
		Short:        "Publishes certified daily chain activity metrics",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogger()
		},
	}
)

func Setup() error {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	defaultConfigPath := getDefaultConfigFile(homePath, defaultConfigFileName)

	rootCmd.AddCommand(StartServerCmd())
	rootCmd.AddCommand(RestoreStateCmd())
	rootCmd.AddCommand(KeygenCmd())
	rootCmd.AddCommand(VerifyAssetCmd())
	rootCmd.AddCommand(AdminCmd())
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, fmt.Sprintf("config file (default %s)", defaultConfigPath))
	if err := rootCmd.Execute(); err != nil {
		return err
	}

	return nil
}

func getDefaultConfigFile(homePath, filename string) string {
	return filepath.Join(homePath, filename)
}

func GetConfigPath() string {
	return cfgPath
}

func setupLogger() {
	if pkg.Getenv("ENVIRONMENT", "") != productionEnvironment {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// loadConfig reads the config file and applies its log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return nil, fmt.Errorf("error while loading config file %s: %w", GetConfigPath(), err)
	}

	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log-level %q: %w", cfg.LogLevel, err)
		}
		zerolog.SetGlobalLevel(level)
	}

	return cfg, nil
}
