package config

import (
	"encoding/hex"
	"fmt"

	"github.com/babylonlabs-io/metrics-publisher/pkg"
)

const defaultCertificationLabel = "http_assets"

type CertificationConfig struct {
	// Label namespaces the asset tree root inside the certified data.
	Label string `mapstructure:"label"`
	// PrivateKey is the hex encoded schnorr key signing certified roots. When empty
	// an ephemeral key is generated at startup.
	PrivateKey string `mapstructure:"private-key"`
}

func (cfg *CertificationConfig) Validate() error {
	if cfg.Label == "" {
		cfg.Label = defaultCertificationLabel
	}

	if cfg.PrivateKey != "" {
		bz, err := hex.DecodeString(cfg.PrivateKey)
		if err != nil || len(bz) != 32 {
			return fmt.Errorf("certification private-key must be 32 hex encoded bytes")
		}
	}

	return nil
}

type OwnerConfig struct {
	// Identity becomes the owner whenever the state is created from scratch.
	Identity string `mapstructure:"identity"`
}

func (cfg *OwnerConfig) Validate() error {
	if cfg.Identity == "" {
		return fmt.Errorf("owner identity is required")
	}

	if err := pkg.ValidateIdentity(cfg.Identity); err != nil {
		return fmt.Errorf("invalid owner identity: %w", err)
	}

	return nil
}
