package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/spf13/cobra"
)

type keyPair struct {
	PrivateKey string `json:"privateKey"`
	Identity   string `json:"identity"`
}

// KeygenCmd prints a fresh key usable as owner key or certification key.
func KeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generates a key pair for the owner or the certification authority",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := auth.GenerateKey()
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(keyPair{
				PrivateKey: hex.EncodeToString(key.Serialize()),
				Identity:   auth.IdentityFromKey(key).String(),
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	return cmd
}
