package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/api"
	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/pkg"
	"github.com/spf13/cobra"
)

const (
	defaultAdminURL = "http://127.0.0.1:8081"
	ownerKeyEnv     = "METRICS_PUBLISHER_OWNER_KEY"
)

// AdminCmd groups the owner-only operations. Requests are signed with the key from
// --key or METRICS_PUBLISHER_OWNER_KEY.
func AdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Sends signed owner requests to the admin listener",
	}

	cmd.PersistentFlags().String("url", defaultAdminURL, "admin listener base URL")
	cmd.PersistentFlags().String("key", "", fmt.Sprintf("hex owner private key (default $%s)", ownerKeyEnv))
	cmd.PersistentFlags().Duration("timeout", 5*time.Minute, "request timeout")

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Runs a refresh now and prints the active wallets payload",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			payload, err := c.RefreshNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-owner <identity>",
		Short: "Transfers ownership to another identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.SetOwner(cmd.Context(), state.Identity(args[0]))
			return printJSON(cmd, status, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-source-url <url>",
		Short: "Points the refresh at another GraphQL endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.SetSourceURL(cmd.Context(), args[0])
			return printJSON(cmd, status, err)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-refresh-enabled <true|false>",
		Short: "Enables or disables the automatic refresh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[0])
			if err != nil {
				return err
			}
			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			status, err := c.SetRefreshEnabled(cmd.Context(), enabled)
			return printJSON(cmd, status, err)
		},
	})

	cmd.AddCommand(ingestSnapshotCmd())

	cmd.AddCommand(&cobra.Command{
		Use:   "ingest-inflow <file>",
		Short: "Replaces the new wallets inflow payload with the content of file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			got, err := c.IngestNewWalletsInflow(cmd.Context(), string(payload))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	})

	return cmd
}

func ingestSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest-snapshot",
		Short: "Records a manual daily snapshot in both series",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			var snapshot series.DailySnapshot
			snapshot.TS, _ = cmd.Flags().GetString("ts")
			snapshot.Active, _ = cmd.Flags().GetUint64("active")
			snapshot.NewWallets, _ = cmd.Flags().GetUint64("new-wallets")
			snapshot.Extrinsics, _ = cmd.Flags().GetUint64("extrinsics")

			c, err := newAdminClient(cmd)
			if err != nil {
				return err
			}
			payload, err := c.IngestDailySnapshot(cmd.Context(), snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}

	cmd.Flags().String("ts", "", "day of the snapshot (YYYY-MM-DD)")
	cmd.Flags().Uint64("active", 0, "active wallets of the day")
	cmd.Flags().Uint64("new-wallets", 0, "new wallets of the day")
	cmd.Flags().Uint64("extrinsics", 0, "extrinsics of the day")
	_ = cmd.MarkFlagRequired("ts")

	return cmd
}

func newAdminClient(cmd *cobra.Command) (*api.AdminClient, error) {
	url, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	hexKey, _ := cmd.Flags().GetString("key")
	if hexKey == "" {
		hexKey = pkg.Getenv(ownerKeyEnv, "")
	}
	if hexKey == "" {
		return nil, fmt.Errorf("an owner key is required, pass --key or set %s", ownerKeyEnv)
	}

	key, err := auth.ParsePrivateKey(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid owner key: %w", err)
	}
	return api.NewAdminClient(url, key, timeout), nil
}

func printJSON(cmd *cobra.Command, v any, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
