package cli

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/api"
	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/clients/client"
	"github.com/babylonlabs-io/metrics-publisher/pkg"
	"github.com/spf13/cobra"
)

type assetClient struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func (c *assetClient) GetBaseURL() string                      { return c.baseURL }
func (c *assetClient) GetDefaultRequestTimeout() time.Duration { return c.timeout }
func (c *assetClient) GetHttpClient() *http.Client             { return c.httpClient }

// VerifyAssetCmd fetches a served asset and checks its certificate against the
// authority identity, without trusting the serving node.
func VerifyAssetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-asset <base-url> <path>",
		Short: "Fetches an asset and verifies its certificate header",
		Args:  cobra.ExactArgs(2),
		RunE:  verifyAsset,
	}

	cmd.Flags().String("authority", "", "identity of the certification authority")
	cmd.Flags().String("label", certification.DefaultLabel, "label the asset tree is certified under")
	cmd.Flags().Duration("timeout", 30*time.Second, "request timeout")
	_ = cmd.MarkFlagRequired("authority")

	return cmd
}

func verifyAsset(cmd *cobra.Command, args []string) error {
	authority, _ := cmd.Flags().GetString("authority")
	label, _ := cmd.Flags().GetString("label")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	trusted, err := pkg.ParseIdentity(authority)
	if err != nil {
		return fmt.Errorf("invalid authority identity: %w", err)
	}

	path := api.NormalizePath(args[1])
	c := &assetClient{
		baseURL:    strings.TrimRight(args[0], "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	resp, err := client.SendRawRequest(cmd.Context(), c, http.MethodGet, &client.HttpClientOptions{Path: path})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	header := resp.Header.Get(certification.HeaderName)
	if header == "" {
		return fmt.Errorf("%s has no %s header", path, certification.HeaderName)
	}
	if err := certification.Verify(header, label, path, resp.Body, trusted); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s verified (%d bytes)\n", path, len(resp.Body))
	return nil
}
