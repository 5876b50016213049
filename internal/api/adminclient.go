package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/clients/client"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/btcsuite/btcd/btcec/v2"
)

// AdminClient signs every request with the owner key.
type AdminClient struct {
	baseURL    string
	key        *btcec.PrivateKey
	identity   state.Identity
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewAdminClient(baseURL string, key *btcec.PrivateKey, timeout time.Duration) *AdminClient {
	return &AdminClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		key:        key,
		identity:   auth.IdentityFromKey(key),
		timeout:    timeout,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

func (c *AdminClient) GetBaseURL() string {
	return c.baseURL
}

func (c *AdminClient) GetDefaultRequestTimeout() time.Duration {
	return c.timeout
}

func (c *AdminClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *AdminClient) Identity() state.Identity {
	return c.identity
}

func (c *AdminClient) SetOwner(ctx context.Context, owner state.Identity) (*services.Status, error) {
	return sendSigned[SetOwnerRequest, services.Status](ctx, c, http.MethodPut, PathOwner, &SetOwnerRequest{Owner: owner})
}

func (c *AdminClient) SetSourceURL(ctx context.Context, url string) (*services.Status, error) {
	return sendSigned[SetSourceURLRequest, services.Status](ctx, c, http.MethodPut, PathSourceURL, &SetSourceURLRequest{URL: url})
}

func (c *AdminClient) SetRefreshEnabled(ctx context.Context, enabled bool) (*services.Status, error) {
	return sendSigned[SetRefreshEnabledRequest, services.Status](
		ctx, c, http.MethodPut, PathRefreshEnabled, &SetRefreshEnabledRequest{Enabled: enabled},
	)
}

func (c *AdminClient) IngestDailySnapshot(ctx context.Context, snapshot series.DailySnapshot) (string, error) {
	resp, err := sendSigned[series.DailySnapshot, PayloadResponse](ctx, c, http.MethodPost, PathSnapshots, &snapshot)
	if err != nil {
		return "", err
	}
	return resp.Payload, nil
}

func (c *AdminClient) IngestNewWalletsInflow(ctx context.Context, payload string) (string, error) {
	resp, err := sendSigned[IngestInflowRequest, PayloadResponse](
		ctx, c, http.MethodPut, PathInflow, &IngestInflowRequest{Payload: payload},
	)
	if err != nil {
		return "", err
	}
	return resp.Payload, nil
}

func (c *AdminClient) RefreshNow(ctx context.Context) (string, error) {
	resp, err := sendSigned[struct{}, PayloadResponse](ctx, c, http.MethodPost, PathRefresh, nil)
	if err != nil {
		return "", err
	}
	return resp.Payload, nil
}

// sendSigned signs the exact body client.SendRequest is about to send.
func sendSigned[I any, R any](ctx context.Context, c *AdminClient, method, path string, input *I) (*R, error) {
	var body []byte
	if input != nil {
		bz, err := json.Marshal(input)
		if err != nil {
			return nil, types.NewSerializationError(err)
		}
		body = bz
	}

	ts := c.now().Unix()
	signature, err := auth.SignRequest(c.key, method, path, body, ts)
	if err != nil {
		return nil, err
	}

	opts := &client.HttpClientOptions{
		Path: path,
		Headers: map[string]string{
			auth.HeaderIdentity:  c.identity.String(),
			auth.HeaderTimestamp: strconv.FormatInt(ts, 10),
			auth.HeaderSignature: signature,
		},
	}
	return client.SendRequest[I, R](ctx, c, method, opts, input)
}
