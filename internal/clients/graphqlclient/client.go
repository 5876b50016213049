package graphqlclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/babylonlabs-io/metrics-publisher/internal/clients/client"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/rs/zerolog/log"
)

const templatePath = "/graphql"

type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type Client struct {
	httpClient *http.Client
	cfg        *config.SourceConfig
}

func NewClient(cfg *config.SourceConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

// endpointClient binds the client to one endpoint. The endpoint is owner controlled
// and can change between calls, so it is not part of Client.
type endpointClient struct {
	*Client
	endpoint string
}

func (c *endpointClient) GetBaseURL() string {
	return c.endpoint
}

func (c *endpointClient) GetDefaultRequestTimeout() time.Duration {
	return c.cfg.Timeout
}

func (c *endpointClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *Client) Query(ctx context.Context, endpoint string, req *Request, maxResponseBytes int64) (json.RawMessage, error) {
	if endpoint == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "empty graphql endpoint")
	}

	bound := &endpointClient{Client: c, endpoint: endpoint}
	opts := &client.HttpClientOptions{
		TemplatePath:     templatePath,
		MaxResponseBytes: maxResponseBytes,
	}

	callQuery := func() (json.RawMessage, error) {
		resp, err := client.SendRequest[Request, map[string]json.RawMessage](ctx, bound, http.MethodPost, opts, req)
		if err != nil {
			return nil, err
		}

		body := *resp
		if errs, ok := body["errors"]; ok {
			return nil, types.NewProtocolError(fmt.Sprintf("graphql error: %s", string(errs)))
		}
		data, ok := body["data"]
		if !ok || string(data) == "null" {
			return nil, types.NewProtocolError("graphql response has no data")
		}

		return data, nil
	}

	return clientCallWithRetry(ctx, callQuery, c.cfg)
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[T],
	cfg *config.SourceConfig,
) (T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// Only rate limit errors (429) are retried
			shouldRetry := err != nil && strings.Contains(err.Error(), client.RateLimitExceeded)
			log.Ctx(ctx).Debug().
				Err(err).
				Bool("should_retry", shouldRetry).
				Msg("Retry condition check")
			return shouldRetry
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("rate limit exceeded, retrying with exponential backoff")
		}))
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
