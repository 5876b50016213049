package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	UserAgent = "metrics-publisher"
	// RateLimitExceeded is part of the error message of every 429 response, retry
	// policies match on it.
	RateLimitExceeded = "rate limit exceeded"

	defaultMaxResponseBytes = 2_000_000
)

type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() time.Duration
	GetHttpClient() *http.Client
}

type HttpClientOptions struct {
	Timeout time.Duration
	Path    string
	// TemplatePath is the low-cardinality path reported to metrics.
	TemplatePath     string
	Headers          map[string]string
	MaxResponseBytes int64
}

// SendRequest encodes input as the JSON request body, performs the call and decodes
// the response body into R.
func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *HttpClientOptions, input *I,
) (*R, error) {
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	templatePath := opts.templatePath()

	var body io.Reader
	if input != nil {
		bz, err := json.Marshal(input)
		if err != nil {
			return nil, types.NewSerializationError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		body = bytes.NewReader(bz)
	}

	resp, err := do(ctx, client, method, opts, body, input != nil)
	if err != nil {
		return nil, err
	}
	raw := resp.Body

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, types.NewErrorWithMsg(
			http.StatusTooManyRequests, types.NetworkError,
			fmt.Sprintf("%s: %s returned %d", RateLimitExceeded, templatePath, resp.StatusCode),
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Ctx(ctx).Debug().
			Int("status", resp.StatusCode).
			Str("path", templatePath).
			Msg("unexpected response status")
		return nil, types.NewNetworkError(
			fmt.Errorf("%s returned status %d: %s", templatePath, resp.StatusCode, errorSnippet(raw)),
		)
	}

	var result R
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, types.NewSerializationError(fmt.Errorf("failed to decode response body: %w", err))
	}

	return &result, nil
}

func errorSnippet(raw []byte) string {
	const maxSnippet = 256
	if len(raw) > maxSnippet {
		return string(raw[:maxSnippet]) + "..."
	}
	return string(raw)
}

// RawResponse is a response returned as is, whatever its status.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// SendRawRequest performs a body-less request and returns the capped response
// without interpreting its status or content.
func SendRawRequest(ctx context.Context, client BaseClient, method string, opts *HttpClientOptions) (*RawResponse, error) {
	timeout := client.GetDefaultRequestTimeout()
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return do(ctx, client, method, opts, nil, false)
}

func (opts *HttpClientOptions) templatePath() string {
	if opts.TemplatePath != "" {
		return opts.TemplatePath
	}
	return opts.Path
}

func do(
	ctx context.Context, client BaseClient, method string, opts *HttpClientOptions, body io.Reader, jsonBody bool,
) (*RawResponse, error) {
	templatePath := opts.templatePath()

	req, err := http.NewRequestWithContext(ctx, method, client.GetBaseURL()+opts.Path, body)
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	if jsonBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	observe := metrics.StartClientRequestDurationTimer(client.GetBaseURL(), method, templatePath)

	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		observe(0)
		return nil, types.NewNetworkError(fmt.Errorf("request to %s failed: %w", templatePath, err))
	}
	defer resp.Body.Close()
	observe(resp.StatusCode)

	maxBytes := opts.MaxResponseBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxResponseBytes
	}
	// one extra byte tells an exact-size body apart from a truncated one
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, types.NewNetworkError(fmt.Errorf("failed to read response body: %w", err))
	}
	if int64(len(raw)) > maxBytes {
		return nil, types.NewNetworkError(fmt.Errorf("response body exceeds %d bytes", maxBytes))
	}

	return &RawResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: raw}, nil
}
