package graphqlclient

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(maxRetries uint) *config.SourceConfig {
	cfg := config.DefaultSourceConfig()
	cfg.MaxRetryTimes = maxRetries
	cfg.RetryInterval = 10 * time.Millisecond
	cfg.Timeout = 5 * time.Second
	return cfg
}

var countRequest = &Request{
	OperationName: "ExtrinsicsCount",
	Query:         "query ExtrinsicsCount { extrinsicsConnection { totalCount } }",
}

func TestQuery(t *testing.T) {
	ctx := t.Context()

	t.Run("data is returned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "metrics-publisher", r.Header.Get("User-Agent"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var req Request
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "ExtrinsicsCount", req.OperationName)

			w.Write([]byte(`{"data":{"extrinsicsConnection":{"totalCount":42}}}`)) //nolint:errcheck
		}))
		defer server.Close()

		data, err := NewClient(testConfig(3)).Query(ctx, server.URL, countRequest, 1_000_000)
		require.NoError(t, err)
		assert.JSONEq(t, `{"extrinsicsConnection":{"totalCount":42}}`, string(data))
	})
	t.Run("errors member is a protocol error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":null,"errors":[{"message":"bad field"}]}`)) //nolint:errcheck
		}))
		defer server.Close()

		_, err := NewClient(testConfig(3)).Query(ctx, server.URL, countRequest, 1_000_000)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.ProtocolError))
		assert.Contains(t, err.Error(), "bad field")
	})
	t.Run("missing data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`)) //nolint:errcheck
		}))
		defer server.Close()

		_, err := NewClient(testConfig(3)).Query(ctx, server.URL, countRequest, 1_000_000)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.ProtocolError))
	})
	t.Run("empty endpoint", func(t *testing.T) {
		_, err := NewClient(testConfig(3)).Query(ctx, "", countRequest, 1_000_000)
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.BadRequest))
	})
}

func TestQuery_WithRetry(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCount.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{"extrinsicsConnection":{"totalCount":1}}}`)) //nolint:errcheck
	}))
	defer server.Close()

	data, err := NewClient(testConfig(3)).Query(t.Context(), server.URL, countRequest, 1_000_000)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.EqualValues(t, 3, requestCount.Load(), "Should have made 3 requests (2 failures + 1 success)")
}

func TestQuery_ExceedsMaxRetries(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(2)).Query(t.Context(), server.URL, countRequest, 1_000_000)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.NetworkError))
	assert.EqualValues(t, 2, requestCount.Load(), "Should have made 2 requests before giving up")
}

func TestQuery_OtherFailuresAreNotRetried(t *testing.T) {
	var requestCount atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(3)).Query(t.Context(), server.URL, countRequest, 1_000_000)
	require.Error(t, err)
	assert.True(t, types.IsErrorCode(err, types.NetworkError))
	assert.EqualValues(t, 1, requestCount.Load())
}

func TestGraphQLClientWithMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"ok":true}}`)) //nolint:errcheck
	}))
	defer server.Close()

	c := NewGraphQLClientWithMetrics(NewClient(testConfig(1)))
	data, err := c.Query(t.Context(), server.URL, countRequest, 1_000_000)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}
