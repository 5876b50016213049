package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/db"
	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/tests/mocks"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type adminEnv struct {
	service  *services.Service
	fetcher  *mocks.FetcherInterface
	admin    *httptest.Server
	public   http.Handler
	ownerKey *btcec.PrivateKey
	trusted  *btcec.PublicKey
}

func newAdminEnv(t *testing.T) *adminEnv {
	ctx := t.Context()

	ownerKey, err := auth.GenerateKey()
	require.NoError(t, err)
	authorityKey, err := auth.GenerateKey()
	require.NoError(t, err)

	backend, err := db.NewLevelStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close(context.Background()) })

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", AssetCacheMaxAge: time.Minute},
		Admin:  config.AdminConfig{Host: "127.0.0.1", MaxClockSkew: time.Minute},
		Source: *config.DefaultSourceConfig(),
		Owner:  config.OwnerConfig{Identity: auth.IdentityFromKey(ownerKey).String()},
	}

	authority := certification.NewSigningAuthority(authorityKey)
	f := mocks.NewFetcherInterface(t)
	service := services.NewService(
		cfg,
		state.NewStore(backend),
		certification.NewPublisher(certification.DefaultLabel, authority),
		f,
		nil,
	)
	require.NoError(t, service.Bootstrap(ctx))

	admin := httptest.NewServer(NewAdminServer(&cfg.Admin, service).Handler())
	t.Cleanup(admin.Close)

	return &adminEnv{
		service:  service,
		fetcher:  f,
		admin:    admin,
		public:   NewServer(&cfg.Server, service).Handler(),
		ownerKey: ownerKey,
		trusted:  authority.PublicKey(),
	}
}

func (e *adminEnv) client(key *btcec.PrivateKey) *AdminClient {
	return NewAdminClient(e.admin.URL, key, 5*time.Second)
}

func TestAdmin_IngestAndServe(t *testing.T) {
	ctx := t.Context()
	env := newAdminEnv(t)
	owner := env.client(env.ownerKey)

	payload, err := owner.IngestDailySnapshot(ctx, series.DailySnapshot{TS: "2024-03-01", Active: 5, NewWallets: 2, Extrinsics: 10})
	require.NoError(t, err)
	assert.Equal(t, `{"days":30,"series":[{"ts":"2024-03-01","active":5,"new":2}]}`, payload)

	inflow := `{"asOf":"2024-03-01","minRaw":"100","entries":[]}`
	got, err := owner.IngestNewWalletsInflow(ctx, inflow)
	require.NoError(t, err)
	assert.Equal(t, inflow, got)

	for _, path := range services.CertifiedPaths {
		resp, body := serve(t, env.public, path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		header := resp.Header.Get(certification.HeaderName)
		require.NotEmpty(t, header, path)
		err := certification.Verify(header, certification.DefaultLabel, path, []byte(body), env.trusted)
		assert.NoError(t, err, path)
	}
}

func TestAdmin_Settings(t *testing.T) {
	ctx := t.Context()
	env := newAdminEnv(t)
	owner := env.client(env.ownerKey)

	status, err := owner.SetRefreshEnabled(ctx, false)
	require.NoError(t, err)
	assert.False(t, status.RefreshEnabled)

	status, err = owner.SetSourceURL(ctx, "https://indexer.example.com/graphql")
	require.NoError(t, err)
	assert.Equal(t, "https://indexer.example.com/graphql", status.SourceURL)

	_, err = owner.SetSourceURL(ctx, "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD_REQUEST")

	nextKey, err := auth.GenerateKey()
	require.NoError(t, err)
	_, err = owner.SetOwner(ctx, auth.IdentityFromKey(nextKey))
	require.NoError(t, err)
	assert.Equal(t, auth.IdentityFromKey(nextKey), env.service.Owner())

	_, err = owner.SetRefreshEnabled(ctx, true)
	require.Error(t, err, "previous owner lost access")
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
}

func TestAdmin_Refresh(t *testing.T) {
	ctx := t.Context()
	env := newAdminEnv(t)
	env.fetcher.On("FetchWindow", mock.Anything, state.DefaultSourceURL, mock.Anything).
		Return(&fetcher.WindowResult{Actors: series.ActorSetFromSlice([]string{"a", "b"}), Extrinsics: 3}, nil).Once()

	payload, err := env.client(env.ownerKey).RefreshNow(ctx)
	require.NoError(t, err)
	assert.Contains(t, payload, `"active":2,"new":0`)
}

func TestAdmin_Rejections(t *testing.T) {
	ctx := t.Context()
	env := newAdminEnv(t)

	t.Run("signed by a stranger", func(t *testing.T) {
		stranger, err := auth.GenerateKey()
		require.NoError(t, err)

		_, err = env.client(stranger).RefreshNow(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "UNAUTHORIZED")
	})

	post := func(t *testing.T, body string, headers map[string]string) (int, ErrorResponse) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.admin.URL+PathSnapshots, strings.NewReader(body))
		require.NoError(t, err)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &errResp))
		return resp.StatusCode, errResp
	}
	signed := func(t *testing.T, signedBody string) map[string]string {
		ts := time.Now().Unix()
		sig, err := auth.SignRequest(env.ownerKey, http.MethodPost, PathSnapshots, []byte(signedBody), ts)
		require.NoError(t, err)
		return map[string]string{
			auth.HeaderIdentity:  auth.IdentityFromKey(env.ownerKey).String(),
			auth.HeaderTimestamp: strconv.FormatInt(ts, 10),
			auth.HeaderSignature: sig,
		}
	}

	t.Run("unsigned", func(t *testing.T) {
		status, errResp := post(t, `{"ts":"2024-03-01"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errResp.ErrorCode)
	})
	t.Run("tampered body", func(t *testing.T) {
		body := `{"ts":"2024-03-01","active":500}`
		status, errResp := post(t, body, signed(t, `{"ts":"2024-03-01","active":5}`))
		assert.Equal(t, http.StatusUnauthorized, status)
		assert.Equal(t, "UNAUTHORIZED", errResp.ErrorCode)
	})
	t.Run("malformed body", func(t *testing.T) {
		body := `{"ts":"2024-03-01","unknown":1}`
		status, errResp := post(t, body, signed(t, body))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", errResp.ErrorCode)
	})
	t.Run("invalid day", func(t *testing.T) {
		body := `{"ts":"03/01/2024","active":1,"new":0,"extrinsics":0}`
		status, errResp := post(t, body, signed(t, body))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "BAD_REQUEST", errResp.ErrorCode)
	})

	assert.Equal(t, series.DefaultActivePayload(), env.service.ActiveWalletsDaily())
}

func TestAdmin_IngestSnapshotBody(t *testing.T) {
	ctx := t.Context()
	env := newAdminEnv(t)

	body := `{"ts":"2024-03-01","active":5,"new":2,"extrinsics":10}`
	ts := time.Now().Unix()
	sig, err := auth.SignRequest(env.ownerKey, http.MethodPost, PathSnapshots, []byte(body), ts)
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.admin.URL+PathSnapshots, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set(auth.HeaderIdentity, auth.IdentityFromKey(env.ownerKey).String())
	req.Header.Set(auth.HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(auth.HeaderSignature, sig)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload PayloadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, `{"days":30,"series":[{"ts":"2024-03-01","active":5,"new":2}]}`, payload.Payload)
	assert.Equal(t, `{"days":30,"series":[{"ts":"2024-03-01","extrinsics":10}]}`, env.service.ExtrinsicsDaily())
}
