//go:build e2e

package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/e2etest/container"
	"github.com/babylonlabs-io/metrics-publisher/internal/api"
	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/clients/graphqlclient"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/db"
	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/queue"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/btcsuite/btcd/btcec/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

var (
	eventuallyWaitTimeOut = 40 * time.Second
	eventuallyPollTime    = 1 * time.Second
)

// SourceHandler is an in-process stand-in for the upstream GraphQL indexer.
type SourceHandler struct {
	mu         sync.Mutex
	transfers  [][2]string
	extrinsics uint64
	calls      int
}

func (h *SourceHandler) SetWindow(transfers [][2]string, extrinsics uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.transfers = transfers
	h.extrinsics = extrinsics
}

func (h *SourceHandler) Calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

func (h *SourceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlclient.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++

	var data any
	switch req.OperationName {
	case "TransfersPage":
		edges := make([]any, 0, len(h.transfers))
		for _, transfer := range h.transfers {
			edges = append(edges, map[string]any{
				"node": map[string]any{
					"from": map[string]any{"id": transfer[0]},
					"to":   map[string]any{"id": transfer[1]},
				},
			})
		}
		data = map[string]any{
			"transfersConnection": map[string]any{
				"pageInfo": map[string]any{"hasNextPage": false, "endCursor": nil},
				"edges":    edges,
			},
		}
	case "ExtrinsicsCount":
		data = map[string]any{
			"extrinsicsConnection": map[string]any{"totalCount": h.extrinsics},
		}
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

type TestManager struct {
	Config       *config.Config
	Service      *services.Service
	Admin        *api.AdminClient
	AssetURL     string
	Source       *SourceHandler
	SourceURL    string
	Deliveries   <-chan amqp.Delivery
	AuthorityKey *btcec.PrivateKey

	ownerKey *btcec.PrivateKey
	store    db.StateStore
	queue    *queue.QueueManager
	closer   []func()
}

// StartManager starts mongodb and rabbitmq, then wires a publisher to them and to
// an in-process GraphQL source.
func StartManager(t *testing.T) *TestManager {
	ctx := t.Context()
	containers := container.NewManager(t)

	dbCfg := containers.RunMongo(t)
	brokerURL := containers.RunRabbitMQ(t)

	source := &SourceHandler{}
	sourceServer := httptest.NewServer(source)
	t.Cleanup(sourceServer.Close)

	ownerKey, err := auth.GenerateKey()
	require.NoError(t, err)
	authorityKey, err := auth.GenerateKey()
	require.NoError(t, err)

	cfg := DefaultMetricsPublisherConfig(dbCfg, brokerURL)
	cfg.Source.URL = sourceServer.URL + "/graphql"
	cfg.Owner.Identity = auth.IdentityFromKey(ownerKey).String()
	require.NoError(t, cfg.Validate())
	require.NoError(t, model.Setup(ctx, cfg.Db))

	deliveries := subscribe(t, brokerURL, cfg.Notifier.Exchange)

	tm := &TestManager{
		Config:       cfg,
		Source:       source,
		SourceURL:    cfg.Source.URL,
		Deliveries:   deliveries,
		AuthorityKey: authorityKey,
		ownerKey:     ownerKey,
	}
	tm.boot(t)

	return tm
}

// boot builds the service stack on top of the already running containers.
func (tm *TestManager) boot(t *testing.T) {
	ctx := t.Context()

	database, err := db.New(ctx, *tm.Config.Db)
	require.NoError(t, err)
	tm.store = db.NewStateStoreWithMetrics(database)

	qm, err := queue.NewQueueManager(tm.Config.Notifier)
	require.NoError(t, err)
	tm.queue = qm

	graphqlClient := graphqlclient.NewGraphQLClientWithMetrics(graphqlclient.NewClient(&tm.Config.Source))
	tm.Service = services.NewService(
		tm.Config,
		state.NewStore(tm.store),
		certification.NewPublisher(tm.Config.Certification.Label, certification.NewSigningAuthority(tm.AuthorityKey)),
		fetcher.New(graphqlClient, &tm.Config.Source),
		qm,
	)
	require.NoError(t, tm.Service.Bootstrap(ctx))

	assets := httptest.NewServer(api.NewServer(&tm.Config.Server, tm.Service).Handler())
	admin := httptest.NewServer(api.NewAdminServer(&tm.Config.Admin, tm.Service).Handler())
	tm.AssetURL = assets.URL
	tm.Admin = api.NewAdminClient(admin.URL, tm.ownerKey, 30*time.Second)
	tm.closer = []func(){assets.Close, admin.Close}
}

// Restart stops the service and boots a new one against the same database.
func (tm *TestManager) Restart(t *testing.T) {
	tm.Stop(t)
	tm.boot(t)
}

func (tm *TestManager) Stop(t *testing.T) {
	for _, closeFn := range tm.closer {
		closeFn()
	}
	tm.closer = nil

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tm.Service.Shutdown(ctx))
	tm.queue.Shutdown()
	require.NoError(t, tm.store.Close(ctx))
}

// GetAsset fetches an asset from the public listener.
func (tm *TestManager) GetAsset(t *testing.T, path string) (*http.Response, []byte) {
	resp, err := http.Get(tm.AssetURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

// VerifyAsset checks the certificate header of path against the authority key.
func (tm *TestManager) VerifyAsset(t *testing.T, path string) []byte {
	resp, body := tm.GetAsset(t, path)
	require.Equal(t, http.StatusOK, resp.StatusCode, path)

	err := certification.Verify(
		resp.Header.Get(certification.HeaderName),
		tm.Config.Certification.Label,
		path,
		body,
		tm.AuthorityKey.PubKey(),
	)
	require.NoError(t, err, path)
	return body
}

// WaitForEvent returns the next published event containing path.
func (tm *TestManager) WaitForEvent(t *testing.T, path string) *queue.AssetsPublishedEvent {
	var found *queue.AssetsPublishedEvent
	require.Eventually(t, func() bool {
		select {
		case d := <-tm.Deliveries:
			var ev queue.AssetsPublishedEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				t.Logf("skipping undecodable event: %v", err)
				return false
			}
			for _, changed := range ev.ChangedPaths {
				if changed == path {
					found = &ev
					return true
				}
			}
		default:
		}
		return false
	}, eventuallyWaitTimeOut, eventuallyPollTime)

	return found
}

func subscribe(t *testing.T, brokerURL, exchange string) <-chan amqp.Delivery {
	conn, err := amqp.Dial(brokerURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)
	// the publisher declares the same exchange on connect
	require.NoError(t, ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil))

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, "", exchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func DefaultMetricsPublisherConfig(dbCfg *config.DbConfig, brokerURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", AssetCacheMaxAge: time.Minute},
		Admin:  config.AdminConfig{Host: "127.0.0.1", MaxClockSkew: time.Minute},
		Source: *config.DefaultSourceConfig(),
		Poller: config.PollerConfig{RefreshInterval: time.Hour},
		Storage: config.StorageConfig{
			Type: config.StorageTypeMongo,
		},
		Db:            dbCfg,
		Certification: config.CertificationConfig{Label: certification.DefaultLabel},
		Notifier: &config.NotifierConfig{
			URL:      brokerURL,
			Exchange: fmt.Sprintf("metrics-publisher-e2e-%d", time.Now().UnixNano()),
		},
		Metrics:  config.MetricsConfig{Host: "127.0.0.1", Port: 0},
		LogLevel: "debug",
	}
}
