package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/api"
	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/clients/graphqlclient"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/db"
	dbmodel "github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/tracing"
	"github.com/babylonlabs-io/metrics-publisher/internal/queue"
	"github.com/babylonlabs-io/metrics-publisher/internal/services"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the metrics publisher server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error while closing state store")
		}
	}()

	var graphqlClient graphqlclient.GraphQLInterface = graphqlclient.NewClient(&cfg.Source)
	graphqlClient = graphqlclient.NewGraphQLClientWithMetrics(graphqlClient)

	authority, err := newAuthority(cfg)
	if err != nil {
		return err
	}

	var notifier queue.Notifier
	if cfg.Notifier != nil {
		qm, err := queue.NewQueueManager(cfg.Notifier)
		if err != nil {
			return fmt.Errorf("failed to initialize queue manager: %w", err)
		}
		defer qm.Shutdown()
		notifier = qm
	}

	service := services.NewService(
		cfg,
		state.NewStore(store),
		certification.NewPublisher(cfg.Certification.Label, authority),
		fetcher.New(graphqlClient, &cfg.Source),
		notifier,
	)
	if err := service.Bootstrap(ctx); err != nil {
		return fmt.Errorf("error while bootstrapping service: %w", err)
	}

	// initialize metrics with the metrics port from config
	metrics.Init(cfg.Metrics.GetMetricsPort())

	service.StartRefreshPoller(ctx)

	server := api.NewServer(&cfg.Server, service)
	adminServer := api.NewAdminServer(&cfg.Admin, service)

	var wg conc.WaitGroup
	wg.Go(func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("asset server stopped")
			stop()
		}
	})
	wg.Go(func() {
		if err := adminServer.Start(); err != nil {
			log.Error().Err(err).Msg("admin server stopped")
			stop()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error while shutting down asset server")
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error while shutting down admin server")
	}
	wg.Wait()

	return service.Shutdown(shutdownCtx)
}

// newStateStore opens the configured backend wrapped with latency metrics.
func newStateStore(ctx context.Context, cfg *config.Config) (db.StateStore, error) {
	var store db.StateStore
	switch cfg.Storage.Type {
	case config.StorageTypeMongo:
		if err := dbmodel.Setup(ctx, cfg.Db); err != nil {
			return nil, fmt.Errorf("error while setting up state db model: %w", err)
		}
		database, err := db.New(ctx, *cfg.Db)
		if err != nil {
			return nil, fmt.Errorf("error while creating db client: %w", err)
		}
		store = database
	default:
		levelStore, err := db.NewLevelStore(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("error while opening state store: %w", err)
		}
		store = levelStore
	}

	return db.NewStateStoreWithMetrics(store), nil
}

// newAuthority loads the certification key, or generates an ephemeral one whose
// certificates stop verifying after a restart.
func newAuthority(cfg *config.Config) (*certification.SigningAuthority, error) {
	if cfg.Certification.PrivateKey == "" {
		key, err := auth.GenerateKey()
		if err != nil {
			return nil, err
		}
		log.Warn().
			Str("authority", auth.IdentityFromKey(key).String()).
			Msg("no certification key configured, using an ephemeral key")
		return certification.NewSigningAuthority(key), nil
	}

	key, err := auth.ParsePrivateKey(cfg.Certification.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid certification key: %w", err)
	}
	log.Info().Str("authority", auth.IdentityFromKey(key).String()).Msg("certification key loaded")
	return certification.NewSigningAuthority(key), nil
}
