package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/queue"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

// Service holds the single state record. Every commit happens under mu, so readers
// observe either the old or the new payloads together with the matching certificate.
type Service struct {
	cfg       *config.Config
	mu        sync.RWMutex
	state     *state.State
	store     *state.Store
	publisher *certification.Publisher
	fetcher   fetcher.FetcherInterface
	// notifier is optional
	notifier queue.Notifier

	refreshing    atomic.Bool
	refreshPoller *poller.Poller
	now           func() time.Time
}

func NewService(
	cfg *config.Config,
	store *state.Store,
	publisher *certification.Publisher,
	fetcher fetcher.FetcherInterface,
	notifier queue.Notifier,
) *Service {
	return &Service{
		cfg:       cfg,
		state:     state.New(state.Identity(cfg.Owner.Identity), cfg.Source.URL),
		store:     store,
		publisher: publisher,
		fetcher:   fetcher,
		notifier:  notifier,
		now:       time.Now,
	}
}

// commitLocked certifies paths of next and swaps next in once the authority accepted
// the new root, which it returns. The caller must hold mu for writing.
func (s *Service) commitLocked(ctx context.Context, next *state.State, paths []string) ([32]byte, error) {
	if err := s.publisher.Publish(ctx, assetHashes(next, paths...)); err != nil {
		return [32]byte{}, err
	}
	root := s.publisher.RootHash()
	s.state = next
	s.persistLocked(ctx)
	return root, nil
}

// persistLocked is best effort, a failed write is retried by the next commit or at
// shutdown.
func (s *Service) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.state); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to persist state")
	}
}

// notify reports the root registered by the commit that changed paths.
func (s *Service) notify(ctx context.Context, root [32]byte, paths []string, lastUpdated *uint64) {
	if s.notifier == nil {
		return
	}
	ev := queue.NewAssetsPublishedEvent(root, paths, lastUpdated)
	if err := s.notifier.NotifyAssetsPublished(ctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("paths", paths).Msg("failed to send assets published event")
	}
}

// Shutdown stops the refresh poller and writes the current state one last time.
func (s *Service) Shutdown(ctx context.Context) error {
	if s.refreshPoller != nil {
		s.refreshPoller.Stop()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.store.Save(ctx, s.state)
}
