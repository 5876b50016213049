package services

import (
	"context"
	"fmt"

	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/rs/zerolog/log"
)

// Bootstrap restores the persisted state, or starts fresh with the configured owner,
// and certifies every path against the restored payloads before anything is served.
func (s *Service) Bootstrap(ctx context.Context) error {
	owner := state.Identity(s.cfg.Owner.Identity)
	restored, err := s.store.Load(ctx, owner, s.cfg.Source.URL)
	if err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.publisher.Publish(ctx, assetHashes(restored.State, CertifiedPaths...)); err != nil {
		return fmt.Errorf("failed to certify restored assets: %w", err)
	}
	s.state = restored.State
	s.persistLocked(ctx)

	log.Ctx(ctx).Info().
		Str("outcome", string(restored.Outcome)).
		Int("schema_version", int(restored.Version)).
		Str("owner", s.state.Owner.String()).
		Str("source_url", s.state.SourceURL).
		Msg("state bootstrapped")
	return nil
}
