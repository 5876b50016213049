package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/babylonlabs-io/metrics-publisher/internal/auth"
	"github.com/babylonlabs-io/metrics-publisher/internal/config"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/babylonlabs-io/metrics-publisher/pkg"
	"github.com/rs/zerolog/log"
)

func (s *Service) SetOwner(ctx context.Context, caller, newOwner state.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := auth.RequireOwner(caller, s.state.Owner); err != nil {
		return err
	}
	if err := pkg.ValidateIdentity(newOwner.String()); err != nil {
		return types.NewBadRequestError(err)
	}

	next := s.state.Clone()
	next.Owner = newOwner
	s.state = next
	s.persistLocked(ctx)

	log.Ctx(ctx).Info().
		Str("previous_owner", caller.String()).
		Str("owner", newOwner.String()).
		Msg("owner changed")
	return nil
}

func (s *Service) SetSourceURL(ctx context.Context, caller state.Identity, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := auth.RequireOwner(caller, s.state.Owner); err != nil {
		return err
	}
	if err := config.ValidateSourceURL(url); err != nil {
		return types.NewBadRequestError(err)
	}

	next := s.state.Clone()
	next.SourceURL = url
	s.state = next
	s.persistLocked(ctx)

	log.Ctx(ctx).Info().Str("source_url", url).Msg("source url changed")
	return nil
}

func (s *Service) SetRefreshEnabled(ctx context.Context, caller state.Identity, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := auth.RequireOwner(caller, s.state.Owner); err != nil {
		return err
	}

	next := s.state.Clone()
	next.RefreshEnabled = enabled
	s.state = next
	s.persistLocked(ctx)

	log.Ctx(ctx).Info().Bool("refresh_enabled", enabled).Msg("automatic refresh toggled")
	return nil
}

// IngestDailySnapshot records a manually supplied day in both series and returns the
// active-wallets payload. A snapshot already present in both series changes nothing.
// Any other snapshot clears the previous actor set, so the next automatic refresh
// starts its inflow from zero.
func (s *Service) IngestDailySnapshot(
	ctx context.Context, caller state.Identity, snapshot series.DailySnapshot,
) (string, error) {
	s.mu.Lock()

	if err := auth.RequireOwner(caller, s.state.Owner); err != nil {
		s.mu.Unlock()
		return "", err
	}
	if err := series.ValidateDay(snapshot.TS); err != nil {
		s.mu.Unlock()
		return "", types.NewBadRequestError(err)
	}

	point := snapshot.ActivePoint()
	extrinsicsPoint := snapshot.ExtrinsicsPoint()
	if series.Contains(s.state.Series, point) && series.Contains(s.state.ExtrinsicsSeries, extrinsicsPoint) {
		payload := s.state.Payload
		s.mu.Unlock()
		log.Ctx(ctx).Debug().Str("day", snapshot.TS).Msg("snapshot already ingested")
		return payload, nil
	}

	next := s.state.Clone()
	next.Series = series.Upsert(next.Series, point)
	next.ExtrinsicsSeries = series.Upsert(next.ExtrinsicsSeries, extrinsicsPoint)
	next.Payload = series.BuildActivePayload(next.Series)
	next.ExtrinsicsPayload = series.BuildExtrinsicsPayload(next.ExtrinsicsSeries)
	next.Touch(uint64(s.now().UnixNano()))
	next.PrevActiveWallets = []string{}

	root, err := s.commitLocked(ctx, next, seriesPaths)
	if err != nil {
		s.mu.Unlock()
		return "", types.NewInternalServiceError(err)
	}
	payload, lastUpdated := next.Payload, next.LastUpdated
	s.mu.Unlock()

	log.Ctx(ctx).Info().
		Str("day", snapshot.TS).
		Uint64("active", snapshot.Active).
		Uint64("extrinsics", snapshot.Extrinsics).
		Msg("daily snapshot ingested")
	s.notify(ctx, root, seriesPaths, lastUpdated)

	return payload, nil
}

// IngestNewWalletsInflow replaces the inflow payload and returns the cached value.
// The payload must be a JSON document; a byte-identical payload changes nothing.
func (s *Service) IngestNewWalletsInflow(ctx context.Context, caller state.Identity, payload string) (string, error) {
	s.mu.Lock()

	if err := auth.RequireOwner(caller, s.state.Owner); err != nil {
		s.mu.Unlock()
		return "", err
	}
	if !json.Valid([]byte(payload)) {
		s.mu.Unlock()
		return "", types.NewSerializationError(errors.New("inflow payload is not valid JSON"))
	}
	if s.state.InflowPayload == payload {
		s.mu.Unlock()
		return payload, nil
	}

	next := s.state.Clone()
	next.InflowPayload = payload
	next.Touch(uint64(s.now().UnixNano()))

	root, err := s.commitLocked(ctx, next, inflowPaths)
	if err != nil {
		s.mu.Unlock()
		return "", types.NewInternalServiceError(err)
	}
	lastUpdated := next.LastUpdated
	s.mu.Unlock()

	log.Ctx(ctx).Info().Int("payload_bytes", len(payload)).Msg("new wallets inflow ingested")
	s.notify(ctx, root, inflowPaths, lastUpdated)

	return payload, nil
}

// RefreshNow runs a refresh on behalf of the owner and propagates its failure.
func (s *Service) RefreshNow(ctx context.Context, caller state.Identity) (string, error) {
	s.mu.RLock()
	err := auth.RequireOwner(caller, s.state.Owner)
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	return s.refresh(ctx, triggerManual)
}
