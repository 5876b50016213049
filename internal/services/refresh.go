package services

import (
	"context"
	"net/http"

	"github.com/babylonlabs-io/metrics-publisher/internal/fetcher"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/babylonlabs-io/metrics-publisher/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

const (
	triggerManual = "manual"
	triggerTimer  = "timer"
)

// StartRefreshPoller runs the automatic refresh every poller.refresh-interval until
// ctx is cancelled or the service shuts down.
func (s *Service) StartRefreshPoller(ctx context.Context) {
	s.refreshPoller = poller.NewPoller(
		"refresh",
		s.cfg.Poller.RefreshInterval,
		metrics.RecordPollerDuration("refresh", s.pollRefresh),
	)
	go s.refreshPoller.Start(ctx)
}

// pollRefresh skips the tick when a manual refresh is still running.
func (s *Service) pollRefresh(ctx context.Context) error {
	_, err := s.refresh(ctx, triggerTimer)
	if types.IsErrorCode(err, types.RefreshInProgress) {
		log.Ctx(ctx).Info().Msg("refresh already in flight, skipping tick")
		return nil
	}
	return err
}

// refresh fetches the trailing window and folds it into both series. Only one
// refresh runs at a time. Nothing is committed unless the whole window was fetched
// and the new root was certified.
func (s *Service) refresh(ctx context.Context, trigger string) (string, error) {
	if !s.refreshing.CompareAndSwap(false, true) {
		metrics.RecordRefresh(trigger, metrics.Skipped)
		return "", types.NewErrorWithMsg(
			http.StatusConflict, types.RefreshInProgress, "a refresh is already in flight",
		)
	}
	defer s.refreshing.Store(false)

	s.mu.RLock()
	sourceURL, enabled, payload := s.state.SourceURL, s.state.RefreshEnabled, s.state.Payload
	s.mu.RUnlock()

	log := log.Ctx(ctx)
	if !enabled {
		log.Debug().Str("trigger", trigger).Msg("automatic refresh disabled")
		metrics.RecordRefresh(trigger, metrics.Skipped)
		return payload, nil
	}

	window, err := fetcher.TrailingWindow(s.now(), s.cfg.Source.Window)
	if err != nil {
		metrics.RecordRefresh(trigger, metrics.Error)
		return "", err
	}
	result, err := s.fetcher.FetchWindow(ctx, sourceURL, window)
	if err != nil {
		log.Warn().Err(err).Str("trigger", trigger).Str("source_url", sourceURL).Msg("refresh fetch failed")
		metrics.RecordRefresh(trigger, metrics.Error)
		return "", err
	}

	s.mu.Lock()
	next := s.state.Clone()
	newWallets := series.NewWallets(result.Actors, series.ActorSetFromSlice(next.PrevActiveWallets))
	point := series.DailyPoint{
		TS:         window.Day(),
		Active:     uint64(result.Actors.Len()),
		NewWallets: newWallets,
	}
	extrinsicsPoint := series.DailyExtrinsicsPoint{TS: window.Day(), Extrinsics: result.Extrinsics}

	next.PrevActiveWallets = result.Actors.Sorted()
	next.Series = series.Upsert(next.Series, point)
	next.ExtrinsicsSeries = series.Upsert(next.ExtrinsicsSeries, extrinsicsPoint)
	next.Payload = series.BuildActivePayload(next.Series)
	next.ExtrinsicsPayload = series.BuildExtrinsicsPayload(next.ExtrinsicsSeries)
	next.Touch(uint64(s.now().UnixNano()))

	root, err := s.commitLocked(ctx, next, CertifiedPaths)
	if err != nil {
		s.mu.Unlock()
		metrics.RecordRefresh(trigger, metrics.Error)
		return "", types.NewInternalServiceError(err)
	}
	payload, lastUpdated := next.Payload, next.LastUpdated
	s.mu.Unlock()

	metrics.RecordRefresh(trigger, metrics.Success)
	metrics.RecordDailyMetrics(point.Active, point.NewWallets, extrinsicsPoint.Extrinsics)
	log.Info().
		Str("trigger", trigger).
		Str("day", point.TS).
		Uint64("active", point.Active).
		Uint64("new_wallets", point.NewWallets).
		Uint64("extrinsics", extrinsicsPoint.Extrinsics).
		Msg("refresh completed")
	s.notify(ctx, root, CertifiedPaths, lastUpdated)

	return payload, nil
}
