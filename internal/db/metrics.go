package db

import (
	"context"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/babylonlabs-io/metrics-publisher/internal/utils"
)

type StateStoreWithMetrics struct {
	store StateStore
}

func NewStateStoreWithMetrics(store StateStore) *StateStoreWithMetrics {
	return &StateStoreWithMetrics{store: store}
}

func (d *StateStoreWithMetrics) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

func (d *StateStoreWithMetrics) GetState(ctx context.Context) (result *model.StateDocument, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.store.GetState(ctx)
		return err
	})

	return
}

func (d *StateStoreWithMetrics) SaveState(ctx context.Context, doc *model.StateDocument) error {
	return d.run(func() error {
		return d.store.SaveState(ctx, doc)
	})
}

func (d *StateStoreWithMetrics) Close(ctx context.Context) error {
	return d.store.Close(ctx)
}

// run labels the latency with the name of the calling method.
func (d *StateStoreWithMetrics) run(f func() error) error {
	method := utils.GetFunctionName(1)
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	// a missing document is the normal first-boot answer, not a failure
	metrics.RecordDbLatency(duration, method, err != nil && !IsNotFoundError(err))
	return err
}
