package metrics

import (
	"context"
	"time"
)

type tickFunc = func(ctx context.Context) error

// RecordPollerDuration wraps a poller tick and observes how long it took, labeled
// by poller name and outcome.
func RecordPollerDuration(name string, tick tickFunc) tickFunc {
	return func(ctx context.Context) error {
		start := time.Now()
		err := tick(ctx)
		pollerDurationHistogram.WithLabelValues(name, outcome(err != nil).String()).Observe(time.Since(start).Seconds())

		return err
	}
}
