package fetcher

import (
	"fmt"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
)

// Window is the half-open interval [From, To) queried upstream.
type Window struct {
	From time.Time
	To   time.Time
}

// TrailingWindow returns the window of length span ending at now.
func TrailingWindow(now time.Time, span time.Duration) (Window, error) {
	if now.IsZero() {
		return Window{}, types.NewTimestampError(fmt.Errorf("current time is not set"))
	}
	if span <= 0 {
		return Window{}, types.NewTimestampError(fmt.Errorf("window span must be positive, got %s", span))
	}

	w := Window{From: now.Add(-span).UTC(), To: now.UTC()}
	// RFC3339 has exactly four year digits
	for _, bound := range []time.Time{w.From, w.To} {
		if bound.Year() < 0 || bound.Year() > 9999 {
			return Window{}, types.NewTimestampError(fmt.Errorf("%s is not representable as RFC3339", bound))
		}
	}

	return w, nil
}

// Day is the series key the window's results are stored under.
func (w Window) Day() string {
	return series.DayLabel(w.To)
}

func (w Window) variables() map[string]any {
	return map[string]any{
		"from": w.From.Format(time.RFC3339),
		"to":   w.To.Format(time.RFC3339),
	}
}
