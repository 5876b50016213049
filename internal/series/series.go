package series

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// WindowDays is the number of trailing days retained in every series.
const WindowDays = 30

const dayLayout = time.DateOnly

// Point is a series entry keyed by its calendar day.
type Point interface {
	Day() string
}

type DailyPoint struct {
	TS         string `json:"ts"`
	Active     uint64 `json:"active"`
	NewWallets uint64 `json:"new"`
}

func (p DailyPoint) Day() string {
	return p.TS
}

type DailyExtrinsicsPoint struct {
	TS         string `json:"ts"`
	Extrinsics uint64 `json:"extrinsics"`
}

func (p DailyExtrinsicsPoint) Day() string {
	return p.TS
}

// DailySnapshot is a manually ingested day covering both series at once.
type DailySnapshot struct {
	TS         string `json:"ts"`
	Active     uint64 `json:"active"`
	NewWallets uint64 `json:"new"`
	Extrinsics uint64 `json:"extrinsics"`
}

func (s DailySnapshot) ActivePoint() DailyPoint {
	return DailyPoint{TS: s.TS, Active: s.Active, NewWallets: s.NewWallets}
}

func (s DailySnapshot) ExtrinsicsPoint() DailyExtrinsicsPoint {
	return DailyExtrinsicsPoint{TS: s.TS, Extrinsics: s.Extrinsics}
}

// Upsert replaces any entry sharing point's day, keeps the series sorted by day and
// trims the oldest entries beyond WindowDays. The input slice is left untouched.
func Upsert[P Point](series []P, point P) []P {
	out := make([]P, 0, len(series)+1)
	for _, entry := range series {
		if entry.Day() != point.Day() {
			out = append(out, entry)
		}
	}
	out = append(out, point)
	slices.SortStableFunc(out, func(a, b P) int {
		return strings.Compare(a.Day(), b.Day())
	})
	if excess := len(out) - WindowDays; excess > 0 {
		out = out[excess:]
	}
	return out
}

// Contains reports whether series holds an entry identical to point.
func Contains[P interface {
	Point
	comparable
}](series []P, point P) bool {
	return slices.Contains(series, point)
}

// DayLabel returns the UTC calendar day of t used as the series key.
func DayLabel(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// ValidateDay checks that ts is a canonical YYYY-MM-DD calendar day.
func ValidateDay(ts string) error {
	parsed, err := time.Parse(dayLayout, ts)
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", ts, err)
	}
	if parsed.Format(dayLayout) != ts {
		return fmt.Errorf("invalid day %q: not in canonical form", ts)
	}
	return nil
}
