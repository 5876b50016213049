package testutil

import (
	"strings"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/brianvoe/gofakeit/v7"
)

// ContainerName appends a random suffix to prefix. Docker allows only one
// container per name and a previous run may still be around.
func ContainerName(prefix string) string {
	return prefix + "-" + strings.ToLower(gofakeit.LetterN(6))
}

// RandomWalletIDs returns n distinct account ids shaped like the indexer's.
func RandomWalletIDs(n int) []string {
	seen := make(map[string]struct{}, n)
	ids := make([]string, 0, n)
	for len(ids) < n {
		id := "5" + gofakeit.LetterN(47)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RandomDailySnapshot returns a consistent snapshot for day: new wallets never
// exceed the active ones.
func RandomDailySnapshot(day time.Time) series.DailySnapshot {
	active := gofakeit.Number(1, 10_000)
	return series.DailySnapshot{
		TS:         series.DayLabel(day),
		Active:     uint64(active),
		NewWallets: uint64(gofakeit.Number(0, active)),
		Extrinsics: uint64(gofakeit.Number(0, 100_000)),
	}
}
