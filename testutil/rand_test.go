package testutil

import (
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerName(t *testing.T) {
	a, b := ContainerName("mongo"), ContainerName("mongo")
	assert.Regexp(t, `^mongo-[a-z]{6}$`, a)
	assert.NotEqual(t, a, b)
}

func TestRandomWalletIDs(t *testing.T) {
	ids := RandomWalletIDs(50)
	require.Len(t, ids, 50)
	assert.Equal(t, 50, series.ActorSetFromSlice(ids).Len())
}

func TestRandomDailySnapshot(t *testing.T) {
	snapshot := RandomDailySnapshot(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-03-01", snapshot.TS)
	assert.NoError(t, series.ValidateDay(snapshot.TS))
	assert.LessOrEqual(t, snapshot.NewWallets, snapshot.Active)
}
