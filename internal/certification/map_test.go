package certification

import (
	"crypto/sha256"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashOf(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

// checkInvariants verifies the red-black shape and the cached digests and
// returns the black height.
func checkInvariants(t *testing.T, n *node) int {
	if n == nil {
		return 1
	}
	assert.False(t, isRed(n.right), "right leaning red link at %q", n.key)
	if isRed(n) {
		assert.False(t, isRed(n.left), "two red links in a row at %q", n.key)
	}

	left := checkInvariants(t, n.left)
	right := checkInvariants(t, n.right)
	require.Equal(t, left, right, "unbalanced black height at %q", n.key)

	expected := *n
	expected.update()
	assert.Equal(t, expected.subtree, n.subtree, "stale digest at %q", n.key)

	if n.red {
		return left
	}
	return left + 1
}

func TestMap_WitnessesMatchRoot(t *testing.T) {
	m := NewMap()
	entries := map[string][32]byte{}
	for i := 0; i < 200; i++ {
		key := "/" + gofakeit.LetterN(uint(gofakeit.Number(1, 12)))
		value := hashOf(gofakeit.Sentence(5))
		entries[key] = value
		m = m.Insert(key, value)
	}

	require.Equal(t, len(entries), m.Len())
	assert.False(t, isRed(m.root))
	checkInvariants(t, m.root)

	root := m.RootHash()
	for key, value := range entries {
		w, err := m.Witness(key)
		require.NoError(t, err)
		require.Equal(t, root, w.Digest(), key)

		revealed, ok := w.Lookup([]byte(key))
		require.True(t, ok, key)
		assert.Equal(t, value[:], revealed)
	}
}

func TestMap_WitnessRevealsOnlyItsKey(t *testing.T) {
	m := NewMap()
	for _, key := range []string{"/", "/a", "/b", "/c", "/d"} {
		m = m.Insert(key, hashOf(key))
	}

	w, err := m.Witness("/b")
	require.NoError(t, err)

	for _, key := range []string{"/", "/a", "/c", "/d"} {
		_, ok := w.Lookup([]byte(key))
		assert.False(t, ok, key)
	}

	_, err = m.Witness("/missing")
	require.Error(t, err)
}

func TestMap_InsertIsPersistent(t *testing.T) {
	m := NewMap().Insert("/a", hashOf("a")).Insert("/b", hashOf("b"))
	before := m.RootHash()

	next := m.Insert("/a", hashOf("changed")).Insert("/c", hashOf("c"))

	assert.Equal(t, before, m.RootHash())
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, 3, next.Len())
	assert.NotEqual(t, before, next.RootHash())

	value, ok := m.Get("/a")
	require.True(t, ok)
	assert.Equal(t, hashOf("a"), value)
}

func TestMap_SameContentSameRoot(t *testing.T) {
	keys := []string{"/", "/active-wallets-daily.json", "/extrinsics-daily.json", "/new-wallets-inflow.json"}

	m := NewMap()
	for _, key := range keys {
		m = m.Insert(key, hashOf(key))
	}
	root := m.RootHash()

	// re-inserting identical values keeps the shape
	again := m
	for _, key := range keys {
		again = again.Insert(key, hashOf(key))
	}
	assert.Equal(t, root, again.RootHash())
	assert.Equal(t, keys, again.Keys())
}

func TestMap_Empty(t *testing.T) {
	m := NewMap()
	assert.Equal(t, Empty().Digest(), m.RootHash())
	assert.Zero(t, m.Len())
	assert.Empty(t, m.Keys())
}
