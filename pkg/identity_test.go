package pkg

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	identity := EncodeIdentity(priv.PubKey())
	require.NoError(t, ValidateIdentity(identity))

	pub, err := ParseIdentity(identity)
	require.NoError(t, err)
	assert.Equal(t, EncodeIdentity(pub), identity)

	t.Run("invalid", func(t *testing.T) {
		for _, identity := range []string{"", "abc", gofakeit.LetterN(10), "0OIl"} {
			assert.Error(t, ValidateIdentity(identity), identity)
		}
	})
}
