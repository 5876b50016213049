package auth

import (
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, RequireOwner("owner", "owner"))

	for _, caller := range []state.Identity{"", "other"} {
		err := RequireOwner(caller, "owner")
		require.Error(t, err)
		assert.True(t, types.IsErrorCode(err, types.Unauthorized))
	}
	assert.Error(t, RequireOwner("", ""))
}

func TestParsePrivateKey(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(hex.EncodeToString(priv.Serialize()))
	require.NoError(t, err)
	assert.Equal(t, IdentityFromKey(priv), IdentityFromKey(parsed))

	_, err = ParsePrivateKey("zz")
	assert.Error(t, err)
	_, err = ParsePrivateKey("abcd")
	assert.Error(t, err)
}

func TestSignAndVerifyRequest(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	identity := string(IdentityFromKey(priv))

	now := time.Unix(1_700_000_000, 0)
	ts := now.Unix()
	body := []byte(`{"enabled":false}`)
	const path = "/admin/refresh-enabled"

	sig, err := SignRequest(priv, http.MethodPut, path, body, ts)
	require.NoError(t, err)
	timestamp := "1700000000"

	t.Run("valid", func(t *testing.T) {
		caller, err := VerifyRequest(identity, http.MethodPut, path, body, timestamp, sig, now, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, state.Identity(identity), caller)
	})

	other, err := GenerateKey()
	require.NoError(t, err)

	tests := []struct {
		name      string
		identity  string
		method    string
		path      string
		body      []byte
		timestamp string
		signature string
		now       time.Time
	}{
		{"other identity", string(IdentityFromKey(other)), http.MethodPut, path, body, timestamp, sig, now},
		{"malformed identity", "nope", http.MethodPut, path, body, timestamp, sig, now},
		{"other method", identity, http.MethodPost, path, body, timestamp, sig, now},
		{"other path", identity, http.MethodPut, "/admin/owner", body, timestamp, sig, now},
		{"other body", identity, http.MethodPut, path, []byte(`{"enabled":true}`), timestamp, sig, now},
		{"bad timestamp", identity, http.MethodPut, path, body, "yesterday", sig, now},
		{"too old", identity, http.MethodPut, path, body, timestamp, sig, now.Add(2 * time.Minute)},
		{"from the future", identity, http.MethodPut, path, body, timestamp, sig, now.Add(-2 * time.Minute)},
		{"bad signature", identity, http.MethodPut, path, body, timestamp, "00", now},
		{"signature not hex", identity, http.MethodPut, path, body, timestamp, "xyz", now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyRequest(tt.identity, tt.method, tt.path, tt.body, tt.timestamp, tt.signature, tt.now, time.Minute)
			require.Error(t, err)
			assert.True(t, types.IsErrorCode(err, types.Unauthorized))
		})
	}
}
