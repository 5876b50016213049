package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/babylonlabs-io/metrics-publisher/internal/types"
	"github.com/babylonlabs-io/metrics-publisher/pkg"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	HeaderIdentity  = "X-Caller-Identity"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

var requestTag = []byte("metrics-publisher/admin-request")

// RequireOwner rejects every caller other than the current owner.
func RequireOwner(caller, owner state.Identity) error {
	if caller == "" || caller != owner {
		return types.NewUnauthorizedError("caller is not the owner")
	}
	return nil
}

func GenerateKey() (*btcec.PrivateKey, error) {
	return btcec.NewPrivateKey()
}

func ParsePrivateKey(hexKey string) (*btcec.PrivateKey, error) {
	bz, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("private key is not hex: %w", err)
	}
	if len(bz) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", btcec.PrivKeyBytesLen, len(bz))
	}

	priv, _ := btcec.PrivKeyFromBytes(bz)
	return priv, nil
}

func IdentityFromKey(priv *btcec.PrivateKey) state.Identity {
	return state.Identity(pkg.EncodeIdentity(priv.PubKey()))
}

func requestDigest(method, path string, body []byte, ts int64) []byte {
	bodyHash := sha256.Sum256(body)
	return chainhash.TaggedHash(
		requestTag,
		[]byte(method), []byte{'|'},
		[]byte(path), []byte{'|'},
		[]byte(strconv.FormatInt(ts, 10)), []byte{'|'},
		bodyHash[:],
	)[:]
}

// SignRequest returns the hex signature of an admin request issued at ts (unix seconds).
func SignRequest(priv *btcec.PrivateKey, method, path string, body []byte, ts int64) (string, error) {
	sig, err := schnorr.Sign(priv, requestDigest(method, path, body, ts))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// VerifyRequest authenticates an admin request and returns the identity that signed it.
func VerifyRequest(
	identity, method, path string, body []byte, timestamp, signature string, now time.Time, maxSkew time.Duration,
) (state.Identity, error) {
	pub, err := pkg.ParseIdentity(identity)
	if err != nil {
		return "", types.NewUnauthorizedError(fmt.Sprintf("invalid caller identity: %v", err))
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return "", types.NewUnauthorizedError("invalid request timestamp")
	}
	skew := now.Sub(time.Unix(ts, 0))
	if skew < -maxSkew || skew > maxSkew {
		return "", types.NewUnauthorizedError("request timestamp outside the allowed clock skew")
	}

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return "", types.NewUnauthorizedError("signature is not hex")
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return "", types.NewUnauthorizedError(fmt.Sprintf("invalid signature: %v", err))
	}
	if !sig.Verify(requestDigest(method, path, body, ts), pub) {
		return "", types.NewUnauthorizedError("signature does not match the request")
	}

	return state.Identity(identity), nil
}
