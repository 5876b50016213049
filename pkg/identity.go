package pkg

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// EncodeIdentity returns the base58 form of a x-only public key.
func EncodeIdentity(pub *btcec.PublicKey) string {
	return base58.Encode(schnorr.SerializePubKey(pub))
}

// ParseIdentity decodes a base58 identity back into its public key.
func ParseIdentity(identity string) (*btcec.PublicKey, error) {
	bz := base58.Decode(identity)
	if len(bz) != schnorr.PubKeyBytesLen {
		return nil, fmt.Errorf("identity must decode to %d bytes, got %d", schnorr.PubKeyBytesLen, len(bz))
	}

	return schnorr.ParsePubKey(bz)
}

func ValidateIdentity(identity string) error {
	_, err := ParseIdentity(identity)
	return err
}
