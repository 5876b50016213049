package certification

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/fxamacker/cbor/v2"
)

var certifiedDataTag = []byte("metrics-publisher/certified-data")

// Authority is the trust anchor that vouches for the current root hash.
//
//go:generate mockery --name=Authority --output=../../tests/mocks --outpkg=mocks --filename=mock_authority.go
type Authority interface {
	// SetCertifiedData registers data as the new certified root.
	SetCertifiedData(ctx context.Context, data [32]byte) error
	// DataCertificate returns the certificate for the last registered root.
	DataCertificate() ([]byte, bool)
}

type Certificate struct {
	Data      []byte `cbor:"data"`
	Time      uint64 `cbor:"time"`
	Signature []byte `cbor:"signature"`
	PublicKey []byte `cbor:"public_key"`
}

func certificateDigest(data []byte, ts uint64) []byte {
	var tsBytes [8]byte
	binary.BigEndian.PutUint64(tsBytes[:], ts)
	return chainhash.TaggedHash(certifiedDataTag, data, tsBytes[:])[:]
}

// SigningAuthority certifies roots with a local BIP-340 key.
type SigningAuthority struct {
	mu   sync.RWMutex
	key  *btcec.PrivateKey
	cert []byte
	now  func() time.Time
}

func NewSigningAuthority(key *btcec.PrivateKey) *SigningAuthority {
	return &SigningAuthority{key: key, now: time.Now}
}

func (a *SigningAuthority) PublicKey() *btcec.PublicKey {
	return a.key.PubKey()
}

func (a *SigningAuthority) SetCertifiedData(_ context.Context, data [32]byte) error {
	ts := uint64(a.now().UnixNano())
	sig, err := schnorr.Sign(a.key, certificateDigest(data[:], ts))
	if err != nil {
		return fmt.Errorf("failed to sign certified data: %w", err)
	}

	cert, err := cbor.Marshal(Certificate{
		Data:      data[:],
		Time:      ts,
		Signature: sig.Serialize(),
		PublicKey: schnorr.SerializePubKey(a.key.PubKey()),
	})
	if err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	a.mu.Lock()
	a.cert = cert
	a.mu.Unlock()

	return nil
}

func (a *SigningAuthority) DataCertificate() ([]byte, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.cert == nil {
		return nil, false
	}
	return a.cert, true
}

var ErrInvalidCertificate = errors.New("invalid certificate")

// VerifyCertificate checks that raw was signed by trusted and returns its content.
func VerifyCertificate(raw []byte, trusted *btcec.PublicKey) (*Certificate, error) {
	var cert Certificate
	if err := cbor.Unmarshal(raw, &cert); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	if len(cert.Data) != 32 {
		return nil, fmt.Errorf("%w: certified data must be 32 bytes", ErrInvalidCertificate)
	}

	signer, err := schnorr.ParsePubKey(cert.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	if !bytes.Equal(schnorr.SerializePubKey(signer), schnorr.SerializePubKey(trusted)) {
		return nil, fmt.Errorf("%w: signed by an untrusted key", ErrInvalidCertificate)
	}

	sig, err := schnorr.ParseSignature(cert.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	if !sig.Verify(certificateDigest(cert.Data, cert.Time), signer) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidCertificate)
	}

	return &cert, nil
}
