package certification

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/babylonlabs-io/metrics-publisher/internal/observability/metrics"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLabel = "http_assets"
	HeaderName   = "IC-Certificate"
)

func SHA256(payload string) [32]byte {
	return sha256.Sum256([]byte(payload))
}

// LabeledHash is the digest registered with the authority for a map root.
func LabeledHash(label string, root [32]byte) [32]byte {
	return labeledDigest([]byte(label), root)
}

// Publisher keeps the certified asset map and the matching registration with the
// authority in sync.
type Publisher struct {
	mu        sync.RWMutex
	label     string
	assets    *Map
	authority Authority
}

func NewPublisher(label string, authority Authority) *Publisher {
	if label == "" {
		label = DefaultLabel
	}
	return &Publisher{
		label:     label,
		assets:    NewMap(),
		authority: authority,
	}
}

// Publish inserts every asset hash and registers the resulting root once. The new
// map only becomes visible after the authority accepted its root; on failure the
// previous map and certificate stay in place.
func (p *Publisher) Publish(ctx context.Context, assets map[string][32]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.assets
	for _, path := range slices.Sorted(maps.Keys(assets)) {
		next = next.Insert(path, assets[path])
	}

	root := LabeledHash(p.label, next.RootHash())
	if err := p.authority.SetCertifiedData(ctx, root); err != nil {
		metrics.RecordCertification(true)
		return fmt.Errorf("failed to register certified data: %w", err)
	}
	metrics.RecordCertification(false)

	p.assets = next
	log.Ctx(ctx).Debug().
		Hex("root_hash", root[:]).
		Int("assets", len(assets)).
		Msg("certified data registered")

	return nil
}

// RootHash is the currently registered digest.
func (p *Publisher) RootHash() [32]byte {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return LabeledHash(p.label, p.assets.RootHash())
}

// AssetHash returns the certified content hash of path.
func (p *Publisher) AssetHash(path string) ([32]byte, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.assets.Get(path)
}

// Witness returns the labeled witness proving the hash of path.
func (p *Publisher) Witness(path string) (*HashTree, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.witness(path)
}

func (p *Publisher) witness(path string) (*HashTree, error) {
	tree, err := p.assets.Witness(path)
	if err != nil {
		return nil, err
	}
	return Labeled([]byte(p.label), tree), nil
}

// CertificateHeader renders the certificate header value for path. It reports
// false when no certificate was issued yet or path is not certified.
func (p *Publisher) CertificateHeader(path string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cert, ok := p.authority.DataCertificate()
	if !ok {
		return "", false
	}
	tree, err := p.witness(path)
	if err != nil {
		return "", false
	}
	encoded, err := EncodeHashTree(tree)
	if err != nil {
		return "", false
	}

	return fmt.Sprintf(
		"certificate=:%s:, tree=:%s:",
		base64.StdEncoding.EncodeToString(cert),
		base64.StdEncoding.EncodeToString(encoded),
	), true
}
