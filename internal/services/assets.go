package services

import (
	"slices"

	"github.com/babylonlabs-io/metrics-publisher/internal/certification"
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
)

const (
	RootPath          = "/"
	ActiveWalletsPath = "/active-wallets-daily.json"
	ExtrinsicsPath    = "/extrinsics-daily.json"
	InflowPath        = "/new-wallets-inflow.json"
)

// CertifiedPaths is the fixed allow-list of served assets.
var CertifiedPaths = []string{RootPath, ActiveWalletsPath, ExtrinsicsPath, InflowPath}

// Paths republished by each kind of mutation. The root mirrors the active-wallets
// payload, so both are always republished together.
var (
	seriesPaths = []string{RootPath, ActiveWalletsPath, ExtrinsicsPath}
	inflowPaths = []string{InflowPath}
)

func IsCertifiedPath(path string) bool {
	return slices.Contains(CertifiedPaths, path)
}

// Asset is a served payload with the certificate header proving it.
type Asset struct {
	Payload string
	// CertificateHeader is empty until the authority issued a certificate.
	CertificateHeader string
}

func payloadFor(st *state.State, path string) string {
	switch path {
	case ExtrinsicsPath:
		return st.ExtrinsicsPayload
	case InflowPath:
		return st.InflowPayload
	default:
		return st.Payload
	}
}

func assetHashes(st *state.State, paths ...string) map[string][32]byte {
	hashes := make(map[string][32]byte, len(paths))
	for _, path := range paths {
		hashes[path] = certification.SHA256(payloadFor(st, path))
	}
	return hashes
}
