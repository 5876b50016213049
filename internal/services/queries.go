package services

import (
	"github.com/babylonlabs-io/metrics-publisher/internal/state"
)

type Status struct {
	SourceURL      string  `json:"sourceUrl"`
	LastUpdated    *uint64 `json:"lastUpdated"`
	PayloadBytes   uint64  `json:"payloadBytes"`
	RefreshEnabled bool    `json:"refreshEnabled"`
}

func (s *Service) ActiveWalletsDaily() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Payload
}

func (s *Service) ExtrinsicsDaily() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.ExtrinsicsPayload
}

func (s *Service) NewWalletsInflow() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.InflowPayload
}

func (s *Service) Owner() state.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Owner
}

// Status reports PayloadBytes as the size of the active-wallets payload.
func (s *Service) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastUpdated *uint64
	if s.state.LastUpdated != nil {
		ts := *s.state.LastUpdated
		lastUpdated = &ts
	}
	return &Status{
		SourceURL:      s.state.SourceURL,
		LastUpdated:    lastUpdated,
		PayloadBytes:   uint64(len(s.state.Payload)),
		RefreshEnabled: s.state.RefreshEnabled,
	}
}

// Asset returns the payload of a certified path and its certificate header, both
// read under the same lock. It reports false for paths outside the allow-list.
func (s *Service) Asset(path string) (*Asset, bool) {
	if !IsCertifiedPath(path) {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	asset := &Asset{Payload: payloadFor(s.state, path)}
	if header, ok := s.publisher.CertificateHeader(path); ok {
		asset.CertificateHeader = header
	}
	return asset, true
}
