package state

import (
	"github.com/babylonlabs-io/metrics-publisher/internal/series"
)

// SchemaVersion enumerates every persisted shape ever shipped. The list is
// append-only: each version adds fields to the previous one and never removes any.
type SchemaVersion int

const (
	SchemaV1 SchemaVersion = iota + 1
	SchemaV2
	SchemaV3
	SchemaV4
	SchemaV5
	SchemaV6

	CurrentSchema = SchemaV6
)

// Snapshot is one historical shape of the persisted state. Migrate upgrades it to
// the current State filling every field the shape lacks with its default.
type Snapshot interface {
	Version() SchemaVersion
	Migrate() *State
}

// StateV1 only cached the active-wallets payload.
type StateV1 struct {
	Owner       Identity `json:"owner"`
	SourceURL   string   `json:"sourceUrl"`
	Payload     string   `json:"payload"`
	LastUpdated *uint64  `json:"lastUpdated"`
}

func (v *StateV1) Version() SchemaVersion { return SchemaV1 }

func (v *StateV1) Migrate() *State {
	s := withDefaults(v.Owner, v.SourceURL, v.Payload, v.LastUpdated)
	return s.normalize()
}

// StateV2 added the active-wallets series.
type StateV2 struct {
	Owner       Identity            `json:"owner"`
	SourceURL   string              `json:"sourceUrl"`
	Payload     string              `json:"payload"`
	LastUpdated *uint64             `json:"lastUpdated"`
	Series      []series.DailyPoint `json:"series"`
}

func (v *StateV2) Version() SchemaVersion { return SchemaV2 }

func (v *StateV2) Migrate() *State {
	s := withDefaults(v.Owner, v.SourceURL, v.Payload, v.LastUpdated)
	s.Series = v.Series
	return s.normalize()
}

// StateV3 added the previous-day actor snapshot.
type StateV3 struct {
	Owner             Identity            `json:"owner"`
	SourceURL         string              `json:"sourceUrl"`
	Payload           string              `json:"payload"`
	LastUpdated       *uint64             `json:"lastUpdated"`
	Series            []series.DailyPoint `json:"series"`
	PrevActiveWallets []string            `json:"prevActiveWallets"`
}

func (v *StateV3) Version() SchemaVersion { return SchemaV3 }

func (v *StateV3) Migrate() *State {
	s := withDefaults(v.Owner, v.SourceURL, v.Payload, v.LastUpdated)
	s.Series = v.Series
	s.PrevActiveWallets = v.PrevActiveWallets
	return s.normalize()
}

// StateV4 added the extrinsics series and its payload.
type StateV4 struct {
	Owner             Identity                      `json:"owner"`
	SourceURL         string                        `json:"sourceUrl"`
	Payload           string                        `json:"payload"`
	ExtrinsicsPayload string                        `json:"extrinsicsPayload"`
	LastUpdated       *uint64                       `json:"lastUpdated"`
	Series            []series.DailyPoint           `json:"series"`
	ExtrinsicsSeries  []series.DailyExtrinsicsPoint `json:"extrinsicsSeries"`
	PrevActiveWallets []string                      `json:"prevActiveWallets"`
}

func (v *StateV4) Version() SchemaVersion { return SchemaV4 }

func (v *StateV4) Migrate() *State {
	s := withDefaults(v.Owner, v.SourceURL, v.Payload, v.LastUpdated)
	s.ExtrinsicsPayload = v.ExtrinsicsPayload
	s.Series = v.Series
	s.ExtrinsicsSeries = v.ExtrinsicsSeries
	s.PrevActiveWallets = v.PrevActiveWallets
	return s.normalize()
}

// StateV5 added the automatic refresh switch.
type StateV5 struct {
	Owner             Identity                      `json:"owner"`
	SourceURL         string                        `json:"sourceUrl"`
	Payload           string                        `json:"payload"`
	ExtrinsicsPayload string                        `json:"extrinsicsPayload"`
	LastUpdated       *uint64                       `json:"lastUpdated"`
	Series            []series.DailyPoint           `json:"series"`
	ExtrinsicsSeries  []series.DailyExtrinsicsPoint `json:"extrinsicsSeries"`
	PrevActiveWallets []string                      `json:"prevActiveWallets"`
	RefreshEnabled    bool                          `json:"refreshEnabled"`
}

func (v *StateV5) Version() SchemaVersion { return SchemaV5 }

func (v *StateV5) Migrate() *State {
	s := withDefaults(v.Owner, v.SourceURL, v.Payload, v.LastUpdated)
	s.ExtrinsicsPayload = v.ExtrinsicsPayload
	s.Series = v.Series
	s.ExtrinsicsSeries = v.ExtrinsicsSeries
	s.PrevActiveWallets = v.PrevActiveWallets
	s.RefreshEnabled = v.RefreshEnabled
	return s.normalize()
}

// withDefaults carries the V1 fields and fills everything newer with defaults.
func withDefaults(owner Identity, sourceURL, payload string, lastUpdated *uint64) *State {
	return &State{
		Owner:             owner,
		SourceURL:         sourceURL,
		Payload:           payload,
		ExtrinsicsPayload: series.DefaultExtrinsicsPayload(),
		InflowPayload:     series.DefaultInflowPayload(),
		LastUpdated:       lastUpdated,
		RefreshEnabled:    true,
	}
}
