package state

import (
	"slices"

	"github.com/babylonlabs-io/metrics-publisher/internal/series"
)

// DefaultSourceURL is the indexer queried until the owner points the service elsewhere.
const DefaultSourceURL = "https://squid.subsquid.io/reef-explorer/graphql"

// Identity is a base58-encoded x-only public key identifying a caller.
type Identity string

func (i Identity) String() string {
	return string(i)
}

// State is the single persisted record of the service (schema V6).
type State struct {
	Owner             Identity                      `json:"owner"`
	SourceURL         string                        `json:"sourceUrl"`
	Payload           string                        `json:"payload"`
	ExtrinsicsPayload string                        `json:"extrinsicsPayload"`
	InflowPayload     string                        `json:"inflowPayload"`
	LastUpdated       *uint64                       `json:"lastUpdated"`
	Series            []series.DailyPoint           `json:"series"`
	ExtrinsicsSeries  []series.DailyExtrinsicsPoint `json:"extrinsicsSeries"`
	PrevActiveWallets []string                      `json:"prevActiveWallets"`
	RefreshEnabled    bool                          `json:"refreshEnabled"`
}

// New returns the state a fresh deployment starts from.
func New(owner Identity, sourceURL string) *State {
	if sourceURL == "" {
		sourceURL = DefaultSourceURL
	}
	return &State{
		Owner:             owner,
		SourceURL:         sourceURL,
		Payload:           series.DefaultActivePayload(),
		ExtrinsicsPayload: series.DefaultExtrinsicsPayload(),
		InflowPayload:     series.DefaultInflowPayload(),
		Series:            []series.DailyPoint{},
		ExtrinsicsSeries:  []series.DailyExtrinsicsPoint{},
		PrevActiveWallets: []string{},
		RefreshEnabled:    true,
	}
}

func (s *State) Version() SchemaVersion {
	return CurrentSchema
}

func (s *State) Migrate() *State {
	return s.Clone().normalize()
}

// Clone returns a deep copy so callers can prepare a mutation off the shared record.
func (s *State) Clone() *State {
	clone := *s
	if s.LastUpdated != nil {
		ts := *s.LastUpdated
		clone.LastUpdated = &ts
	}
	clone.Series = slices.Clone(s.Series)
	clone.ExtrinsicsSeries = slices.Clone(s.ExtrinsicsSeries)
	clone.PrevActiveWallets = slices.Clone(s.PrevActiveWallets)
	return &clone
}

// normalize replaces nil collections so encoded blobs never carry nulls for lists.
func (s *State) normalize() *State {
	if s.Series == nil {
		s.Series = []series.DailyPoint{}
	}
	if s.ExtrinsicsSeries == nil {
		s.ExtrinsicsSeries = []series.DailyExtrinsicsPoint{}
	}
	if s.PrevActiveWallets == nil {
		s.PrevActiveWallets = []string{}
	}
	return s
}

// Touch records a successful mutation at the given unix-nanosecond time.
func (s *State) Touch(nanos uint64) {
	s.LastUpdated = &nanos
}
