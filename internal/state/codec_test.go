package state

import (
	"encoding/json"
	"testing"

	"github.com/babylonlabs-io/metrics-publisher/internal/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_HistoricalShapes(t *testing.T) {
	const owner = "owner"
	tests := []struct {
		name    string
		blob    string
		version SchemaVersion
		check   func(t *testing.T, s *State)
	}{
		{
			name:    "v1",
			blob:    `{"owner":"owner","sourceUrl":"https://example.com/graphql","payload":"{\"days\":30,\"series\":[]}","lastUpdated":7}`,
			version: SchemaV1,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, series.DefaultExtrinsicsPayload(), s.ExtrinsicsPayload)
				assert.Equal(t, series.DefaultInflowPayload(), s.InflowPayload)
				assert.True(t, s.RefreshEnabled)
				require.NotNil(t, s.LastUpdated)
				assert.EqualValues(t, 7, *s.LastUpdated)
				assert.Empty(t, s.Series)
				assert.NotNil(t, s.Series)
			},
		},
		{
			name:    "v2",
			blob:    `{"owner":"owner","sourceUrl":"u","payload":"p","lastUpdated":null,"series":[{"ts":"2024-03-01","active":5,"new":2}]}`,
			version: SchemaV2,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, []series.DailyPoint{{TS: "2024-03-01", Active: 5, NewWallets: 2}}, s.Series)
				assert.Nil(t, s.LastUpdated)
				assert.Empty(t, s.PrevActiveWallets)
				assert.True(t, s.RefreshEnabled)
			},
		},
		{
			name:    "v3",
			blob:    `{"owner":"owner","sourceUrl":"u","payload":"p","lastUpdated":null,"series":[],"prevActiveWallets":["a","b"]}`,
			version: SchemaV3,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, []string{"a", "b"}, s.PrevActiveWallets)
				assert.Equal(t, series.DefaultExtrinsicsPayload(), s.ExtrinsicsPayload)
			},
		},
		{
			name:    "v4",
			blob:    `{"owner":"owner","sourceUrl":"u","payload":"p","extrinsicsPayload":"e","lastUpdated":null,"series":[],"extrinsicsSeries":[{"ts":"2024-03-01","extrinsics":9}],"prevActiveWallets":[]}`,
			version: SchemaV4,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "e", s.ExtrinsicsPayload)
				assert.Equal(t, []series.DailyExtrinsicsPoint{{TS: "2024-03-01", Extrinsics: 9}}, s.ExtrinsicsSeries)
				assert.Equal(t, series.DefaultInflowPayload(), s.InflowPayload)
				assert.True(t, s.RefreshEnabled)
			},
		},
		{
			name:    "v5",
			blob:    `{"owner":"owner","sourceUrl":"u","payload":"p","extrinsicsPayload":"e","lastUpdated":null,"series":[],"extrinsicsSeries":[],"prevActiveWallets":[],"refreshEnabled":false}`,
			version: SchemaV5,
			check: func(t *testing.T, s *State) {
				assert.False(t, s.RefreshEnabled)
				assert.Equal(t, series.DefaultInflowPayload(), s.InflowPayload)
			},
		},
		{
			name:    "current",
			blob:    `{"owner":"owner","sourceUrl":"u","payload":"p","extrinsicsPayload":"e","inflowPayload":"i","lastUpdated":3,"series":[],"extrinsicsSeries":[],"prevActiveWallets":[],"refreshEnabled":false}`,
			version: SchemaV6,
			check: func(t *testing.T, s *State) {
				assert.Equal(t, "i", s.InflowPayload)
				assert.False(t, s.RefreshEnabled)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, version, err := Decode([]byte(tt.blob))
			require.NoError(t, err)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, Identity(owner), s.Owner)
			tt.check(t, s)
		})
	}
}

func TestDecode_Unrecognized(t *testing.T) {
	blobs := []string{
		``,
		`not json`,
		`[]`,
		`{}`,
		// v1 plus an unknown key
		`{"owner":"o","sourceUrl":"u","payload":"p","lastUpdated":null,"extra":1}`,
		// v1 with a missing key
		`{"owner":"o","sourceUrl":"u","payload":"p"}`,
		// right keys, wrong types
		`{"owner":"o","sourceUrl":"u","payload":"p","lastUpdated":"yesterday"}`,
	}

	for _, blob := range blobs {
		_, _, err := Decode([]byte(blob))
		assert.ErrorIs(t, err, ErrUnrecognizedSchema, blob)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	s := New("owner", "")
	s.Series = series.Upsert(s.Series, series.DailyPoint{TS: "2024-03-01", Active: 5, NewWallets: 2})
	s.Payload = series.BuildActivePayload(s.Series)
	s.PrevActiveWallets = []string{"a"}
	s.Touch(11)

	blob, err := Encode(s)
	require.NoError(t, err)

	decoded, version, err := Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchema, version)
	assert.Equal(t, s, decoded)
}

func TestEncode_EmptyCollections(t *testing.T) {
	s := &State{Owner: "owner"}

	blob, err := Encode(s)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob, &raw))
	assert.JSONEq(t, `[]`, string(raw["series"]))
	assert.JSONEq(t, `[]`, string(raw["extrinsicsSeries"]))
	assert.JSONEq(t, `[]`, string(raw["prevActiveWallets"]))
	assert.Nil(t, s.Series, "encoding must not touch the input")
}

func TestClone(t *testing.T) {
	s := New("owner", "")
	s.Touch(1)
	s.PrevActiveWallets = []string{"a"}

	clone := s.Clone()
	clone.PrevActiveWallets[0] = "b"
	*clone.LastUpdated = 2

	assert.Equal(t, "a", s.PrevActiveWallets[0])
	assert.EqualValues(t, 1, *s.LastUpdated)
}
