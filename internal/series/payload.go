package series

import (
	"encoding/json"
)

type activeWalletsPayload struct {
	Days   int          `json:"days"`
	Series []DailyPoint `json:"series"`
}

type extrinsicsPayload struct {
	Days   int                    `json:"days"`
	Series []DailyExtrinsicsPoint `json:"series"`
}

type inflowPayload struct {
	AsOf    *string `json:"asOf"`
	MinRaw  string  `json:"minRaw"`
	Entries []any   `json:"entries"`
}

// BuildActivePayload renders the active-wallets asset for the given series.
func BuildActivePayload(series []DailyPoint) string {
	if series == nil {
		series = []DailyPoint{}
	}
	return marshal(activeWalletsPayload{Days: WindowDays, Series: series})
}

// BuildExtrinsicsPayload renders the extrinsics asset for the given series.
func BuildExtrinsicsPayload(series []DailyExtrinsicsPoint) string {
	if series == nil {
		series = []DailyExtrinsicsPoint{}
	}
	return marshal(extrinsicsPayload{Days: WindowDays, Series: series})
}

func DefaultActivePayload() string {
	return BuildActivePayload(nil)
}

func DefaultExtrinsicsPayload() string {
	return BuildExtrinsicsPayload(nil)
}

func DefaultInflowPayload() string {
	return marshal(inflowPayload{MinRaw: "0", Entries: []any{}})
}

// marshal is only used with the plain structs above, which always encode.
func marshal(v any) string {
	bz, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(bz)
}
