package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/babylonlabs-io/metrics-publisher/internal/state"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type restoreReport struct {
	Outcome           state.RestoreOutcome `json:"outcome"`
	SchemaVersion     state.SchemaVersion  `json:"schemaVersion"`
	Owner             state.Identity       `json:"owner"`
	SourceURL         string               `json:"sourceUrl"`
	LastUpdated       *uint64              `json:"lastUpdated"`
	RefreshEnabled    bool                 `json:"refreshEnabled"`
	ActiveDays        int                  `json:"activeDays"`
	ExtrinsicsDays    int                  `json:"extrinsicsDays"`
	PrevActiveWallets int                  `json:"prevActiveWallets"`
}

// RestoreStateCmd decodes the persisted state without starting the service or
// writing anything back.
func RestoreStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore-state",
		Short: "Decodes the persisted state and reports the schema it was written with",
		Args:  cobra.ExactArgs(0),
		RunE:  restoreState,
	}

	return cmd
}

func restoreState(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := newStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("error while closing state store")
		}
	}()

	result, err := state.NewStore(backend).Load(ctx, state.Identity(cfg.Owner.Identity), cfg.Source.URL)
	if err != nil {
		return err
	}

	st := result.State
	report := restoreReport{
		Outcome:           result.Outcome,
		SchemaVersion:     result.Version,
		Owner:             st.Owner,
		SourceURL:         st.SourceURL,
		LastUpdated:       st.LastUpdated,
		RefreshEnabled:    st.RefreshEnabled,
		ActiveDays:        len(st.Series),
		ExtrinsicsDays:    len(st.ExtrinsicsSeries),
		PrevActiveWallets: len(st.PrevActiveWallets),
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return nil
}
