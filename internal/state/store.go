package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/babylonlabs-io/metrics-publisher/internal/db"
	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"github.com/rs/zerolog/log"
)

type RestoreOutcome string

const (
	// OutcomeFresh means nothing was persisted yet.
	OutcomeFresh RestoreOutcome = "fresh"
	// OutcomeRestored means a blob of a known schema was migrated to the current one.
	OutcomeRestored RestoreOutcome = "restored"
	// OutcomeReinitialized means the persisted blob matched no schema and was discarded.
	OutcomeReinitialized RestoreOutcome = "reinitialized"
)

type RestoreResult struct {
	State   *State
	Outcome RestoreOutcome
	// Version is the schema the blob was written with, zero unless restored.
	Version SchemaVersion
}

// Store persists the state blob through a db.StateStore backend.
type Store struct {
	backend db.StateStore
}

func NewStore(backend db.StateStore) *Store {
	return &Store{backend: backend}
}

// Load restores the persisted state. When nothing is stored, or the stored blob is
// unreadable, a fresh state owned by caller is returned instead.
func (s *Store) Load(ctx context.Context, caller Identity, sourceURL string) (*RestoreResult, error) {
	doc, err := s.backend.GetState(ctx)
	if err != nil {
		if db.IsNotFoundError(err) {
			return &RestoreResult{State: New(caller, sourceURL), Outcome: OutcomeFresh}, nil
		}
		return nil, fmt.Errorf("failed to read persisted state: %w", err)
	}

	restored, version, err := Decode(doc.Blob)
	if err != nil {
		if errors.Is(err, ErrUnrecognizedSchema) {
			log.Ctx(ctx).Warn().
				Err(err).
				Int("stored_schema_version", doc.SchemaVersion).
				Str("owner", caller.String()).
				Msg("persisted state is unreadable, reinitializing")
			return &RestoreResult{State: New(caller, sourceURL), Outcome: OutcomeReinitialized}, nil
		}
		return nil, err
	}

	return &RestoreResult{State: restored, Outcome: OutcomeRestored, Version: version}, nil
}

func (s *Store) Save(ctx context.Context, st *State) error {
	blob, err := Encode(st)
	if err != nil {
		return err
	}

	doc := &model.StateDocument{
		SchemaVersion: int(CurrentSchema),
		Blob:          blob,
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.backend.SaveState(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	return nil
}
