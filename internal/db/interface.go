package db

import (
	"context"

	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
)

//go:generate mockery --name=StateStore --output=../../tests/mocks --outpkg=mocks --filename=mock_state_store.go
type StateStore interface {
	Ping(ctx context.Context) error
	// GetState returns the persisted state document or NotFoundError when nothing
	// was saved yet.
	GetState(ctx context.Context) (*model.StateDocument, error)
	// SaveState replaces the persisted state document.
	SaveState(ctx context.Context, doc *model.StateDocument) error
	Close(ctx context.Context) error
}
