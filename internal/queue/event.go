package queue

import (
	"context"
	"encoding/hex"
)

type EventType string

const AssetsPublishedEventType EventType = "ASSETS_PUBLISHED"

type AssetsPublishedEvent struct {
	EventType    EventType `json:"event_type"`
	RootHash     string    `json:"root_hash"`
	ChangedPaths []string  `json:"changed_paths"`
	LastUpdated  *uint64   `json:"last_updated"`
}

func NewAssetsPublishedEvent(root [32]byte, changedPaths []string, lastUpdated *uint64) *AssetsPublishedEvent {
	if changedPaths == nil {
		changedPaths = []string{}
	}
	return &AssetsPublishedEvent{
		EventType:    AssetsPublishedEventType,
		RootHash:     hex.EncodeToString(root[:]),
		ChangedPaths: changedPaths,
		LastUpdated:  lastUpdated,
	}
}

//go:generate mockery --name=Notifier --output=../../tests/mocks --outpkg=mocks --filename=mock_notifier.go
type Notifier interface {
	NotifyAssetsPublished(ctx context.Context, ev *AssetsPublishedEvent) error
}
