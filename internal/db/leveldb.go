package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelStore keeps the state document in an embedded leveldb directory.
type LevelStore struct {
	db *leveldb.DB
}

func NewLevelStore(path string) (*LevelStore, error) {
	ldb, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	return &LevelStore{db: ldb}, nil
}

func stateKey() []byte {
	return []byte(model.StateCollection + ":" + model.StateDocumentID)
}

func (s *LevelStore) Ping(_ context.Context) error {
	_, err := s.db.GetProperty("leveldb.stats")
	return err
}

func (s *LevelStore) GetState(_ context.Context) (*model.StateDocument, error) {
	raw, err := s.db.Get(stateKey(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, &NotFoundError{
				Key:     model.StateDocumentID,
				Message: "state not found",
			}
		}
		return nil, err
	}

	var doc model.StateDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode state document: %w", err)
	}

	return &doc, nil
}

func (s *LevelStore) SaveState(_ context.Context, doc *model.StateDocument) error {
	doc.ID = model.StateDocumentID
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode state document: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(stateKey(), raw)

	return s.db.Write(batch, &opt.WriteOptions{Sync: true})
}

func (s *LevelStore) Close(_ context.Context) error {
	return s.db.Close()
}
