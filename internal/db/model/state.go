package model

import "time"

const (
	StateCollection = "publisher_state"
	// StateDocumentID is the key of the only record the service persists.
	StateDocumentID = "metrics_state"
)

// StateDocument wraps the encoded state blob together with the schema version
// it was written with.
type StateDocument struct {
	ID            string    `bson:"_id" json:"id"`
	SchemaVersion int       `bson:"schema_version" json:"schemaVersion"`
	Blob          []byte    `bson:"blob" json:"blob"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}
