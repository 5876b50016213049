package db

import (
	"context"
	"errors"

	"github.com/babylonlabs-io/metrics-publisher/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) GetState(ctx context.Context) (*model.StateDocument, error) {
	filter := bson.M{"_id": model.StateDocumentID}
	res := db.collection(model.StateCollection).FindOne(ctx, filter)

	var doc model.StateDocument
	err := res.Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.StateDocumentID,
				Message: "state not found",
			}
		}
		return nil, err
	}

	return &doc, nil
}

func (db *Database) SaveState(ctx context.Context, doc *model.StateDocument) error {
	collection := db.collection(model.StateCollection)

	doc.ID = model.StateDocumentID
	filter := bson.M{"_id": model.StateDocumentID}
	update := bson.M{"$set": doc}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
