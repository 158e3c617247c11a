package snapshot

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps snapshots in a MongoDB collection, one document per
// form id. Suited to kiosk deployments where sessions must survive the
// host process.
type MongoStore struct {
	collection *mongo.Collection
}

type snapshotDoc struct {
	FormID string `bson:"_id"`
	Data   []byte `bson:"data"`
}

// NewMongoStore creates a store over the "snapshots" collection of the
// given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("snapshots")}
}

func (s *MongoStore) Put(ctx context.Context, formID string, data []byte) error {
	doc := snapshotDoc{FormID: formID, Data: data}
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": formID}, doc, opts)
	return err
}

func (s *MongoStore) Get(ctx context.Context, formID string) ([]byte, error) {
	var doc snapshotDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": formID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (s *MongoStore) Delete(ctx context.Context, formID string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": formID})
	return err
}
