// Package mongo provides a MongoDB-backed operation store for deployments
// where operation state must survive restarts and be visible across
// instances.
//
// Every write is a whole-document replacement, matching the registry's
// whole-row update contract: readers issuing concurrent finds never observe
// a document with mixed status/progress/message generations.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/packhub/packhub/pkg/errors"
	"github.com/packhub/packhub/pkg/ops"
)

// collectionName is where operation documents live.
const collectionName = "operations"

// Store persists operations in a MongoDB collection.
type Store struct {
	coll *mongo.Collection
}

// Config configures the MongoDB connection.
type Config struct {
	URI      string // e.g. "mongodb://localhost:27017"
	Database string // e.g. "packhub"
}

// NewStore connects to MongoDB, verifies the connection, and ensures the
// indexes the list query needs.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(collectionName)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "operation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}

	return &Store{coll: coll}, nil
}

// NewStoreWithCollection wraps an existing collection. Used by tests.
func NewStoreWithCollection(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// Insert persists a new operation document.
func (s *Store) Insert(ctx context.Context, op *ops.Operation) error {
	if _, err := s.coll.InsertOne(ctx, op); err != nil {
		return fmt.Errorf("insert operation %s: %w", op.ID, err)
	}
	return nil
}

// Update replaces the whole document with the same operation_id.
func (s *Store) Update(ctx context.Context, op *ops.Operation) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"operation_id": op.ID}, op)
	if err != nil {
		return fmt.Errorf("update operation %s: %w", op.ID, err)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "operation %s not found", op.ID)
	}
	return nil
}

// Get returns the operation with the given id, or nil when unknown.
func (s *Store) Get(ctx context.Context, id string) (*ops.Operation, error) {
	var op ops.Operation
	err := s.coll.FindOne(ctx, bson.M{"operation_id": id}).Decode(&op)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get operation %s: %w", id, err)
	}
	return &op, nil
}

// List returns operations most-recently-created first.
func (s *Store) List(ctx context.Context, f ops.ListFilter) ([]*ops.Operation, error) {
	filter := bson.M{}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(f.Limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer cursor.Close(ctx)

	out := []*ops.Operation{}
	for cursor.Next(ctx) {
		var op ops.Operation
		if err := cursor.Decode(&op); err != nil {
			return nil, fmt.Errorf("decode operation: %w", err)
		}
		out = append(out, &op)
	}
	return out, cursor.Err()
}

// Ensure Store implements ops.Store.
var _ ops.Store = (*Store)(nil)
