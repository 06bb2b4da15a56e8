package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"waisdom/internal/config"
	"waisdom/internal/models"
)

// MongoBackend persists records in a MongoDB collection. Records replace
// wholesale on write; the document id is the record id.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoBackend connects to MongoDB and pings it before returning.
func NewMongoBackend(ctx context.Context, cfg config.MongoConfig) (*MongoBackend, error) {
	clientOptions := options.Client().ApplyURI(cfg.Address)
	if cfg.Username != "" && cfg.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: cfg.Username,
			Password: cfg.Password,
		})
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoBackend{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Close disconnects the underlying client.
func (b *MongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

// Write upserts the record by id.
func (b *MongoBackend) Write(ctx context.Context, record *models.ContentRecord) error {
	opts := options.Replace().SetUpsert(true)
	_, err := b.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts)
	if err != nil {
		return fmt.Errorf("failed to write record '%s': %w", record.ID, err)
	}
	return nil
}

// Read loads one record. An unknown id returns (nil, nil).
func (b *MongoBackend) Read(ctx context.Context, id string) (*models.ContentRecord, error) {
	var record models.ContentRecord
	err := b.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record '%s': %w", id, err)
	}
	return &record, nil
}

// ReadAll loads every record in the collection.
func (b *MongoBackend) ReadAll(ctx context.Context) ([]*models.ContentRecord, error) {
	cursor, err := b.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.ContentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// Remove deletes a record and reports whether it existed.
func (b *MongoBackend) Remove(ctx context.Context, id string) (bool, error) {
	res, err := b.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to remove record '%s': %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

var _ Backend = (*MongoBackend)(nil)
