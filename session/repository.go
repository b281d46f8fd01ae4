package session

import (
	"context"
	"errors"
	"fmt"

	"auth-graphql/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "sessions"

var ErrNotFound = errors.New("session not found")

// Repository persists session records.
type Repository interface {
	Find(ctx context.Context, id string) (*models.Session, error)
	Upsert(ctx context.Context, record *models.Session) error
	Delete(ctx context.Context, id string) error
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return NewMongoRepositoryWithCollection(db.Collection(CollectionName))
}

func NewMongoRepositoryWithCollection(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the TTL index that lets the server drop expired records.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
	})
	if err != nil {
		return fmt.Errorf("failed to create session ttl index: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	var record models.Session
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &record, nil
}

// Upsert writes the record, keeping created_at from the first insert.
func (r *MongoRepository) Upsert(ctx context.Context, record *models.Session) error {
	update := bson.M{
		"$set": bson.M{
			"user_id":    record.UserID,
			"values":     record.Values,
			"updated_at": record.UpdatedAt,
			"expires_at": record.ExpiresAt,
		},
		"$setOnInsert": bson.M{
			"created_at": record.CreatedAt,
		},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": record.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
