package services

import (
	"context"
	"errors"
	"fmt"

	"auth-graphql/auth"
	"auth-graphql/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const UsersCollection = "users"

// Users looks up user documents. It is the auth.Deserializer of the process.
type Users struct {
	coll *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return NewUsersWithCollection(db.Collection(UsersCollection))
}

func NewUsersWithCollection(coll *mongo.Collection) *Users {
	return &Users{coll: coll}
}

func (u *Users) DeserializeUser(ctx context.Context, id string) (*models.User, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, auth.ErrUserNotFound
	}

	var user models.User
	err = u.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}
