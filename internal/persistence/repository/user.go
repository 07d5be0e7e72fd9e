package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserDirectory struct {
	db *mongo.Database
}

func NewUserDirectory(database *mongo.Database) *UserDirectory {
	return &UserDirectory{db: database}
}

func (d *UserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := d.db.Collection(db.UsersCollection)

	var user domain.User
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &user, nil
}

// Upsert is used by seeding; identity management otherwise belongs to the
// excluded auth collaborator.
func (d *UserDirectory) Upsert(ctx context.Context, user *domain.User) error {
	collection := d.db.Collection(db.UsersCollection)

	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": user}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	return err
}
