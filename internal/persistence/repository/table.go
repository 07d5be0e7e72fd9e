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

type TableRepository struct {
	db *mongo.Database
}

func NewTableRepository(database *mongo.Database) *TableRepository {
	return &TableRepository{db: database}
}

func (r *TableRepository) GetByID(ctx context.Context, id string) (*domain.Table, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := r.db.Collection(db.TablesCollection)

	var table domain.Table
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTableNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &table, nil
}

func (r *TableRepository) ListMembers(ctx context.Context, tableID string) ([]domain.TableMember, error) {
	if _, err := r.GetByID(ctx, tableID); err != nil {
		return nil, err
	}

	collection := r.db.Collection(db.TableMembersCollection)

	cursor, err := collection.Find(ctx, bson.M{"table_id": tableID})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var members []domain.TableMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return members, nil
}

// Upsert is used by seeding and the table-management collaborator; the
// core itself never writes tables.
func (r *TableRepository) Upsert(ctx context.Context, table *domain.Table) error {
	collection := r.db.Collection(db.TablesCollection)

	filter := bson.M{"_id": table.ID}
	update := bson.M{"$set": table}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	return err
}

func (r *TableRepository) AddMember(ctx context.Context, member domain.TableMember) error {
	collection := r.db.Collection(db.TableMembersCollection)

	filter := bson.M{"table_id": member.TableID, "user_id": member.UserID}
	update := bson.M{"$set": member}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	return err
}
