package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mesarpg/mesa/internal/domain"
	"github.com/mesarpg/mesa/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActionStore struct {
	db     *mongo.Database
	tables domain.TableRepository
	users  domain.UserDirectory
}

func NewActionStore(database *mongo.Database, tables domain.TableRepository, users domain.UserDirectory) *ActionStore {
	return &ActionStore{
		db:     database,
		tables: tables,
		users:  users,
	}
}

func (s *ActionStore) Append(ctx context.Context, tableID, authorID, actionType string, details map[string]any) (*domain.Action, error) {
	if strings.TrimSpace(actionType) == "" || len(details) == 0 {
		return nil, domain.ErrInvalidInput
	}

	if _, err := s.tables.GetByID(ctx, tableID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	seq, err := s.nextSequence(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	action := domain.Action{
		ID:         uuid.NewString(),
		TableID:    tableID,
		AuthorID:   authorID,
		ActionType: actionType,
		Details:    details,
		Timestamp:  time.Now().UTC(),
		Sequence:   seq,
	}

	collection := s.db.Collection(db.ActionsCollection)
	if _, err := collection.InsertOne(ctx, action); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return &action, nil
}

func (s *ActionStore) History(ctx context.Context, tableID string) ([]domain.Action, error) {
	if tableID == "" {
		return nil, domain.ErrInvalidInput
	}

	collection := s.db.Collection(db.ActionsCollection)

	filter := bson.M{"table_id": tableID}
	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "sequence", Value: 1},
	})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var actions []domain.Action
	if err := cursor.All(ctx, &actions); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return actions, nil
}

// nextSequence atomically increments the per-table counter document. The
// counter is the only cross-connection contention point and it is scoped
// to one table.
func (s *ActionStore) nextSequence(ctx context.Context, tableID string) (int64, error) {
	collection := s.db.Collection(db.ActionCountersCollection)

	filter := bson.M{"_id": tableID}
	update := bson.M{"$inc": bson.M{"seq": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&counter); err != nil {
		return 0, err
	}

	return counter.Seq, nil
}

func (s *ActionStore) EnsureIndexes(ctx context.Context) error {
	collection := s.db.Collection(db.ActionsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "table_id", Value: 1},
				{Key: "timestamp", Value: 1},
				{Key: "sequence", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "table_id", Value: 1},
				{Key: "sequence", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
