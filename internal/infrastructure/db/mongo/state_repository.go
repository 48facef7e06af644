package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskboard/taskboard/internal/core/domain"
)

const collectionStates = "states"

// StateRepository persists the global workflow state list. The set is seeded
// once and read-only afterwards.
type StateRepository struct {
	col *mongo.Collection
}

func NewStateRepository(db *mongo.Database) *StateRepository {
	return &StateRepository{col: db.Collection(collectionStates)}
}

type mongoState struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  string             `bson:"name"`
	Order int                `bson:"order"`
}

func (ms mongoState) toDomain() *domain.State {
	return &domain.State{
		ID:    ms.ID.Hex(),
		Name:  ms.Name,
		Order: ms.Order,
	}
}

// List returns all states sorted by their order index.
func (r *StateRepository) List(ctx context.Context) ([]*domain.State, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	defer cur.Close(ctx)

	var states []*domain.State
	for cur.Next(ctx) {
		var ms mongoState
		if err := cur.Decode(&ms); err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
		states = append(states, ms.toDomain())
	}
	return states, cur.Err()
}

func (r *StateRepository) FindByID(ctx context.Context, id string) (*domain.State, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStateNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var ms mongoState
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("find state: %w", err)
	}
	return ms.toDomain(), nil
}

// Seed inserts the given states only when the collection is empty.
func (r *StateRepository) Seed(ctx context.Context, states []domain.State) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("count states: %w", err)
	}
	if n > 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(states))
	for _, s := range states {
		docs = append(docs, mongoState{Name: s.Name, Order: s.Order})
	}

	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		// Another instance seeded first; the unique order index makes the
		// outcome identical either way.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("seed states: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique order index.
func (r *StateRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "order", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
