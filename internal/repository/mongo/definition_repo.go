// internal/repository/mongo/definition_repo.go
package mongo

import (
	"alcyxob/marathon-tracker/internal/domain"
	"alcyxob/marathon-tracker/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const definitionCollectionName = "workouts"

// mongoDefinitionRepository implements repository.DefinitionRepository
type mongoDefinitionRepository struct {
	collection *mongo.Collection
}

// NewMongoDefinitionRepository creates a new workout definition repository.
func NewMongoDefinitionRepository(db *mongo.Database) repository.DefinitionRepository {
	return &mongoDefinitionRepository{
		collection: db.Collection(definitionCollectionName),
	}
}

// ListByPlan retrieves all definitions of a plan sorted by order.
func (r *mongoDefinitionRepository) ListByPlan(ctx context.Context, planID string) ([]domain.WorkoutDefinition, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": planID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	defs := make([]domain.WorkoutDefinition, 0)
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *mongoDefinitionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutDefinition, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoDefinitionRepository) GetByOrder(ctx context.Context, planID string, order int) (*domain.WorkoutDefinition, error) {
	return r.findOne(ctx, bson.M{"planId": planID, "order": order})
}

func (r *mongoDefinitionRepository) findOne(ctx context.Context, filter bson.M) (*domain.WorkoutDefinition, error) {
	var def domain.WorkoutDefinition
	err := r.collection.FindOne(ctx, filter).Decode(&def)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &def, nil
}

func (r *mongoDefinitionRepository) CountByPlan(ctx context.Context, planID string) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"planId": planID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Upsert replaces the given definitions, inserting those that do not exist yet.
func (r *mongoDefinitionRepository) Upsert(ctx context.Context, defs ...domain.WorkoutDefinition) error {
	if len(defs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(defs))
	for _, d := range defs {
		d.UpdatedAt = now
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// EnsureDefinitionIndexes creates necessary indexes. Call during startup.
func EnsureDefinitionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// One definition per position in a plan
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
