// internal/repository/mongo/progress_repo.go
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

const progressCollectionName = "user_progress"

// progressDocument is the stored shape of one (user, workout) overlay.
type progressDocument struct {
	ID                     string `bson:"_id"`
	UserID                 string `bson:"userId"`
	WorkoutID              string `bson:"workoutId"`
	domain.WorkoutProgress `bson:",inline"`
	UpdatedAt              time.Time `bson:"updatedAt"`
}

func progressKey(userID, workoutID string) string {
	return userID + ":" + workoutID
}

// mongoProgressRepository implements repository.ProgressRepository
type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new progress repository.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// ListByUser returns every overlay of the user keyed by workout ID.
func (r *mongoProgressRepository) ListByUser(ctx context.Context, userID string) (map[string]domain.WorkoutProgress, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []progressDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make(map[string]domain.WorkoutProgress, len(docs))
	for _, d := range docs {
		out[d.WorkoutID] = d.WorkoutProgress
	}
	return out, nil
}

func (r *mongoProgressRepository) Get(ctx context.Context, userID, workoutID string) (*domain.WorkoutProgress, error) {
	var doc progressDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": progressKey(userID, workoutID)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.WorkoutProgress, nil
}

// Upsert applies patch with $set/$unset; fields the patch does not carry get
// their defaults only when the record is created.
func (r *mongoProgressRepository) Upsert(ctx context.Context, userID, workoutID string, patch domain.ProgressPatch) (*domain.WorkoutProgress, error) {
	set, unset := progressUpdate(patch)
	set["updatedAt"] = time.Now().UTC()

	onInsert := bson.M{"userId": userID, "workoutId": workoutID}
	for field, def := range map[string]bool{"completed": false, "skipped": false, "hasInjury": false} {
		if _, ok := set[field]; !ok {
			onInsert[field] = def
		}
	}

	update := bson.M{"$set": set, "$setOnInsert": onInsert}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc progressDocument
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": progressKey(userID, workoutID)}, update, opts).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc.WorkoutProgress, nil
}

func progressUpdate(patch domain.ProgressPatch) (set bson.M, unset bson.M) {
	set, unset = bson.M{}, bson.M{}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}
	if patch.Skipped != nil {
		set["skipped"] = *patch.Skipped
	}
	if patch.HasInjury != nil {
		set["hasInjury"] = *patch.HasInjury
	}
	if patch.ActualDistanceKm != nil {
		set["actualDistanceKm"] = *patch.ActualDistanceKm
	}
	for field, v := range map[string]*string{
		"duration":   patch.Duration,
		"feelings":   patch.Feelings,
		"injuryNote": patch.InjuryNote,
	} {
		switch {
		case v == nil:
		case *v == "":
			unset[field] = ""
		default:
			set[field] = *v
		}
	}
	return set, unset
}

func (r *mongoProgressRepository) Delete(ctx context.Context, userID, workoutID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": progressKey(userID, workoutID)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureProgressIndexes creates necessary indexes. Call during startup.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
