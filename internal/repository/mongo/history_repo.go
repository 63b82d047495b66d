package mongo

import (
	"context"
	"errors"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const historyCollectionName = "workout_history"

// mongoHistoryRepository implements repository.HistoryRepository.
// The collection is append-only; this type deliberately exposes no
// update or delete operation.
type mongoHistoryRepository struct {
	collection *mongo.Collection
}

// NewMongoHistoryRepository creates a new History repository backed by MongoDB.
func NewMongoHistoryRepository(db *mongo.Database) repository.HistoryRepository {
	return &mongoHistoryRepository{
		collection: db.Collection(historyCollectionName),
	}
}

// Create appends a new history entry.
func (r *mongoHistoryRepository) Create(ctx context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error) {
	if entry.StudentID == primitive.NilObjectID || entry.WorkoutID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("history entry requires studentId and workoutId")
	}

	entry.ID = primitive.NewObjectID()
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	if entry.CompletionDate == "" {
		entry.CompletionDate = entry.CompletedAt.Format(domain.CompletionDateLayout)
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single history entry.
func (r *mongoHistoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error) {
	var entry domain.WorkoutHistoryEntry
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List retrieves history entries, newest completion first. A nil
// studentID returns the global log.
func (r *mongoHistoryRepository) List(ctx context.Context, studentID *primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error) {
	filter := bson.M{}
	if studentID != nil {
		filter["studentId"] = *studentID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.WorkoutHistoryEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []domain.WorkoutHistoryEntry{}
	}
	return entries, nil
}

// CompletedWorkoutIDs returns the ids of workouts the student completed
// on the given calendar date.
func (r *mongoHistoryRepository) CompletedWorkoutIDs(ctx context.Context, studentID primitive.ObjectID, completionDate string) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"studentId":      studentID,
		"completionDate": completionDate,
	}

	// Only the workout ids are needed here.
	findOptions := options.Find().SetProjection(bson.M{"workoutId": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var partial []struct {
		WorkoutID primitive.ObjectID `bson:"workoutId"`
	}
	if err = cursor.All(ctx, &partial); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(partial))
	for _, p := range partial {
		ids = append(ids, p.WorkoutID)
	}
	return ids, nil
}

// EnsureHistoryIndexes creates necessary indexes for the workout_history collection.
func EnsureHistoryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Same-day filtering in the session view.
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "completionDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "completedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failures are surfaced at first query instead.
	}
}
