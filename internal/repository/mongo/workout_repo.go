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

const (
	workoutCollectionName         = "workouts"
	workoutExerciseCollectionName = "workout_exercises"
)

// mongoWorkoutRepository implements repository.WorkoutRepository over the
// workouts and workout_exercises collections.
type mongoWorkoutRepository struct {
	workouts    *mongo.Collection
	assignments *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		workouts:    db.Collection(workoutCollectionName),
		assignments: db.Collection(workoutExerciseCollectionName),
	}
}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	if workout.StudentID == primitive.NilObjectID || workout.Name == "" {
		return primitive.NilObjectID, errors.New("workout requires studentId and name")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error) {
	var workout domain.Workout
	filter := bson.M{"_id": id}
	err := r.workouts.FindOne(ctx, filter).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// GetByStudentID retrieves a student's workouts, oldest first.
func (r *mongoWorkoutRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID, activeOnly bool, exclude []primitive.ObjectID) ([]domain.Workout, error) {
	filter := bson.M{"studentId": studentID}
	if activeOnly {
		filter["active"] = true
	}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.workouts.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

// GetByIDs retrieves workouts whose ids are in the given set.
func (r *mongoWorkoutRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error) {
	if len(ids) == 0 {
		return []domain.Workout{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := r.workouts.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// List retrieves all workouts, newest first.
func (r *mongoWorkoutRepository) List(ctx context.Context) ([]domain.Workout, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.workouts.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.Workout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.Workout{}
	}
	return workouts, nil
}

// Update applies a partial metadata update and returns the updated workout.
func (r *mongoWorkoutRepository) Update(ctx context.Context, id primitive.ObjectID, update domain.WorkoutUpdate) (*domain.Workout, error) {
	setDoc := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		setDoc["name"] = *update.Name
	}
	if update.Description != nil {
		setDoc["description"] = *update.Description
	}
	if update.WorkoutType != nil {
		setDoc["workoutType"] = *update.WorkoutType
	}
	if update.Active != nil {
		setDoc["active"] = *update.Active
	}

	filter := bson.M{"_id": id}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var workout domain.Workout
	err := r.workouts.FindOneAndUpdate(ctx, filter, bson.M{"$set": setDoc}, findOptions).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// Delete removes a workout and its assignments. History entries keep
// their snapshots and degrade to placeholder labels on read.
func (r *mongoWorkoutRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.workouts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	// Orphaned assignments are useless without their workout.
	_, err = r.assignments.DeleteMany(ctx, bson.M{"workoutId": id})
	return err
}

// CreateAssignments batch-inserts the assignment rows of a workout.
func (r *mongoWorkoutRepository) CreateAssignments(ctx context.Context, assignments []domain.WorkoutExercise) error {
	if len(assignments) == 0 {
		return nil
	}

	docs := make([]interface{}, len(assignments))
	for i := range assignments {
		if assignments[i].ID == primitive.NilObjectID {
			assignments[i].ID = primitive.NewObjectID()
		}
		docs[i] = assignments[i]
	}

	_, err := r.assignments.InsertMany(ctx, docs)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// AddAssignment inserts a single assignment row.
func (r *mongoWorkoutRepository) AddAssignment(ctx context.Context, assignment *domain.WorkoutExercise) (primitive.ObjectID, error) {
	if assignment.WorkoutID == primitive.NilObjectID || assignment.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires workoutId and exerciseId")
	}

	assignment.ID = primitive.NewObjectID()

	result, err := r.assignments.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted assignment ID")
	}
	return insertedID, nil
}

// GetAssignmentsByWorkoutIDs retrieves assignments for the given workouts,
// ordered by orderIndex ascending.
func (r *mongoWorkoutRepository) GetAssignmentsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error) {
	if len(workoutIDs) == 0 {
		return []domain.WorkoutExercise{}, nil
	}

	filter := bson.M{"workoutId": bson.M{"$in": workoutIDs}}
	findOptions := options.Find().SetSort(bson.D{{Key: "orderIndex", Value: 1}})

	cursor, err := r.assignments.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []domain.WorkoutExercise
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []domain.WorkoutExercise{}
	}
	return assignments, nil
}

// RemoveAssignment deletes a single assignment row.
func (r *mongoWorkoutRepository) RemoveAssignment(ctx context.Context, assignmentID primitive.ObjectID) error {
	result, err := r.assignments.DeleteOne(ctx, bson.M{"_id": assignmentID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWorkoutIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutIndexes(ctx context.Context, workouts, assignments *mongo.Collection) {
	workoutIndexes := []mongo.IndexModel{
		{
			// Session view filters by student and active flag.
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "active", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := workouts.Indexes().CreateMany(ctx, workoutIndexes); err != nil {
		// Index creation failures are surfaced at first query instead.
	}

	assignmentIndexes := []mongo.IndexModel{
		{
			// Order is unique within a workout.
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := assignments.Indexes().CreateMany(ctx, assignmentIndexes); err != nil {
		// Index creation failures are surfaced at first query instead.
	}
}
