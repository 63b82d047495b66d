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

const studentCollectionName = "students"

// mongoStudentRepository implements repository.StudentRepository
type mongoStudentRepository struct {
	collection *mongo.Collection
}

// NewMongoStudentRepository creates a new Student repository backed by MongoDB.
func NewMongoStudentRepository(db *mongo.Database) repository.StudentRepository {
	return &mongoStudentRepository{
		collection: db.Collection(studentCollectionName),
	}
}

// Create inserts a new student record.
func (r *mongoStudentRepository) Create(ctx context.Context, student *domain.Student) (primitive.ObjectID, error) {
	if student.Name == "" || student.Username == "" || student.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("student name, username and owner ID are required")
	}

	student.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a student by its ID.
func (r *mongoStudentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Student, error) {
	var student domain.Student
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// GetByUsername retrieves a student by login username.
func (r *mongoStudentRepository) GetByUsername(ctx context.Context, username string) (*domain.Student, error) {
	var student domain.Student
	filter := bson.M{"username": username}

	err := r.collection.FindOne(ctx, filter).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &student, nil
}

// List retrieves all students, newest first.
func (r *mongoStudentRepository) List(ctx context.Context) ([]domain.Student, error) {
	var students []domain.Student

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if students == nil {
		students = []domain.Student{}
	}
	return students, nil
}

// GetByIDs retrieves the students whose ids are in the given set.
func (r *mongoStudentRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Student, error) {
	if len(ids) == 0 {
		return []domain.Student{}, nil
	}

	var students []domain.Student
	filter := bson.M{"_id": bson.M{"$in": ids}}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// Update applies a partial update and returns the updated document.
func (r *mongoStudentRepository) Update(ctx context.Context, id primitive.ObjectID, update domain.StudentUpdate) (*domain.Student, error) {
	setDoc := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		setDoc["name"] = *update.Name
	}
	if update.Age != nil {
		setDoc["age"] = *update.Age
	}
	if update.Goal != nil {
		setDoc["goal"] = *update.Goal
	}
	if update.MedicalNotes != nil {
		setDoc["medicalNotes"] = *update.MedicalNotes
	}
	if update.Active != nil {
		setDoc["active"] = *update.Active
	}
	if update.Username != nil {
		setDoc["username"] = *update.Username
	}
	if update.Password != nil {
		setDoc["password"] = *update.Password
	}

	filter := bson.M{"_id": id}
	findOptions := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var student domain.Student
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": setDoc}, findOptions).Decode(&student)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return &student, nil
}

// Delete removes a student record. Workouts and history referencing the
// student are left in place; history reads degrade to placeholder labels.
func (r *mongoStudentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPhotoKey stores the object storage key of the student's photo.
func (r *mongoStudentRepository) SetPhotoKey(ctx context.Context, id primitive.ObjectID, photoKey string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"photoKey":  photoKey,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureStudentIndexes creates necessary indexes for the students collection.
func EnsureStudentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			// Listing is always sorted by creation time.
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Index creation failures are surfaced at first query instead.
	}
}
