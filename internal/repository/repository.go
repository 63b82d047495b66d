package repository

import (
	"context"

	"gymapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AdminRepository defines the interface for interacting with admin accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.Admin) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Admin, error)
}

// StudentRepository defines the interface for interacting with student records.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Student, error)
	GetByUsername(ctx context.Context, username string) (*domain.Student, error)
	// List returns all students ordered by creation time, newest first.
	List(ctx context.Context) ([]domain.Student, error)
	// GetByIDs returns the students whose ids are in the given set, in no
	// particular order. Missing ids are silently skipped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Student, error)
	Update(ctx context.Context, id primitive.ObjectID, update domain.StudentUpdate) (*domain.Student, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetPhotoKey(ctx context.Context, id primitive.ObjectID, photoKey string) error
}

// ExerciseRepository defines the interface for interacting with the
// exercise catalog.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	// List returns the whole catalog sorted by name ascending.
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for workouts and their
// exercise assignments.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// GetByStudentID returns the student's workouts ordered by creation
	// time ascending. When activeOnly is set, inactive workouts are
	// excluded; ids in exclude are filtered out.
	GetByStudentID(ctx context.Context, studentID primitive.ObjectID, activeOnly bool, exclude []primitive.ObjectID) ([]domain.Workout, error)
	// GetByIDs returns workouts whose ids are in the given set.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Workout, error)
	// List returns all workouts ordered by creation time, newest first.
	List(ctx context.Context) ([]domain.Workout, error)
	Update(ctx context.Context, id primitive.ObjectID, update domain.WorkoutUpdate) (*domain.Workout, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Assignment operations (workout_exercises collection).
	CreateAssignments(ctx context.Context, assignments []domain.WorkoutExercise) error
	AddAssignment(ctx context.Context, assignment *domain.WorkoutExercise) (primitive.ObjectID, error)
	// GetAssignmentsByWorkoutIDs returns assignments for the given
	// workouts ordered by orderIndex ascending.
	GetAssignmentsByWorkoutIDs(ctx context.Context, workoutIDs []primitive.ObjectID) ([]domain.WorkoutExercise, error)
	RemoveAssignment(ctx context.Context, assignmentID primitive.ObjectID) error
}

// HistoryRepository defines the interface for the append-only workout
// history log. There is intentionally no Update or Delete.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.WorkoutHistoryEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutHistoryEntry, error)
	// List returns entries ordered by completion timestamp descending.
	// A nil studentID returns the global log.
	List(ctx context.Context, studentID *primitive.ObjectID) ([]domain.WorkoutHistoryEntry, error)
	// CompletedWorkoutIDs returns the ids of workouts the student
	// completed on the given calendar date.
	CompletedWorkoutIDs(ctx context.Context, studentID primitive.ObjectID, completionDate string) ([]primitive.ObjectID, error)
}
