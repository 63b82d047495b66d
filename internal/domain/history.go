package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CompletedExercise is the frozen copy of one assignment's parameters
// written into a history entry at completion time. It is decoupled from
// the live Exercise/WorkoutExercise records so catalog edits never
// rewrite history.
type CompletedExercise struct {
	AssignmentID   primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	ExerciseID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name           string             `bson:"name" json:"name"`
	Sets           int                `bson:"sets" json:"sets"`
	Reps           string             `bson:"reps" json:"reps"`
	Weight         *float64           `bson:"weight,omitempty" json:"weight,omitempty"`
	RestTime       int                `bson:"restTime" json:"restTime"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	MuscleGroup    string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"`
	Equipment      string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Instructions   string             `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Completed      bool               `bson:"completed" json:"completed"`
	CompletionTime time.Time          `bson:"completionTime" json:"completionTime"`
}

// WorkoutHistoryEntry records one completed workout. Entries are
// append-only: once written they are never updated or deleted.
// CompletionDate is the calendar date ("2006-01-02") derived from
// CompletedAt; the session view uses it for same-day filtering.
type WorkoutHistoryEntry struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	StudentID          primitive.ObjectID  `bson:"studentId" json:"studentId"`
	WorkoutID          primitive.ObjectID  `bson:"workoutId" json:"workoutId"`
	CompletedAt        time.Time           `bson:"completedAt" json:"completedAt"`
	CompletionDate     string              `bson:"completionDate" json:"completionDate"`
	ExercisesCompleted []CompletedExercise `bson:"exercisesCompleted" json:"exercisesCompleted"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
}

// CompletionDateLayout is the format used for WorkoutHistoryEntry.CompletionDate.
const CompletionDateLayout = "2006-01-02"
