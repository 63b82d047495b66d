package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultRestTime is applied to an assignment when no rest time is given.
const DefaultRestTime = 60 // seconds

// Workout is a named training session belonging to exactly one student.
// Its exercises are linked via WorkoutExercise records ordered by OrderIndex.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID   primitive.ObjectID `bson:"studentId" json:"studentId"`
	Name        string             `bson:"name" json:"name"` // e.g., "Treino A", "Upper Body"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	WorkoutType string             `bson:"workoutType" json:"workoutType"` // e.g., "Hypertrophy", "Cardio"
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WorkoutExercise binds one Exercise to one Workout with workout-specific
// parameters. OrderIndex is zero-based and unique within a workout; it
// defines the display/execution order.
type WorkoutExercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Sets       int                `bson:"sets" json:"sets"`                 // >= 1
	Reps       string             `bson:"reps" json:"reps"`                 // Free-text range like "8-12"
	Weight     *float64           `bson:"weight,omitempty" json:"weight,omitempty"` // Optional, kg
	RestTime   int                `bson:"restTime" json:"restTime"`         // Seconds between sets
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
}

// WorkoutUpdate carries a partial update for workout metadata.
// Nil fields are left untouched. Assignments are managed separately.
type WorkoutUpdate struct {
	Name        *string `bson:"name,omitempty"`
	Description *string `bson:"description,omitempty"`
	WorkoutType *string `bson:"workoutType,omitempty"`
	Active      *bool   `bson:"active,omitempty"`
}
