package service

import (
	"context"
	"errors"
	"strings"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrAssignmentNotFound = errors.New("workout exercise not found")
)

// AssignmentInput carries one exercise assignment submitted with a workout.
// Order is taken from the slice position, not from the input itself.
type AssignmentInput struct {
	ExerciseID primitive.ObjectID
	Sets       int
	Reps       string
	Weight     *float64
	RestTime   *int
	Notes      string
}

// CreateWorkoutInput carries the workout metadata of the composer form.
type CreateWorkoutInput struct {
	StudentID   primitive.ObjectID
	Name        string
	Description string
	WorkoutType string
	Active      *bool
}

// AssignmentDetail pairs an assignment with its catalog exercise. The
// exercise pointer is nil when the catalog entry has been deleted.
type AssignmentDetail struct {
	domain.WorkoutExercise
	Exercise *domain.Exercise `json:"exercise,omitempty"`
}

// WorkoutDetail is a workout joined with its ordered assignments.
type WorkoutDetail struct {
	domain.Workout
	Exercises []AssignmentDetail `json:"exercises"`
}

// --- Service Interface ---
type WorkoutService interface {
	// CreateWorkout writes the workout row and then batch-inserts its
	// assignments with orderIndex equal to the submitted position.
	CreateWorkout(ctx context.Context, input CreateWorkoutInput, assignments []AssignmentInput) (*WorkoutDetail, error)
	GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error)
	// ListWorkouts returns all workouts (newest first), or one student's
	// workouts when studentID is non-nil.
	ListWorkouts(ctx context.Context, studentID *primitive.ObjectID) ([]WorkoutDetail, error)
	UpdateWorkout(ctx context.Context, workoutID primitive.ObjectID, update domain.WorkoutUpdate) (*domain.Workout, error)
	DeleteWorkout(ctx context.Context, workoutID primitive.ObjectID) error
	AddExerciseToWorkout(ctx context.Context, workoutID primitive.ObjectID, input AssignmentInput) (*AssignmentDetail, error)
	RemoveExerciseFromWorkout(ctx context.Context, assignmentID primitive.ObjectID) error
}

// --- Service Implementation ---

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	studentRepo  repository.StudentRepository
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	studentRepo repository.StudentRepository,
) WorkoutService {
	return &workoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		studentRepo:  studentRepo,
	}
}

func validateAssignmentInput(input AssignmentInput) error {
	if input.ExerciseID == primitive.NilObjectID {
		return &ValidationError{Field: "exerciseId", Message: "exercise id is required"}
	}
	if input.Sets < 1 {
		return &ValidationError{Field: "sets", Message: "sets must be at least 1"}
	}
	if strings.TrimSpace(input.Reps) == "" {
		return &ValidationError{Field: "reps", Message: "reps is required"}
	}
	if input.RestTime != nil && *input.RestTime < 0 {
		return &ValidationError{Field: "restTime", Message: "rest time cannot be negative"}
	}
	return nil
}

// buildAssignment converts an input into a WorkoutExercise row at the
// given position, applying the rest-time default.
func buildAssignment(workoutID primitive.ObjectID, input AssignmentInput, orderIndex int) domain.WorkoutExercise {
	restTime := domain.DefaultRestTime
	if input.RestTime != nil {
		restTime = *input.RestTime
	}
	return domain.WorkoutExercise{
		WorkoutID:  workoutID,
		ExerciseID: input.ExerciseID,
		Sets:       input.Sets,
		Reps:       input.Reps,
		Weight:     input.Weight,
		RestTime:   restTime,
		Notes:      input.Notes,
		OrderIndex: orderIndex,
	}
}

// CreateWorkout creates a workout and its ordered assignments.
//
// The write is intentionally two-step, matching the original system: the
// workout row is committed first, then the assignments. If the batch
// insert fails the workout row remains without its assignments.
func (s *workoutService) CreateWorkout(ctx context.Context, input CreateWorkoutInput, assignments []AssignmentInput) (*WorkoutDetail, error) {
	if input.StudentID == primitive.NilObjectID {
		return nil, &ValidationError{Field: "studentId", Message: "student id is required"}
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(input.WorkoutType) == "" {
		return nil, &ValidationError{Field: "workoutType", Message: "workout type is required"}
	}
	for _, a := range assignments {
		if err := validateAssignmentInput(a); err != nil {
			return nil, err
		}
	}

	// The workout must belong to an existing student.
	if _, err := s.studentRepo.GetByID(ctx, input.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	workout := &domain.Workout{
		StudentID:   input.StudentID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		WorkoutType: input.WorkoutType,
		Active:      active,
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID

	if len(assignments) > 0 {
		rows := make([]domain.WorkoutExercise, len(assignments))
		for i, a := range assignments {
			rows[i] = buildAssignment(workoutID, a, i)
		}
		if err := s.workoutRepo.CreateAssignments(ctx, rows); err != nil {
			return nil, err
		}
	}

	return s.GetWorkout(ctx, workoutID)
}

// GetWorkout retrieves one workout with its ordered assignments.
func (s *workoutService) GetWorkout(ctx context.Context, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	details, err := s.attachAssignments(ctx, []domain.Workout{*workout})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListWorkouts retrieves workouts with their assignments.
func (s *workoutService) ListWorkouts(ctx context.Context, studentID *primitive.ObjectID) ([]WorkoutDetail, error) {
	var (
		workouts []domain.Workout
		err      error
	)
	if studentID != nil {
		workouts, err = s.workoutRepo.GetByStudentID(ctx, *studentID, false, nil)
	} else {
		workouts, err = s.workoutRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	return s.attachAssignments(ctx, workouts)
}

// attachAssignments loads the assignments of the given workouts and joins
// in catalog exercise details.
func (s *workoutService) attachAssignments(ctx context.Context, workouts []domain.Workout) ([]WorkoutDetail, error) {
	details := make([]WorkoutDetail, len(workouts))
	if len(workouts) == 0 {
		return details, nil
	}

	workoutIDs := make([]primitive.ObjectID, len(workouts))
	for i, w := range workouts {
		workoutIDs[i] = w.ID
		details[i] = WorkoutDetail{Workout: w, Exercises: []AssignmentDetail{}}
	}

	assignments, err := s.workoutRepo.GetAssignmentsByWorkoutIDs(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}

	// One catalog lookup per distinct exercise id in the result.
	exerciseByID := map[primitive.ObjectID]*domain.Exercise{}
	for _, a := range assignments {
		if _, seen := exerciseByID[a.ExerciseID]; seen {
			continue
		}
		exercise, err := s.exerciseRepo.GetByID(ctx, a.ExerciseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				exerciseByID[a.ExerciseID] = nil // deleted from catalog
				continue
			}
			return nil, err
		}
		exerciseByID[a.ExerciseID] = exercise
	}

	byWorkout := map[primitive.ObjectID]int{}
	for i, w := range workouts {
		byWorkout[w.ID] = i
	}
	for _, a := range assignments {
		i, ok := byWorkout[a.WorkoutID]
		if !ok {
			continue
		}
		details[i].Exercises = append(details[i].Exercises, AssignmentDetail{
			WorkoutExercise: a,
			Exercise:        exerciseByID[a.ExerciseID],
		})
	}
	return details, nil
}

// UpdateWorkout applies a partial metadata update.
func (s *workoutService) UpdateWorkout(ctx context.Context, workoutID primitive.ObjectID, update domain.WorkoutUpdate) (*domain.Workout, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}

	workout, err := s.workoutRepo.Update(ctx, workoutID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	return workout, nil
}

// DeleteWorkout removes a workout and its assignments.
func (s *workoutService) DeleteWorkout(ctx context.Context, workoutID primitive.ObjectID) error {
	err := s.workoutRepo.Delete(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}
	return nil
}

// AddExerciseToWorkout appends one assignment at the next order index.
func (s *workoutService) AddExerciseToWorkout(ctx context.Context, workoutID primitive.ObjectID, input AssignmentInput) (*AssignmentDetail, error) {
	if err := validateAssignmentInput(input); err != nil {
		return nil, err
	}

	if _, err := s.workoutRepo.GetByID(ctx, workoutID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, input.ExerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	existing, err := s.workoutRepo.GetAssignmentsByWorkoutIDs(ctx, []primitive.ObjectID{workoutID})
	if err != nil {
		return nil, err
	}
	nextIndex := 0
	for _, a := range existing {
		if a.OrderIndex >= nextIndex {
			nextIndex = a.OrderIndex + 1
		}
	}

	assignment := buildAssignment(workoutID, input, nextIndex)
	assignmentID, err := s.workoutRepo.AddAssignment(ctx, &assignment)
	if err != nil {
		return nil, err
	}
	assignment.ID = assignmentID

	return &AssignmentDetail{WorkoutExercise: assignment, Exercise: exercise}, nil
}

// RemoveExerciseFromWorkout deletes one assignment row.
func (s *workoutService) RemoveExerciseFromWorkout(ctx context.Context, assignmentID primitive.ObjectID) error {
	err := s.workoutRepo.RemoveAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	return nil
}
