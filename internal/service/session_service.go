package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotInSession = errors.New("workout is not in the current session")
	ErrWorkoutIncomplete   = errors.New("workout still has pending exercises")
	ErrNoSession           = errors.New("no loaded session for this student")
)

// workoutRemovalDelay is how long a completed workout stays visible in
// the session before being evicted, so the caller can show a success
// state before the workout disappears.
const workoutRemovalDelay = 2 * time.Second

// SessionExercise is one exercise of a session workout with its
// session-local completion flag and the denormalized catalog fields.
type SessionExercise struct {
	AssignmentID primitive.ObjectID `json:"id"`
	ExerciseID   primitive.ObjectID `json:"exerciseId"`
	Name         string             `json:"name"`
	Sets         int                `json:"sets"`
	Reps         string             `json:"reps"`
	Weight       *float64           `json:"weight,omitempty"`
	RestTime     int                `json:"restTime"`
	Notes        string             `json:"notes,omitempty"`
	MuscleGroup  string             `json:"muscleGroup,omitempty"`
	Equipment    string             `json:"equipment,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	Completed    bool               `json:"completed"`
}

// SessionWorkout is one workout of a student's session view. Completed
// is the logical AND over the exercises' completion flags.
type SessionWorkout struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	WorkoutType string             `json:"workoutType"`
	Completed   bool               `json:"completed"`
	Exercises   []SessionExercise  `json:"exercises"`
}

// --- Service Interface ---

// SessionService holds the per-student session view: the active workouts
// not yet completed today, with session-local per-exercise progress.
// Progress is not persisted until a whole workout is completed.
type SessionService interface {
	// LoadSession builds (or rebuilds) the session view from the store.
	// Any previous session-local progress for the student is discarded.
	LoadSession(ctx context.Context, studentID primitive.ObjectID) ([]SessionWorkout, error)
	// ToggleExercise flips one exercise's completion flag and recomputes
	// the workout's completed flag.
	ToggleExercise(studentID, workoutID, assignmentID primitive.ObjectID) (*SessionWorkout, error)
	// CompleteWorkout writes a history entry snapshotting the workout's
	// exercises. It is rejected while any exercise is pending. The
	// workout is evicted from the session after a short delay.
	CompleteWorkout(ctx context.Context, studentID, workoutID primitive.ObjectID) (*domain.WorkoutHistoryEntry, error)
}

// --- Service Implementation ---

type studentSession struct {
	workouts []SessionWorkout
}

// sessionService implements the SessionService interface.
type sessionService struct {
	workoutRepo  repository.WorkoutRepository
	exerciseRepo repository.ExerciseRepository
	historyRepo  repository.HistoryRepository

	mu       sync.Mutex
	sessions map[primitive.ObjectID]*studentSession

	// Injection points for tests.
	now          func() time.Time
	removalDelay time.Duration
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	workoutRepo repository.WorkoutRepository,
	exerciseRepo repository.ExerciseRepository,
	historyRepo repository.HistoryRepository,
) SessionService {
	return &sessionService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		historyRepo:  historyRepo,
		sessions:     make(map[primitive.ObjectID]*studentSession),
		now:          time.Now,
		removalDelay: workoutRemovalDelay,
	}
}

// LoadSession computes the set of active workouts not yet completed today
// and initializes every exercise to pending.
func (s *sessionService) LoadSession(ctx context.Context, studentID primitive.ObjectID) ([]SessionWorkout, error) {
	today := s.now().Format(domain.CompletionDateLayout)

	completedToday, err := s.historyRepo.CompletedWorkoutIDs(ctx, studentID, today)
	if err != nil {
		return nil, err
	}

	workouts, err := s.workoutRepo.GetByStudentID(ctx, studentID, true, completedToday)
	if err != nil {
		return nil, err
	}

	sessionWorkouts := make([]SessionWorkout, 0, len(workouts))
	if len(workouts) > 0 {
		workoutIDs := make([]primitive.ObjectID, len(workouts))
		for i, w := range workouts {
			workoutIDs[i] = w.ID
		}

		assignments, err := s.workoutRepo.GetAssignmentsByWorkoutIDs(ctx, workoutIDs)
		if err != nil {
			return nil, err
		}

		exercisesByWorkout := make(map[primitive.ObjectID][]SessionExercise)
		for _, a := range assignments {
			exercisesByWorkout[a.WorkoutID] = append(exercisesByWorkout[a.WorkoutID], s.buildSessionExercise(ctx, a))
		}

		for _, w := range workouts {
			sessionWorkouts = append(sessionWorkouts, SessionWorkout{
				ID:          w.ID,
				Name:        w.Name,
				Description: w.Description,
				WorkoutType: w.WorkoutType,
				Completed:   false,
				Exercises:   exercisesByWorkout[w.ID],
			})
		}
	}

	s.mu.Lock()
	s.sessions[studentID] = &studentSession{workouts: sessionWorkouts}
	s.mu.Unlock()

	return cloneWorkouts(sessionWorkouts), nil
}

// buildSessionExercise denormalizes catalog fields onto the assignment.
// A deleted catalog entry degrades to a generic name.
func (s *sessionService) buildSessionExercise(ctx context.Context, a domain.WorkoutExercise) SessionExercise {
	se := SessionExercise{
		AssignmentID: a.ID,
		ExerciseID:   a.ExerciseID,
		Name:         "Exercício",
		Sets:         a.Sets,
		Reps:         a.Reps,
		Weight:       a.Weight,
		RestTime:     a.RestTime,
		Notes:        a.Notes,
	}
	if exercise, err := s.exerciseRepo.GetByID(ctx, a.ExerciseID); err == nil {
		se.Name = exercise.Name
		se.MuscleGroup = exercise.MuscleGroup
		se.Equipment = exercise.Equipment
		se.Instructions = exercise.Instructions
	}
	return se
}

// ToggleExercise flips one exercise's session-local completion flag.
func (s *sessionService) ToggleExercise(studentID, workoutID, assignmentID primitive.ObjectID) (*SessionWorkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[studentID]
	if !ok {
		return nil, ErrNoSession
	}

	for wi := range session.workouts {
		w := &session.workouts[wi]
		if w.ID != workoutID {
			continue
		}

		found := false
		allCompleted := true
		for ei := range w.Exercises {
			if w.Exercises[ei].AssignmentID == assignmentID {
				w.Exercises[ei].Completed = !w.Exercises[ei].Completed
				found = true
			}
			if !w.Exercises[ei].Completed {
				allCompleted = false
			}
		}
		if !found {
			return nil, ErrAssignmentNotFound
		}
		w.Completed = allCompleted && len(w.Exercises) > 0

		copied := cloneWorkout(*w)
		return &copied, nil
	}
	return nil, ErrWorkoutNotInSession
}

// CompleteWorkout persists a snapshot of the finished workout and
// schedules its eviction from the session view.
func (s *sessionService) CompleteWorkout(ctx context.Context, studentID, workoutID primitive.ObjectID) (*domain.WorkoutHistoryEntry, error) {
	s.mu.Lock()
	session, ok := s.sessions[studentID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoSession
	}

	var workout *SessionWorkout
	for wi := range session.workouts {
		if session.workouts[wi].ID == workoutID {
			workout = &session.workouts[wi]
			break
		}
	}
	if workout == nil {
		s.mu.Unlock()
		return nil, ErrWorkoutNotInSession
	}

	// Precondition, not an error path: every exercise must be done.
	for _, e := range workout.Exercises {
		if !e.Completed {
			s.mu.Unlock()
			return nil, ErrWorkoutIncomplete
		}
	}

	// The calendar date must come from the same clock (and zone) that
	// LoadSession uses for the same-day exclusion; the timestamp itself
	// is stored in UTC.
	completionMoment := s.now()
	completionDate := completionMoment.Format(domain.CompletionDateLayout)
	completedAt := completionMoment.UTC()
	snapshot := make([]domain.CompletedExercise, len(workout.Exercises))
	for i, e := range workout.Exercises {
		snapshot[i] = domain.CompletedExercise{
			AssignmentID:   e.AssignmentID,
			ExerciseID:     e.ExerciseID,
			Name:           e.Name,
			Sets:           e.Sets,
			Reps:           e.Reps,
			Weight:         e.Weight,
			RestTime:       e.RestTime,
			Notes:          e.Notes,
			MuscleGroup:    e.MuscleGroup,
			Equipment:      e.Equipment,
			Instructions:   e.Instructions,
			Completed:      true,
			CompletionTime: completedAt,
		}
	}

	entry := &domain.WorkoutHistoryEntry{
		StudentID:          studentID,
		WorkoutID:          workoutID,
		CompletedAt:        completedAt,
		CompletionDate:     completionDate,
		ExercisesCompleted: snapshot,
		Notes:              fmt.Sprintf("Treino %s concluído com %d exercícios", workout.Name, len(workout.Exercises)),
	}
	s.mu.Unlock()

	// History write happens outside the session lock.
	entryID, err := s.historyRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = entryID

	s.mu.Lock()
	for wi := range session.workouts {
		if session.workouts[wi].ID == workoutID {
			session.workouts[wi].Completed = true
			for ei := range session.workouts[wi].Exercises {
				session.workouts[wi].Exercises[ei].Completed = true
			}
		}
	}
	s.mu.Unlock()

	// Keep the completed workout visible briefly, then evict it. It
	// reappears at the next calendar day's load.
	time.AfterFunc(s.removalDelay, func() {
		s.evictWorkout(studentID, workoutID)
	})

	return entry, nil
}

func (s *sessionService) evictWorkout(studentID, workoutID primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[studentID]
	if !ok {
		return
	}
	kept := session.workouts[:0]
	for _, w := range session.workouts {
		if w.ID != workoutID {
			kept = append(kept, w)
		}
	}
	session.workouts = kept
}

// cloneWorkout returns a deep copy so callers cannot mutate session state.
func cloneWorkout(w SessionWorkout) SessionWorkout {
	exercises := make([]SessionExercise, len(w.Exercises))
	copy(exercises, w.Exercises)
	w.Exercises = exercises
	return w
}

func cloneWorkouts(workouts []SessionWorkout) []SessionWorkout {
	out := make([]SessionWorkout, len(workouts))
	for i, w := range workouts {
		out[i] = cloneWorkout(w)
	}
	return out
}
