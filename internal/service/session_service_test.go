package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymapp/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionFixture struct {
	svc          *sessionService
	workoutRepo  *fakeWorkoutRepo
	exerciseRepo *fakeExerciseRepo
	historyRepo  *fakeHistoryRepo
	studentID    primitive.ObjectID
	workoutID    primitive.ObjectID
	clock        time.Time
}

// newSessionFixture seeds one student with one active workout of two
// exercises and pins the service clock.
func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	workoutRepo := newFakeWorkoutRepo()
	exerciseRepo := newFakeExerciseRepo()
	historyRepo := newFakeHistoryRepo()

	f := &sessionFixture{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		historyRepo:  historyRepo,
		studentID:    primitive.NewObjectID(),
		clock:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	workoutID, err := workoutRepo.Create(context.Background(), &domain.Workout{
		StudentID:   f.studentID,
		Name:        "Treino A",
		WorkoutType: "Hypertrophy",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("seed workout: %v", err)
	}
	f.workoutID = workoutID

	for i, name := range []string{"Supino Reto", "Agachamento"} {
		exerciseID, err := exerciseRepo.Create(context.Background(), &domain.Exercise{
			Name:        name,
			MuscleGroup: "misc",
		})
		if err != nil {
			t.Fatalf("seed exercise: %v", err)
		}
		if _, err := workoutRepo.AddAssignment(context.Background(), &domain.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: exerciseID,
			Sets:       3,
			Reps:       "8-12",
			RestTime:   domain.DefaultRestTime,
			OrderIndex: i,
		}); err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
	}

	svc := NewSessionService(workoutRepo, exerciseRepo, historyRepo).(*sessionService)
	svc.now = func() time.Time { return f.clock }
	svc.removalDelay = time.Millisecond
	f.svc = svc
	return f
}

func (f *sessionFixture) load(t *testing.T) []SessionWorkout {
	t.Helper()
	workouts, err := f.svc.LoadSession(context.Background(), f.studentID)
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	return workouts
}

// completeAll toggles every exercise of the given session workout.
func (f *sessionFixture) completeAll(t *testing.T, w SessionWorkout) {
	t.Helper()
	for _, e := range w.Exercises {
		if _, err := f.svc.ToggleExercise(f.studentID, w.ID, e.AssignmentID); err != nil {
			t.Fatalf("ToggleExercise(%s): %v", e.Name, err)
		}
	}
}

func TestLoadSessionStartsPending(t *testing.T) {
	f := newSessionFixture(t)

	workouts := f.load(t)
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	w := workouts[0]
	if w.Completed {
		t.Error("freshly loaded workout must not be completed")
	}
	if len(w.Exercises) != 2 {
		t.Fatalf("got %d exercises, want 2", len(w.Exercises))
	}
	for _, e := range w.Exercises {
		if e.Completed {
			t.Errorf("exercise %s should start pending", e.Name)
		}
	}
	if w.Exercises[0].Name != "Supino Reto" || w.Exercises[1].Name != "Agachamento" {
		t.Errorf("exercises out of assignment order: %s, %s", w.Exercises[0].Name, w.Exercises[1].Name)
	}
}

func TestLoadSessionSkipsInactiveWorkouts(t *testing.T) {
	f := newSessionFixture(t)

	inactive := false
	if _, err := f.workoutRepo.Update(context.Background(), f.workoutID, domain.WorkoutUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate workout: %v", err)
	}

	if workouts := f.load(t); len(workouts) != 0 {
		t.Fatalf("inactive workout leaked into session: %d", len(workouts))
	}
}

func TestLoadSessionFallsBackOnDeletedExercise(t *testing.T) {
	f := newSessionFixture(t)

	workouts := f.load(t)
	if err := f.exerciseRepo.Delete(context.Background(), workouts[0].Exercises[0].ExerciseID); err != nil {
		t.Fatalf("delete exercise: %v", err)
	}

	workouts = f.load(t)
	if got := workouts[0].Exercises[0].Name; got != "Exercício" {
		t.Errorf("deleted exercise name = %q, want fallback label", got)
	}
}

func TestToggleExerciseFlipsAndRecomputes(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]

	after, err := f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[0].AssignmentID)
	if err != nil {
		t.Fatalf("ToggleExercise: %v", err)
	}
	if !after.Exercises[0].Completed || after.Exercises[1].Completed {
		t.Error("only the toggled exercise should flip")
	}
	if after.Completed {
		t.Error("workout must not be completed while an exercise is pending")
	}

	after, err = f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[1].AssignmentID)
	if err != nil {
		t.Fatalf("ToggleExercise: %v", err)
	}
	if !after.Completed {
		t.Error("workout should be completed once every exercise is")
	}

	// Toggling back off clears the workout flag again.
	after, err = f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[1].AssignmentID)
	if err != nil {
		t.Fatalf("ToggleExercise: %v", err)
	}
	if after.Completed {
		t.Error("un-toggling an exercise must clear the workout flag")
	}
}

func TestToggleExerciseErrors(t *testing.T) {
	f := newSessionFixture(t)

	if _, err := f.svc.ToggleExercise(f.studentID, f.workoutID, primitive.NewObjectID()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("before load: got %v, want ErrNoSession", err)
	}

	w := f.load(t)[0]
	if _, err := f.svc.ToggleExercise(f.studentID, primitive.NewObjectID(), w.Exercises[0].AssignmentID); !errors.Is(err, ErrWorkoutNotInSession) {
		t.Fatalf("unknown workout: got %v, want ErrWorkoutNotInSession", err)
	}
	if _, err := f.svc.ToggleExercise(f.studentID, w.ID, primitive.NewObjectID()); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("unknown assignment: got %v, want ErrAssignmentNotFound", err)
	}
}

func TestCompleteWorkoutRequiresAllExercises(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]

	if _, err := f.svc.CompleteWorkout(context.Background(), f.studentID, w.ID); !errors.Is(err, ErrWorkoutIncomplete) {
		t.Fatalf("got %v, want ErrWorkoutIncomplete", err)
	}
	if len(f.historyRepo.entries) != 0 {
		t.Error("rejected completion must not write history")
	}
}

func TestCompleteWorkoutWritesSnapshot(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]
	f.completeAll(t, w)

	entry, err := f.svc.CompleteWorkout(context.Background(), f.studentID, w.ID)
	if err != nil {
		t.Fatalf("CompleteWorkout: %v", err)
	}
	if entry.StudentID != f.studentID || entry.WorkoutID != w.ID {
		t.Error("entry not keyed to the student and workout")
	}
	if entry.CompletionDate != "2025-03-10" {
		t.Errorf("completionDate = %q, want 2025-03-10", entry.CompletionDate)
	}
	if entry.Notes != "Treino Treino A concluído com 2 exercícios" {
		t.Errorf("unexpected note %q", entry.Notes)
	}
	if len(entry.ExercisesCompleted) != 2 {
		t.Fatalf("snapshot has %d exercises, want 2", len(entry.ExercisesCompleted))
	}
	for _, e := range entry.ExercisesCompleted {
		if !e.Completed {
			t.Errorf("snapshot exercise %s not marked completed", e.Name)
		}
		if !e.CompletionTime.Equal(entry.CompletedAt) {
			t.Errorf("snapshot time %v != entry time %v", e.CompletionTime, entry.CompletedAt)
		}
	}

	// The snapshot is frozen: a later catalog rename must not leak in.
	exercise, err := f.exerciseRepo.GetByID(context.Background(), entry.ExercisesCompleted[0].ExerciseID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	exercise.Name = "Renamed"
	if err := f.exerciseRepo.Update(context.Background(), exercise); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stored, err := f.historyRepo.GetByID(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("history GetByID: %v", err)
	}
	if stored.ExercisesCompleted[0].Name != "Supino Reto" {
		t.Errorf("snapshot name changed to %q after catalog edit", stored.ExercisesCompleted[0].Name)
	}
}

func TestCompletedWorkoutEvictedAfterDelay(t *testing.T) {
	f := newSessionFixture(t)
	f.svc.removalDelay = 50 * time.Millisecond
	w := f.load(t)[0]
	f.completeAll(t, w)

	if _, err := f.svc.CompleteWorkout(context.Background(), f.studentID, w.ID); err != nil {
		t.Fatalf("CompleteWorkout: %v", err)
	}

	// Immediately after completion the workout is still visible, marked done.
	if _, err := f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[0].AssignmentID); err != nil {
		t.Fatalf("workout should still be in session right after completion: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, err := f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[0].AssignmentID)
		if errors.Is(err, ErrWorkoutNotInSession) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("completed workout was never evicted from the session")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCompletedTodayExcludedUntilNextDay(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]
	f.completeAll(t, w)

	if _, err := f.svc.CompleteWorkout(context.Background(), f.studentID, w.ID); err != nil {
		t.Fatalf("CompleteWorkout: %v", err)
	}

	// A reload on the same calendar day hides the completed workout.
	if workouts := f.load(t); len(workouts) != 0 {
		t.Fatalf("completed-today workout reappeared: %d", len(workouts))
	}

	// The next day it is available again, fully pending.
	f.clock = f.clock.Add(24 * time.Hour)
	workouts := f.load(t)
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts on the next day, want 1", len(workouts))
	}
	if workouts[0].Completed {
		t.Error("next-day workout should be pending again")
	}
}

// The same-day exclusion keys on the session clock's calendar date, so
// it must hold even when that clock's zone disagrees with UTC's date.
func TestCompletedTodayExcludedInNonUTCZone(t *testing.T) {
	f := newSessionFixture(t)
	// 02:00 local is still the previous day in UTC.
	f.clock = time.Date(2025, 3, 10, 2, 0, 0, 0, time.FixedZone("UTC+3", 3*60*60))
	w := f.load(t)[0]
	f.completeAll(t, w)

	entry, err := f.svc.CompleteWorkout(context.Background(), f.studentID, w.ID)
	if err != nil {
		t.Fatalf("CompleteWorkout: %v", err)
	}
	if entry.CompletionDate != "2025-03-10" {
		t.Errorf("completionDate = %q, want the local date 2025-03-10", entry.CompletionDate)
	}
	if entry.CompletedAt.Location() != time.UTC {
		t.Errorf("completedAt stored in %v, want UTC", entry.CompletedAt.Location())
	}
	if !entry.CompletedAt.Equal(f.clock) {
		t.Errorf("completedAt = %v, want the instant %v", entry.CompletedAt, f.clock)
	}

	if workouts := f.load(t); len(workouts) != 0 {
		t.Fatalf("workout completed today reappeared on same-day reload: %d", len(workouts))
	}
}

func TestLoadSessionDiscardsProgress(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]

	if _, err := f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[0].AssignmentID); err != nil {
		t.Fatalf("ToggleExercise: %v", err)
	}

	reloaded := f.load(t)[0]
	for _, e := range reloaded.Exercises {
		if e.Completed {
			t.Errorf("exercise %s kept progress across reload", e.Name)
		}
	}
}

// Mutating a returned workout must not affect the session's own state.
func TestSessionReturnsCopies(t *testing.T) {
	f := newSessionFixture(t)
	w := f.load(t)[0]

	w.Exercises[0].Completed = true

	reread, err := f.svc.ToggleExercise(f.studentID, w.ID, w.Exercises[1].AssignmentID)
	if err != nil {
		t.Fatalf("ToggleExercise: %v", err)
	}
	if reread.Exercises[0].Completed {
		t.Error("caller mutation leaked into the session state")
	}
}
