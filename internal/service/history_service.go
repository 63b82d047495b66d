package service

import (
	"context"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Placeholder labels used when a history entry's workout or student has
// since been deleted.
const (
	placeholderWorkoutName = "Treino"
	placeholderStudentName = "Aluno"
)

// HistoryEntryDetail is a history entry enriched with display fields
// resolved at read time.
type HistoryEntryDetail struct {
	domain.WorkoutHistoryEntry
	WorkoutName string `json:"workoutName"`
	WorkoutType string `json:"workoutType"`
	StudentName string `json:"studentName"`
}

// --- Service Interface ---
type HistoryService interface {
	// ListHistory returns entries ordered by completion timestamp
	// descending, enriched with workout and student display names. A nil
	// studentID returns the global log.
	ListHistory(ctx context.Context, studentID *primitive.ObjectID) ([]HistoryEntryDetail, error)
}

// --- Service Implementation ---

// historyService implements the HistoryService interface.
type historyService struct {
	historyRepo repository.HistoryRepository
	workoutRepo repository.WorkoutRepository
	studentRepo repository.StudentRepository
}

// NewHistoryService creates a new instance of historyService.
func NewHistoryService(
	historyRepo repository.HistoryRepository,
	workoutRepo repository.WorkoutRepository,
	studentRepo repository.StudentRepository,
) HistoryService {
	return &historyService{
		historyRepo: historyRepo,
		workoutRepo: workoutRepo,
		studentRepo: studentRepo,
	}
}

// ListHistory enriches each entry with workout and student display names
// via secondary lookups keyed by the distinct ids in the result. Entries
// whose referents were deleted degrade to placeholder labels instead of
// failing.
func (s *historyService) ListHistory(ctx context.Context, studentID *primitive.ObjectID) ([]HistoryEntryDetail, error) {
	entries, err := s.historyRepo.List(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []HistoryEntryDetail{}, nil
	}

	workoutIDSet := map[primitive.ObjectID]struct{}{}
	studentIDSet := map[primitive.ObjectID]struct{}{}
	for _, e := range entries {
		workoutIDSet[e.WorkoutID] = struct{}{}
		studentIDSet[e.StudentID] = struct{}{}
	}

	workoutIDs := make([]primitive.ObjectID, 0, len(workoutIDSet))
	for id := range workoutIDSet {
		workoutIDs = append(workoutIDs, id)
	}
	studentIDs := make([]primitive.ObjectID, 0, len(studentIDSet))
	for id := range studentIDSet {
		studentIDs = append(studentIDs, id)
	}

	workouts, err := s.workoutRepo.GetByIDs(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	students, err := s.studentRepo.GetByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}

	workoutByID := make(map[primitive.ObjectID]domain.Workout, len(workouts))
	for _, w := range workouts {
		workoutByID[w.ID] = w
	}
	studentByID := make(map[primitive.ObjectID]domain.Student, len(students))
	for _, st := range students {
		studentByID[st.ID] = st
	}

	details := make([]HistoryEntryDetail, len(entries))
	for i, e := range entries {
		detail := HistoryEntryDetail{
			WorkoutHistoryEntry: e,
			WorkoutName:         placeholderWorkoutName,
			StudentName:         placeholderStudentName,
		}
		if w, ok := workoutByID[e.WorkoutID]; ok {
			detail.WorkoutName = w.Name
			detail.WorkoutType = w.WorkoutType
		}
		if st, ok := studentByID[e.StudentID]; ok {
			detail.StudentName = st.Name
		}
		details[i] = detail
	}
	return details, nil
}
