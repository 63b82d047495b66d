package api

import (
	"net/http"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryHandler exposes the admin view of the completion log.
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// HistoryEntryResponse is one completion record enriched with the workout
// and student display names resolved at read time.
type HistoryEntryResponse struct {
	ID                 string                     `json:"id"`
	StudentID          string                     `json:"studentId"`
	WorkoutID          string                     `json:"workoutId"`
	WorkoutName        string                     `json:"workoutName"`
	WorkoutType        string                     `json:"workoutType,omitempty"`
	StudentName        string                     `json:"studentName"`
	CompletedAt        time.Time                  `json:"completedAt"`
	CompletionDate     string                     `json:"completionDate"`
	ExercisesCompleted []domain.CompletedExercise `json:"exercisesCompleted"`
	Notes              string                     `json:"notes,omitempty"`
}

func mapHistoryEntries(entries []service.HistoryEntryDetail) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = HistoryEntryResponse{
			ID:                 e.ID.Hex(),
			StudentID:          e.StudentID.Hex(),
			WorkoutID:          e.WorkoutID.Hex(),
			WorkoutName:        e.WorkoutName,
			WorkoutType:        e.WorkoutType,
			StudentName:        e.StudentName,
			CompletedAt:        e.CompletedAt,
			CompletionDate:     e.CompletionDate,
			ExercisesCompleted: e.ExercisesCompleted,
			Notes:              e.Notes,
		}
	}
	return responses
}

// ListHistory returns the completion log, optionally filtered by
// ?studentId=. Entries are newest first.
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var studentID *primitive.ObjectID
	if raw := c.Query("studentId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid studentId format.")
			return
		}
		studentID = &id
	}

	entries, err := h.historyService.ListHistory(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, mapHistoryEntries(entries))
}
