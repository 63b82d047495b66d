package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- DTOs ---

// AssignmentRequest is one exercise assignment in a composer submission.
// The position in the submitted list defines the order index.
type AssignmentRequest struct {
	ExerciseID string   `json:"exerciseId" binding:"required"`
	Sets       int      `json:"sets" binding:"required,min=1"`
	Reps       string   `json:"reps" binding:"required"`
	Weight     *float64 `json:"weight"`
	RestTime   *int     `json:"restTime"`
	Notes      string   `json:"notes"`
}

// CreateWorkoutRequest defines the composer form payload.
type CreateWorkoutRequest struct {
	StudentID   string              `json:"studentId" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	WorkoutType string              `json:"workoutType" binding:"required"`
	Active      *bool               `json:"active"`
	Exercises   []AssignmentRequest `json:"exercises"`
}

// UpdateWorkoutRequest carries a partial metadata update.
type UpdateWorkoutRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	WorkoutType *string `json:"workoutType"`
	Active      *bool   `json:"active"`
}

// AssignmentResponse is one exercise assignment with catalog details.
type AssignmentResponse struct {
	ID         string            `json:"id"`
	WorkoutID  string            `json:"workoutId"`
	ExerciseID string            `json:"exerciseId"`
	Sets       int               `json:"sets"`
	Reps       string            `json:"reps"`
	Weight     *float64          `json:"weight,omitempty"`
	RestTime   int               `json:"restTime"`
	Notes      string            `json:"notes,omitempty"`
	OrderIndex int               `json:"orderIndex"`
	Exercise   *ExerciseResponse `json:"exercise,omitempty"`
}

// WorkoutResponse is a workout with its ordered assignments.
type WorkoutResponse struct {
	ID          string               `json:"id"`
	StudentID   string               `json:"studentId"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	WorkoutType string               `json:"workoutType"`
	Active      bool                 `json:"active"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
	Exercises   []AssignmentResponse `json:"exercises"`
}

func mapAssignmentToResponse(a service.AssignmentDetail) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID.Hex(),
		WorkoutID:  a.WorkoutID.Hex(),
		ExerciseID: a.ExerciseID.Hex(),
		Sets:       a.Sets,
		Reps:       a.Reps,
		Weight:     a.Weight,
		RestTime:   a.RestTime,
		Notes:      a.Notes,
		OrderIndex: a.OrderIndex,
	}
	if a.Exercise != nil {
		ex := MapExerciseToResponse(a.Exercise)
		resp.Exercise = &ex
	}
	return resp
}

// MapWorkoutDetailToResponse converts a service.WorkoutDetail to its DTO.
func MapWorkoutDetailToResponse(w *service.WorkoutDetail) WorkoutResponse {
	if w == nil {
		return WorkoutResponse{}
	}
	exercises := make([]AssignmentResponse, len(w.Exercises))
	for i, a := range w.Exercises {
		exercises[i] = mapAssignmentToResponse(a)
	}
	return WorkoutResponse{
		ID:          w.ID.Hex(),
		StudentID:   w.StudentID.Hex(),
		Name:        w.Name,
		Description: w.Description,
		WorkoutType: w.WorkoutType,
		Active:      w.Active,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
		Exercises:   exercises,
	}
}

func abortWorkoutError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrStudentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}

func mapAssignmentInputs(reqs []AssignmentRequest) ([]service.AssignmentInput, error) {
	inputs := make([]service.AssignmentInput, len(reqs))
	for i, r := range reqs {
		exerciseID, err := primitive.ObjectIDFromHex(r.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("invalid exercise id at position %d", i)
		}
		inputs[i] = service.AssignmentInput{
			ExerciseID: exerciseID,
			Sets:       r.Sets,
			Reps:       r.Reps,
			Weight:     r.Weight,
			RestTime:   r.RestTime,
			Notes:      r.Notes,
		}
	}
	return inputs, nil
}

// --- Handler Methods ---

// CreateWorkout creates a workout with its ordered exercise assignments.
func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	studentID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid studentId format.")
		return
	}
	assignments, err := mapAssignmentInputs(req.Exercises)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.workoutService.CreateWorkout(c.Request.Context(), service.CreateWorkoutInput{
		StudentID:   studentID,
		Name:        req.Name,
		Description: req.Description,
		WorkoutType: req.WorkoutType,
		Active:      req.Active,
	}, assignments)
	if err != nil {
		abortWorkoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapWorkoutDetailToResponse(detail))
}

// ListWorkouts returns all workouts, optionally filtered by ?studentId=.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	var studentID *primitive.ObjectID
	if raw := c.Query("studentId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid studentId format.")
			return
		}
		studentID = &id
	}

	details, err := h.workoutService.ListWorkouts(c.Request.Context(), studentID)
	if err != nil {
		abortWorkoutError(c, err)
		return
	}

	responses := make([]WorkoutResponse, len(details))
	for i := range details {
		responses[i] = MapWorkoutDetailToResponse(&details[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetWorkout returns one workout with its assignments.
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.workoutService.GetWorkout(c.Request.Context(), workoutID)
	if err != nil {
		abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapWorkoutDetailToResponse(detail))
}

// UpdateWorkout applies a partial metadata update.
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.workoutService.UpdateWorkout(c.Request.Context(), workoutID, domain.WorkoutUpdate{
		Name:        req.Name,
		Description: req.Description,
		WorkoutType: req.WorkoutType,
		Active:      req.Active,
	})
	if err != nil {
		abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// DeleteWorkout removes a workout and its assignments.
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteWorkout(c.Request.Context(), workoutID); err != nil {
		abortWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise appends one exercise assignment to an existing workout.
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	inputs, err := mapAssignmentInputs([]AssignmentRequest{req})
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := h.workoutService.AddExerciseToWorkout(c.Request.Context(), workoutID, inputs[0])
	if err != nil {
		abortWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapAssignmentToResponse(*detail))
}

// RemoveExercise deletes one assignment row from a workout.
func (h *WorkoutHandler) RemoveExercise(c *gin.Context) {
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.workoutService.RemoveExerciseFromWorkout(c.Request.Context(), assignmentID); err != nil {
		abortWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
