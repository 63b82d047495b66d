package api

import (
	"errors"
	"net/http"

	"gymapp/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler exposes the student-facing workout session view.
type SessionHandler struct {
	sessionService service.SessionService
	historyService service.HistoryService
	authService    service.AuthService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, historyService service.HistoryService, authService service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		historyService: historyService,
		authService:    authService,
	}
}

// studentIDFromToken resolves the authenticated student's ID and verifies
// the account is still active. Deactivated students keep a valid token
// until it expires, so the check happens on every request.
func (h *SessionHandler) studentIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	rawID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return primitive.NilObjectID, false
	}
	studentID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Invalid user ID in token.")
		return primitive.NilObjectID, false
	}

	active, err := h.authService.IsActiveStudent(c.Request.Context(), rawID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to verify account status.")
		return primitive.NilObjectID, false
	}
	if !active {
		abortWithError(c, http.StatusForbidden, "Account is inactive.")
		return primitive.NilObjectID, false
	}
	return studentID, true
}

// LoadSession builds the student's session view: active workouts not yet
// completed today, with per-exercise progress reset to pending.
func (h *SessionHandler) LoadSession(c *gin.Context) {
	studentID, ok := h.studentIDFromToken(c)
	if !ok {
		return
	}

	workouts, err := h.sessionService.LoadSession(c.Request.Context(), studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// ToggleExercise flips one exercise's completion flag within the session.
func (h *SessionHandler) ToggleExercise(c *gin.Context) {
	studentID, ok := h.studentIDFromToken(c)
	if !ok {
		return
	}
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "exerciseId")
	if !ok {
		return
	}

	workout, err := h.sessionService.ToggleExercise(studentID, workoutID, assignmentID)
	if err != nil {
		abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// CompleteWorkout records the workout completion and returns the history
// entry that was written.
func (h *SessionHandler) CompleteWorkout(c *gin.Context) {
	studentID, ok := h.studentIDFromToken(c)
	if !ok {
		return
	}
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return
	}

	entry, err := h.sessionService.CompleteWorkout(c.Request.Context(), studentID, workoutID)
	if err != nil {
		abortSessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListOwnHistory returns the authenticated student's completion log.
func (h *SessionHandler) ListOwnHistory(c *gin.Context) {
	studentID, ok := h.studentIDFromToken(c)
	if !ok {
		return
	}

	entries, err := h.historyService.ListHistory(c.Request.Context(), &studentID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, mapHistoryEntries(entries))
}

func abortSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, service.ErrWorkoutNotInSession),
		errors.Is(err, service.ErrAssignmentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutIncomplete):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}
