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

// StudentHandler holds the student service dependency.
type StudentHandler struct {
	studentService service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// --- DTOs ---

// CreateStudentRequest defines the expected JSON for registering a student.
// Password is optional; a random 8-character one is generated when empty.
type CreateStudentRequest struct {
	Name         string `json:"name" binding:"required"`
	Age          int    `json:"age" binding:"required"`
	Goal         string `json:"goal" binding:"required"`
	MedicalNotes string `json:"medicalNotes"`
	Active       *bool  `json:"active"`
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password"`
}

// UpdateStudentRequest carries a partial update; absent fields are untouched.
type UpdateStudentRequest struct {
	Name         *string `json:"name"`
	Age          *int    `json:"age"`
	Goal         *string `json:"goal"`
	MedicalNotes *string `json:"medicalNotes"`
	Active       *bool   `json:"active"`
	Username     *string `json:"username"`
	Password     *string `json:"password"`
}

// StudentResponse is the DTO for returning student details to the admin.
// The password is included so the admin can hand credentials to the student.
type StudentResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Goal         string    `json:"goal"`
	MedicalNotes string    `json:"medicalNotes,omitempty"`
	Active       bool      `json:"active"`
	HasPhoto     bool      `json:"hasPhoto"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type PhotoUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// MapStudentToResponse converts a domain.Student to StudentResponse DTO.
func MapStudentToResponse(s *domain.Student) StudentResponse {
	if s == nil {
		return StudentResponse{}
	}
	return StudentResponse{
		ID:           s.ID.Hex(),
		OwnerID:      s.OwnerID.Hex(),
		Name:         s.Name,
		Age:          s.Age,
		Goal:         s.Goal,
		MedicalNotes: s.MedicalNotes,
		Active:       s.Active,
		HasPhoto:     s.PhotoKey != "",
		Username:     s.Username,
		Password:     s.Password,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// abortStudentError maps student service errors to HTTP responses.
func abortStudentError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.Is(err, service.ErrStudentNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStudentHasNoPhoto):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidPhotoType):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, err.Error())
	}
}

// --- Handler Methods ---

// ListStudents returns the roster, newest first.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.studentService.ListStudents(c.Request.Context())
	if err != nil {
		abortStudentError(c, err)
		return
	}

	responses := make([]StudentResponse, len(students))
	for i := range students {
		responses[i] = MapStudentToResponse(&students[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetStudent returns a single student.
func (h *StudentHandler) GetStudent(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.GetStudentByID(c.Request.Context(), studentID)
	if err != nil {
		abortStudentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// CreateStudent registers a new student owned by the calling admin.
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	adminIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify admin from token.")
		return
	}
	adminID, err := primitive.ObjectIDFromHex(adminIDStr)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Invalid admin ID format in token.")
		return
	}

	student, err := h.studentService.CreateStudent(c.Request.Context(), adminID, service.CreateStudentInput{
		Name:         req.Name,
		Age:          req.Age,
		Goal:         req.Goal,
		MedicalNotes: req.MedicalNotes,
		Active:       req.Active,
		Username:     req.Username,
		Password:     req.Password,
	})
	if err != nil {
		abortStudentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapStudentToResponse(student))
}

// UpdateStudent applies a partial update to a student record.
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	student, err := h.studentService.UpdateStudent(c.Request.Context(), studentID, domain.StudentUpdate{
		Name:         req.Name,
		Age:          req.Age,
		Goal:         req.Goal,
		MedicalNotes: req.MedicalNotes,
		Active:       req.Active,
		Username:     req.Username,
		Password:     req.Password,
	})
	if err != nil {
		abortStudentError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// DeleteStudent hard-deletes a student record.
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.studentService.DeleteStudent(c.Request.Context(), studentID); err != nil {
		abortStudentError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleStudentStatus flips the student's active flag.
func (h *StudentHandler) ToggleStudentStatus(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.ToggleStudentStatus(c.Request.Context(), studentID)
	if err != nil {
		abortStudentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// RequestPhotoUploadURL returns a presigned PUT URL for a student photo.
func (h *StudentHandler) RequestPhotoUploadURL(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PhotoUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.studentService.RequestPhotoUploadURL(c.Request.Context(), studentID, req.ContentType)
	if err != nil {
		abortStudentError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPhotoUpload stores the uploaded object key on the student.
func (h *StudentHandler) ConfirmPhotoUpload(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ConfirmPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	student, err := h.studentService.ConfirmPhotoUpload(c.Request.Context(), studentID, req.ObjectKey)
	if err != nil {
		abortStudentError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapStudentToResponse(student))
}

// GetPhotoDownloadURL returns a presigned GET URL for the student's photo.
func (h *StudentHandler) GetPhotoDownloadURL(c *gin.Context) {
	studentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.studentService.GetPhotoDownloadURL(c.Request.Context(), studentID)
	if err != nil {
		abortStudentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// parseIDParam parses an ObjectID path parameter, aborting on failure.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format.", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
