package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path"
	"strings"

	"gymapp/internal/domain"
	"gymapp/internal/repository"
	"gymapp/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrUsernameTaken        = errors.New("username is already in use")
	ErrStudentHasNoPhoto    = errors.New("student has no photo")
	ErrPhotoUploadURLError  = errors.New("failed to generate photo upload URL")
	ErrPhotoDownloadError   = errors.New("failed to generate photo download URL")
	ErrInvalidPhotoType     = errors.New("invalid or missing image content type")
)

// ValidationError marks input problems caught before any store call.
// The message names the offending field so the caller can surface it inline.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreateStudentInput carries the fields accepted when registering a student.
// Password is optional; a random one is generated when empty.
type CreateStudentInput struct {
	Name         string
	Age          int
	Goal         string
	MedicalNotes string
	Active       *bool
	Username     string
	Password     string
}

// --- Service Interface ---
type StudentService interface {
	ListStudents(ctx context.Context) ([]domain.Student, error)
	GetStudentByID(ctx context.Context, studentID primitive.ObjectID) (*domain.Student, error)
	CreateStudent(ctx context.Context, ownerID primitive.ObjectID, input CreateStudentInput) (*domain.Student, error)
	UpdateStudent(ctx context.Context, studentID primitive.ObjectID, update domain.StudentUpdate) (*domain.Student, error)
	DeleteStudent(ctx context.Context, studentID primitive.ObjectID) error
	ToggleStudentStatus(ctx context.Context, studentID primitive.ObjectID) (*domain.Student, error)

	// Photo handling via presigned object storage URLs.
	RequestPhotoUploadURL(ctx context.Context, studentID primitive.ObjectID, contentType string) (*PhotoUploadURLResponse, error)
	ConfirmPhotoUpload(ctx context.Context, studentID primitive.ObjectID, objectKey string) (*domain.Student, error)
	GetPhotoDownloadURL(ctx context.Context, studentID primitive.ObjectID) (string, error)
}

// PhotoUploadURLResponse carries a presigned PUT URL and the object key the
// caller must report back on confirm.
type PhotoUploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Implementation ---

// studentService implements the StudentService interface.
type studentService struct {
	studentRepo repository.StudentRepository
	fileStorage storage.FileStorage
}

// NewStudentService creates a new instance of studentService.
func NewStudentService(studentRepo repository.StudentRepository, fileStorage storage.FileStorage) StudentService {
	return &studentService{
		studentRepo: studentRepo,
		fileStorage: fileStorage,
	}
}

// passwordChars matches the original roster tool: uppercase, lowercase, digits.
const passwordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratePassword returns a random 8-character alphanumeric password.
func GeneratePassword() string {
	b := make([]byte, 8)
	for i := range b {
		b[i] = passwordChars[rand.Intn(len(passwordChars))]
	}
	return string(b)
}

// validateStudentInput checks the create-form invariants before any store call.
func validateStudentInput(input CreateStudentInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if input.Age < 12 || input.Age > 120 {
		return &ValidationError{Field: "age", Message: "age must be between 12 and 120"}
	}
	if strings.TrimSpace(input.Goal) == "" {
		return &ValidationError{Field: "goal", Message: "goal is required"}
	}
	if strings.TrimSpace(input.Username) == "" {
		return &ValidationError{Field: "username", Message: "username is required"}
	}
	return nil
}

// ListStudents returns the roster ordered by creation time, newest first.
func (s *studentService) ListStudents(ctx context.Context) ([]domain.Student, error) {
	return s.studentRepo.List(ctx)
}

// GetStudentByID retrieves a single student.
func (s *studentService) GetStudentByID(ctx context.Context, studentID primitive.ObjectID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// CreateStudent validates the input and registers a new student owned by
// the given admin. When no password is supplied a random 8-character
// alphanumeric one is generated.
func (s *studentService) CreateStudent(ctx context.Context, ownerID primitive.ObjectID, input CreateStudentInput) (*domain.Student, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create a student")
	}
	if err := validateStudentInput(input); err != nil {
		return nil, err
	}

	password := input.Password
	if password == "" {
		password = GeneratePassword()
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	student := &domain.Student{
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(input.Name),
		Age:          input.Age,
		Goal:         input.Goal,
		MedicalNotes: strings.TrimSpace(input.MedicalNotes),
		Active:       active,
		Username:     strings.TrimSpace(input.Username),
		Password:     password,
	}

	studentID, err := s.studentRepo.Create(ctx, student)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	student.ID = studentID

	return s.studentRepo.GetByID(ctx, studentID)
}

// UpdateStudent applies a partial update. Fields present in the update are
// re-validated with the create-form rules.
func (s *studentService) UpdateStudent(ctx context.Context, studentID primitive.ObjectID, update domain.StudentUpdate) (*domain.Student, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if update.Age != nil && (*update.Age < 12 || *update.Age > 120) {
		return nil, &ValidationError{Field: "age", Message: "age must be between 12 and 120"}
	}
	if update.Goal != nil && strings.TrimSpace(*update.Goal) == "" {
		return nil, &ValidationError{Field: "goal", Message: "goal is required"}
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		return nil, &ValidationError{Field: "username", Message: "username is required"}
	}

	student, err := s.studentRepo.Update(ctx, studentID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return student, nil
}

// DeleteStudent hard-deletes the student record. Workouts and history are
// left in place; history reads fall back to placeholder labels.
func (s *studentService) DeleteStudent(ctx context.Context, studentID primitive.ObjectID) error {
	err := s.studentRepo.Delete(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	return nil
}

// ToggleStudentStatus flips the active flag. Two toggles return the
// student to its original state.
func (s *studentService) ToggleStudentStatus(ctx context.Context, studentID primitive.ObjectID) (*domain.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	flipped := !student.Active
	return s.UpdateStudent(ctx, studentID, domain.StudentUpdate{Active: &flipped})
}

// === Photo handling ===

// RequestPhotoUploadURL generates a presigned URL for uploading a student photo.
func (s *studentService) RequestPhotoUploadURL(ctx context.Context, studentID primitive.ObjectID, contentType string) (*PhotoUploadURLResponse, error) {
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, ErrInvalidPhotoType
	}

	// Verify the student exists before handing out a URL.
	if _, err := s.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}

	fileExtension := ""
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 {
		fileExtension = parts[1]
	}
	objectKey := path.Join("photos", studentID.Hex(), fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension))

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrPhotoUploadURLError
	}

	return &PhotoUploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmPhotoUpload stores the uploaded object key on the student record.
// Called after the client has PUT the file to the presigned URL. The
// previous photo object, if any, is removed from storage.
func (s *studentService) ConfirmPhotoUpload(ctx context.Context, studentID primitive.ObjectID, objectKey string) (*domain.Student, error) {
	if objectKey == "" {
		return nil, errors.New("object key is required")
	}

	student, err := s.GetStudentByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	previousKey := student.PhotoKey

	if err := s.studentRepo.SetPhotoKey(ctx, studentID, objectKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	if previousKey != "" && previousKey != objectKey {
		// Best-effort cleanup; a stale object is not worth failing the request.
		_ = s.fileStorage.DeleteObject(ctx, previousKey)
	}

	return s.studentRepo.GetByID(ctx, studentID)
}

// GetPhotoDownloadURL generates a temporary URL for viewing the student's photo.
func (s *studentService) GetPhotoDownloadURL(ctx context.Context, studentID primitive.ObjectID) (string, error) {
	student, err := s.GetStudentByID(ctx, studentID)
	if err != nil {
		return "", err
	}
	if student.PhotoKey == "" {
		return "", ErrStudentHasNoPhoto
	}

	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, student.PhotoKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", ErrPhotoDownloadError
	}
	return downloadURL, nil
}
