package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"gymapp/internal/domain"
	"gymapp/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAdminAlreadyExists = errors.New("admin with this email already exists")
	// ErrAuthenticationFailed is deliberately generic: callers must not be
	// able to tell an unknown user from a wrong password.
	ErrAuthenticationFailed = errors.New("incorrect username or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// --- Service Interface ---
type AuthService interface {
	// Admin accounts (profiles).
	RegisterAdmin(ctx context.Context, name, email, password string) (*domain.Admin, error)
	LoginAdmin(ctx context.Context, email, password string) (token string, admin *domain.Admin, err error)

	// Student login compares username and password against the student
	// record itself. A mismatch anywhere is the same negative outcome.
	LoginStudent(ctx context.Context, username, password string) (token string, profile *domain.StudentProfile, err error)

	// IsActiveStudent reports whether the student exists and is active.
	IsActiveStudent(ctx context.Context, studentID string) (bool, error)

	GetJWTSecret() string
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	adminRepo     repository.AdminRepository
	studentRepo   repository.StudentRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(adminRepo repository.AdminRepository, studentRepo repository.StudentRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		adminRepo:     adminRepo,
		studentRepo:   studentRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// RegisterAdmin handles new admin registration.
func (s *authService) RegisterAdmin(ctx context.Context, name, email, password string) (*domain.Admin, error) {
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password cannot be empty")
	}

	// Check if the email is already taken.
	_, err := s.adminRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrAdminAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	admin := &domain.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         domain.RoleAdmin,
	}

	adminID, err := s.adminRepo.Create(ctx, admin)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAdminAlreadyExists
		}
		return nil, err
	}
	admin.ID = adminID

	admin.PasswordHash = ""
	return admin, nil
}

// LoginAdmin handles admin authentication and JWT generation.
func (s *authService) LoginAdmin(ctx context.Context, email, password string) (token string, admin *domain.Admin, err error) {
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	admin, err = s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err = s.generateJWT(admin.ID.Hex(), domain.RoleAdmin)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	admin.PasswordHash = ""
	return token, admin, nil
}

// LoginStudent authenticates against the student record's own credentials.
// The stored password is compared as-is; an unknown username and a wrong
// password both map to ErrAuthenticationFailed.
func (s *authService) LoginStudent(ctx context.Context, username, password string) (string, *domain.StudentProfile, error) {
	if username == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	student, err := s.studentRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		// Transport/store failures are reported distinctly.
		return "", nil, err
	}

	if subtle.ConstantTimeCompare([]byte(student.Password), []byte(password)) != 1 {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(student.ID.Hex(), domain.RoleStudent)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	profile := &domain.StudentProfile{
		ID:           student.ID,
		Name:         student.Name,
		Username:     student.Username,
		Age:          student.Age,
		Goal:         student.Goal,
		MedicalNotes: student.MedicalNotes,
	}
	return token, profile, nil
}

// IsActiveStudent reports whether the student exists and has active = true.
func (s *authService) IsActiveStudent(ctx context.Context, studentID string) (bool, error) {
	id, err := parseObjectID(studentID)
	if err != nil {
		return false, err
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return student.Active, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given subject.
func (s *authService) generateJWT(subjectID string, role domain.Role) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "gymapp",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
