package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/session"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

type authStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUsername(ctx context.Context, username string) (*models.Student, error)
}

// AuthConfig defines configuration for session tokens.
type AuthConfig struct {
	JWTSecret string
}

// AuthService issues and resolves session cookies.
type AuthService struct {
	repo      authStudentRepository
	signer    *session.Signer
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authStudentRepository, signer *session.Signer, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, signer: signer, validator: validate, logger: logger, config: config, now: time.Now}
}

// Login checks admin credentials and returns the student with the signed
// cookie value to set. principal is the already resolved session, if any.
func (s *AuthService) Login(ctx context.Context, principal *models.Student, req models.LoginRequest) (*models.Student, string, error) {
	if principal != nil {
		return nil, "", appErrors.ErrAlreadyLoggedIn
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, "", loginValidationError(err)
	}

	student, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "User not found")
		}
		return nil, "", appErrors.Internal(err, "failed to fetch student")
	}
	if !student.IsAdmin {
		return nil, "", appErrors.Clone(appErrors.ErrInvalidCredentials, "User is not admin")
	}
	if !student.HasPassword() {
		s.logger.Error("admin has no password", zap.String("username", student.Username))
		return nil, "", appErrors.ErrAdminWithoutPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*student.Password), []byte(req.Password)); err != nil {
		return nil, "", appErrors.ErrInvalidCredentials
	}

	cookie, err := s.IssueCookie(student)
	if err != nil {
		return nil, "", err
	}
	s.logger.Debug("student logged in", zap.String("username", student.Username))
	return student, cookie, nil
}

func loginValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Password" {
		return invalid("Invalid 'password' param")
	}
	return invalid("Invalid 'username' param")
}

// IssueToken signs a session JWT for student. Tokens carry no expiry; the
// cookie max-age bounds their life.
func (s *AuthService) IssueToken(student *models.Student) (string, error) {
	claims := models.SessionClaims{
		StudentID: student.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", appErrors.Internal(err, "failed to sign token")
	}
	return signed, nil
}

// IssueCookie returns the signed cookie value carrying a fresh token.
func (s *AuthService) IssueCookie(student *models.Student) (string, error) {
	token, err := s.IssueToken(student)
	if err != nil {
		return "", err
	}
	return s.signer.Sign(token), nil
}

// Resolve maps a signed cookie value to its student. Any failure yields
// ErrUnauthorized, wrapping the cause.
func (s *AuthService) Resolve(ctx context.Context, cookie string) (*models.Student, error) {
	if cookie == "" {
		return nil, appErrors.ErrUnauthorized
	}
	raw, err := s.signer.Unsign(cookie)
	if err != nil {
		return nil, unauthorized(err)
	}

	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, unauthorized(err)
	}
	if claims.StudentID == "" {
		return nil, unauthorized(errors.New("token has no subject"))
	}

	student, err := s.repo.FindByID(ctx, claims.StudentID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("resolve session student", zap.String("student_id", claims.StudentID), zap.Error(err))
		}
		return nil, unauthorized(err)
	}
	return student, nil
}

func unauthorized(err error) error {
	return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
}

// requireAdmin gates every mutation on the acting principal.
func requireAdmin(actor *models.Student) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin {
		return appErrors.ErrNotAdmin
	}
	return nil
}
