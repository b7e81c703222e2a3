package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	UpdateFields(ctx context.Context, id string, fields *models.StudentFields) error
	SetTests(ctx context.Context, id string, tests models.Refs) error
	Delete(ctx context.Context, id string) error
}

type studentTestsLookup interface {
	FindByStudent(ctx context.Context, studentID string) ([]models.Test, error)
}

// StudentService implements student account management.
type StudentService struct {
	repo       studentRepository
	tests      studentTestsLookup
	sync       *ReferenceSync
	validator  *validation.StudentValidator
	cache      *CacheService
	logger     *zap.Logger
	bcryptCost int
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, tests studentTestsLookup, sync *ReferenceSync, validator *validation.StudentValidator, cache *CacheService, logger *zap.Logger, bcryptCost int) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.MinCost
	}
	return &StudentService{repo: repo, tests: tests, sync: sync, validator: validator, cache: cache, logger: logger, bcryptCost: bcryptCost}
}

// Signup creates a student. Listed tests get the new student mirrored.
func (s *StudentService) Signup(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	fields, err := s.validator.Validate(ctx, validation.ModeCreate, payload, nil)
	if err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureUnique(ctx, fields, ""); err != nil {
		return nil, err
	}

	student := &models.Student{
		Username: *fields.Username,
		Email:    fields.Email,
		IsAdmin:  fields.IsAdmin != nil && *fields.IsAdmin,
	}
	if fields.Password != nil {
		hash, err := s.hash(*fields.Password)
		if err != nil {
			return nil, err
		}
		student.Password = &hash
	}

	for _, id := range fields.Tests {
		student.Tests = student.Tests.Add(id)
	}

	s.logger.Debug("creating student", zap.String("username", student.Username))
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, storeError(err, "failed to create student")
	}
	if len(student.Tests) > 0 {
		if err := s.sync.EnrollStudent(ctx, student, student.Tests); err != nil {
			return nil, err
		}
		s.cache.Invalidate(ctx, testCachePattern)
	}
	return student, nil
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, actor *models.Student, id string) (*models.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

// Update applies a partial change. A tests list replaces the student's
// enrollments and is mirrored onto the affected tests.
func (s *StudentService) Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := s.validator.Validate(ctx, validation.ModeUpdate, payload, current)
	if err != nil {
		return nil, validationError(err)
	}
	if err := s.ensureUnique(ctx, fields, current.ID); err != nil {
		return nil, err
	}
	if fields.IsAdmin != nil && *fields.IsAdmin && fields.Password == nil && !current.HasPassword() {
		return nil, invalid("Invalid 'password' param (must be > 5 char)")
	}
	if fields.Password != nil {
		hash, err := s.hash(*fields.Password)
		if err != nil {
			return nil, err
		}
		fields.Password = &hash
	}

	s.logger.Debug("updating student", zap.String("username", current.Username))
	if err := s.repo.UpdateFields(ctx, current.ID, fields); err != nil {
		return nil, storeError(err, "failed to update student")
	}

	if fields.HasTests {
		added, removed := diffRefs(current.Tests, fields.Tests)
		if err := s.sync.WithdrawStudent(ctx, current, removed); err != nil {
			return nil, err
		}
		if err := s.sync.EnrollStudent(ctx, current, added); err != nil {
			return nil, err
		}
		if err := s.repo.SetTests(ctx, current.ID, current.Tests); err != nil {
			return nil, storeError(err, "failed to store student tests")
		}
		s.cache.Invalidate(ctx, testCachePattern)
	}

	return s.find(ctx, current.ID)
}

// Delete removes a student after pulling it from every test. selfDeleted
// reports whether the actor deleted their own account.
func (s *StudentService) Delete(ctx context.Context, actor *models.Student, id string) (selfDeleted bool, err error) {
	if err := requireAdmin(actor); err != nil {
		return false, err
	}
	student, err := s.find(ctx, id)
	if err != nil {
		return false, err
	}

	tests, err := s.tests.FindByStudent(ctx, student.ID)
	if err != nil {
		return false, appErrors.Internal(err, "failed to load student tests")
	}
	if err := s.sync.DetachStudent(ctx, student, tests); err != nil {
		return false, err
	}

	s.logger.Debug("deleting student", zap.String("username", student.Username))
	if err := s.repo.Delete(ctx, student.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "Student with given _id doesn't exist")
		}
		return false, storeError(err, "failed to delete student")
	}
	if len(tests) > 0 {
		s.cache.Invalidate(ctx, testCachePattern)
	}
	return student.ID == actor.ID, nil
}

func (s *StudentService) find(ctx context.Context, id string) (*models.Student, error) {
	if !validation.IsID(id) {
		return nil, invalid("Given _id is invalid")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Student with given _id doesn't exist")
		}
		return nil, appErrors.Internal(err, "failed to fetch student")
	}
	return student, nil
}

func (s *StudentService) ensureUnique(ctx context.Context, fields *models.StudentFields, excludeID string) error {
	if fields.Username != nil {
		exists, err := s.repo.ExistsByUsername(ctx, *fields.Username, excludeID)
		if err != nil {
			return appErrors.Internal(err, "failed to check username")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "User with given 'username' already exists")
		}
	}
	if fields.Email != nil {
		exists, err := s.repo.ExistsByEmail(ctx, *fields.Email, excludeID)
		if err != nil {
			return appErrors.Internal(err, "failed to check email")
		}
		if exists {
			return appErrors.Clone(appErrors.ErrConflict, "User with given 'email' already exists")
		}
	}
	return nil
}

func (s *StudentService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", appErrors.Internal(err, "failed to hash password")
	}
	return string(hash), nil
}
