package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
	"github.com/noah-isme/school-tests-api/pkg/export"
)

type testRepository interface {
	List(ctx context.Context) ([]models.Test, error)
	FindByID(ctx context.Context, id string) (*models.Test, error)
	FindFirstBetween(ctx context.Context, start, end time.Time) (*models.Test, error)
	ExistsBySubjectDate(ctx context.Context, subject string, date time.Time, excludeID string) (bool, error)
	Create(ctx context.Context, test *models.Test) error
	UpdateFields(ctx context.Context, id string, fields *models.TestFields) error
	Delete(ctx context.Context, id string) error
}

// TestService implements scheduled test management.
type TestService struct {
	repo      testRepository
	sync      *ReferenceSync
	validator *validation.TestValidator
	cache     *CacheService
	logger    *zap.Logger
	loc       *time.Location
}

// NewTestService constructs a TestService. Day lookups use loc.
func NewTestService(repo testRepository, sync *ReferenceSync, validator *validation.TestValidator, cache *CacheService, logger *zap.Logger, loc *time.Location) *TestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &TestService{repo: repo, sync: sync, validator: validator, cache: cache, logger: logger, loc: loc}
}

// List returns every test.
func (s *TestService) List(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	if s.cache.Get(ctx, testListKey, &tests) {
		return tests, nil
	}
	tests, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list tests")
	}
	s.cache.Set(ctx, testListKey, tests)
	return tests, nil
}

// Lookup resolves idOrDate as a test id, or else as a day and returns the
// first test scheduled that day. A nil test with a nil error means nothing
// matched.
func (s *TestService) Lookup(ctx context.Context, idOrDate string) (*models.Test, error) {
	if validation.IsID(idOrDate) {
		return s.cachedLookup(ctx, testIDKey(idOrDate), func() (*models.Test, error) {
			return s.repo.FindByID(ctx, idOrDate)
		})
	}

	day, err := s.validator.CheckDate("date", idOrDate)
	if err != nil {
		return nil, validationError(err)
	}
	start, end := validation.DayBounds(day.In(s.loc))
	return s.cachedLookup(ctx, testDayKey(start), func() (*models.Test, error) {
		return s.repo.FindFirstBetween(ctx, start, end)
	})
}

func (s *TestService) cachedLookup(ctx context.Context, key string, load func() (*models.Test, error)) (*models.Test, error) {
	var cached *models.Test
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	test, err := load()
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to look up test")
		}
		test = nil
	}
	s.cache.Set(ctx, key, test)
	return test, nil
}

// Create validates and stores a test, enrolling the listed students first.
func (s *TestService) Create(ctx context.Context, actor *models.Student, payload validation.Payload) (*models.Test, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	fields, err := s.validator.Validate(ctx, validation.ModeCreate, payload)
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.checkDuplicate(ctx, *fields.Subject, *fields.TestDate, ""); err != nil {
		return nil, err
	}

	test := &models.Test{
		ID:              uuid.NewString(),
		Subject:         *fields.Subject,
		TestType:        *fields.TestType,
		TestDate:        *fields.TestDate,
		AdditionalNotes: fields.AdditionalNotes,
		Students:        models.Refs{},
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.sync.Enroll(ctx, test, fields.Students); err != nil {
		return nil, err
	}

	s.logger.Debug("creating test", zap.String("test_id", test.ID))
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, storeError(err, "failed to create test")
	}
	s.cache.Invalidate(ctx, testCachePattern)
	return test, nil
}

// Update changes scalar fields only; a students list is validated but
// never applied.
func (s *TestService) Update(ctx context.Context, actor *models.Student, id string, payload validation.Payload) (*models.Test, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	test, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := s.validator.Validate(ctx, validation.ModeUpdate, payload)
	if err != nil {
		return nil, validationError(err)
	}
	if fields.Subject != nil || fields.TestDate != nil {
		subject, date := test.Subject, test.TestDate
		if fields.Subject != nil {
			subject = *fields.Subject
		}
		if fields.TestDate != nil {
			date = *fields.TestDate
		}
		if err := s.checkDuplicate(ctx, subject, date, test.ID); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("updating test", zap.String("test_id", test.ID))
	if err := s.repo.UpdateFields(ctx, test.ID, fields); err != nil {
		return nil, storeError(err, "failed to update test")
	}
	s.cache.Invalidate(ctx, testCachePattern)
	return s.find(ctx, test.ID)
}

func (s *TestService) checkDuplicate(ctx context.Context, subject string, date time.Time, excludeID string) error {
	exists, err := s.repo.ExistsBySubjectDate(ctx, subject, date, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check test")
	}
	if exists {
		return errDuplicateTest()
	}
	return nil
}

// Delete pulls the test from its students and removes it.
func (s *TestService) Delete(ctx context.Context, actor *models.Student, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	test, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sync.DetachTest(ctx, test); err != nil {
		return err
	}

	s.logger.Debug("deleting test", zap.String("test_id", test.ID))
	if err := s.repo.Delete(ctx, test.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Test with given _id doesn't exist")
		}
		return storeError(err, "failed to delete test")
	}
	s.cache.Invalidate(ctx, testCachePattern)
	return nil
}

// Export renders the test calendar.
func (s *TestService) Export(ctx context.Context, format export.Format) ([]byte, error) {
	tests, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{Headers: []string{"Date", "Subject", "Type", "Students", "Notes"}}
	for _, t := range tests {
		notes := ""
		if t.AdditionalNotes != nil {
			notes = *t.AdditionalNotes
		}
		data.Rows = append(data.Rows, map[string]string{
			"Date":     t.TestDate.In(s.loc).Format("2006-01-02 15:04"),
			"Subject":  t.Subject,
			"Type":     string(t.TestType),
			"Students": strings.Join(t.Students, " "),
			"Notes":    notes,
		})
	}
	out, err := export.Render(format, data, "Test calendar")
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return out, nil
}

func (s *TestService) find(ctx context.Context, id string) (*models.Test, error) {
	if !validation.IsID(id) {
		return nil, invalid("Given _id is invalid")
	}
	test, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Test with given _id doesn't exist")
		}
		return nil, appErrors.Internal(err, "failed to fetch test")
	}
	return test, nil
}
