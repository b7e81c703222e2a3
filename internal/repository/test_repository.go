package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-tests-api/internal/models"
)

const testColumns = "id, subject, test_type, students, additional_notes, test_date, created_at"

// TestRepository manages persistence for scheduled tests.
type TestRepository struct {
	db *sqlx.DB
}

// NewTestRepository constructs a TestRepository.
func NewTestRepository(db *sqlx.DB) *TestRepository {
	return &TestRepository{db: db}
}

// List returns every test ordered by date.
func (r *TestRepository) List(ctx context.Context) ([]models.Test, error) {
	tests := []models.Test{}
	query := "SELECT " + testColumns + " FROM tests ORDER BY test_date, created_at"
	if err := r.db.SelectContext(ctx, &tests, query); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

// FindByID fetches a test by id. sql.ErrNoRows is returned unwrapped.
func (r *TestRepository) FindByID(ctx context.Context, id string) (*models.Test, error) {
	var test models.Test
	query := "SELECT " + testColumns + " FROM tests WHERE id = $1"
	if err := r.db.GetContext(ctx, &test, query, id); err != nil {
		return nil, err
	}
	return &test, nil
}

// FindFirstBetween returns the earliest test dated within [start, end].
func (r *TestRepository) FindFirstBetween(ctx context.Context, start, end time.Time) (*models.Test, error) {
	var test models.Test
	query := "SELECT " + testColumns + " FROM tests WHERE test_date >= $1 AND test_date <= $2 ORDER BY test_date LIMIT 1"
	if err := r.db.GetContext(ctx, &test, query, start, end); err != nil {
		return nil, err
	}
	return &test, nil
}

// FindByStudent returns every test whose students include studentID.
func (r *TestRepository) FindByStudent(ctx context.Context, studentID string) ([]models.Test, error) {
	tests := []models.Test{}
	query := "SELECT " + testColumns + " FROM tests WHERE $1::uuid = ANY(students) ORDER BY test_date"
	if err := r.db.SelectContext(ctx, &tests, query, studentID); err != nil {
		return nil, fmt.Errorf("find tests by student: %w", err)
	}
	return tests, nil
}

// Exists reports whether a test with id exists.
func (r *TestRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM tests WHERE id = $1", id)
}

// ExistsBySubjectDate reports whether a test with the same subject and date
// exists, optionally excluding an id.
func (r *TestRepository) ExistsBySubjectDate(ctx context.Context, subject string, date time.Time, excludeID string) (bool, error) {
	query := "SELECT 1 FROM tests WHERE subject = $1 AND test_date = $2"
	args := []interface{}{subject, date}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	return r.exists(ctx, query, args...)
}

func (r *TestRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found int
	if err := r.db.GetContext(ctx, &found, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check test: %w", err)
	}
	return true, nil
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, test *models.Test) error {
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	if test.CreatedAt.IsZero() {
		test.CreatedAt = time.Now().UTC()
	}
	if test.Students == nil {
		test.Students = models.Refs{}
	}
	const query = `INSERT INTO tests (id, subject, test_type, students, additional_notes, test_date, created_at)
        VALUES (:id, :subject, :test_type, :students, :additional_notes, :test_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, test); err != nil {
		return fmt.Errorf("create test: %w", err)
	}
	return nil
}

// UpdateFields writes the scalar fields that are set. Students are ignored.
func (r *TestRepository) UpdateFields(ctx context.Context, id string, fields *models.TestFields) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Subject != nil {
		add("subject", *fields.Subject)
	}
	if fields.TestType != nil {
		add("test_type", string(*fields.TestType))
	}
	if fields.TestDate != nil {
		add("test_date", *fields.TestDate)
	}
	if fields.AdditionalNotes != nil {
		add("additional_notes", *fields.AdditionalNotes)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE tests SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update test: %w", err)
	}
	return nil
}

// AddStudent appends studentID to the test's students unless already present.
func (r *TestRepository) AddStudent(ctx context.Context, testID, studentID string) error {
	const query = `UPDATE tests SET students = array_append(students, $2::uuid) WHERE id = $1 AND NOT ($2::uuid = ANY(students))`
	if _, err := r.db.ExecContext(ctx, query, testID, studentID); err != nil {
		return fmt.Errorf("add student to test: %w", err)
	}
	return nil
}

// RemoveStudent pulls studentID from the test's students.
func (r *TestRepository) RemoveStudent(ctx context.Context, testID, studentID string) error {
	const query = `UPDATE tests SET students = array_remove(students, $2::uuid) WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, testID, studentID); err != nil {
		return fmt.Errorf("remove student from test: %w", err)
	}
	return nil
}

// Delete removes a test. sql.ErrNoRows is returned when nothing matched.
func (r *TestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tests WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
