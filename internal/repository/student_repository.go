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

const studentColumns = "id, username, email, password, is_admin, tests, created_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every student ordered by creation time.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students ORDER BY created_at"
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by id. sql.ErrNoRows is returned unwrapped.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE id = $1"
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUsername fetches a student by username.
func (r *StudentRepository) FindByUsername(ctx context.Context, username string) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE username = $1"
	if err := r.db.GetContext(ctx, &student, query, username); err != nil {
		return nil, err
	}
	return &student, nil
}

// Exists reports whether a student with id exists.
func (r *StudentRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, "SELECT 1 FROM students WHERE id = $1", id)
}

// ExistsByUsername checks username uniqueness, optionally excluding an id.
func (r *StudentRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	return r.existsExcluding(ctx, "username", username, excludeID)
}

// ExistsByEmail checks email uniqueness, optionally excluding an id.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return r.existsExcluding(ctx, "email", email, excludeID)
}

func (r *StudentRepository) existsExcluding(ctx context.Context, column, value, excludeID string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM students WHERE %s = $1", column)
	args := []interface{}{value}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	return r.exists(ctx, query, args...)
}

func (r *StudentRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found int
	if err := r.db.GetContext(ctx, &found, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	if student.Tests == nil {
		student.Tests = models.Refs{}
	}
	const query = `INSERT INTO students (id, username, email, password, is_admin, tests, created_at)
        VALUES (:id, :username, :email, :password, :is_admin, :tests, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// UpdateFields writes the scalar fields that are set. Tests are changed
// through AddTest and RemoveTest only.
func (r *StudentRepository) UpdateFields(ctx context.Context, id string, fields *models.StudentFields) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if fields.Username != nil {
		add("username", *fields.Username)
	}
	if fields.Email != nil {
		add("email", *fields.Email)
	}
	if fields.IsAdmin != nil {
		add("is_admin", *fields.IsAdmin)
	}
	if fields.Password != nil {
		add("password", *fields.Password)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE students SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// AddTest appends testID to the student's tests unless already present.
func (r *StudentRepository) AddTest(ctx context.Context, studentID, testID string) error {
	const query = `UPDATE students SET tests = array_append(tests, $2::uuid) WHERE id = $1 AND NOT ($2::uuid = ANY(tests))`
	if _, err := r.db.ExecContext(ctx, query, studentID, testID); err != nil {
		return fmt.Errorf("add test to student: %w", err)
	}
	return nil
}

// RemoveTest pulls testID from the student's tests.
func (r *StudentRepository) RemoveTest(ctx context.Context, studentID, testID string) error {
	const query = `UPDATE students SET tests = array_remove(tests, $2::uuid) WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, testID); err != nil {
		return fmt.Errorf("remove test from student: %w", err)
	}
	return nil
}

// Delete removes a student. sql.ErrNoRows is returned when nothing matched.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTests replaces the student's tests.
func (r *StudentRepository) SetTests(ctx context.Context, id string, tests models.Refs) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE students SET tests = $1 WHERE id = $2", tests, id); err != nil {
		return fmt.Errorf("set student tests: %w", err)
	}
	return nil
}
