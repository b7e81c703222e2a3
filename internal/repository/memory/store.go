// Package memory is an in-process store with the same semantics as the
// PostgreSQL repositories. Tests use it to observe both sides of every
// reference edit.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/school-tests-api/internal/models"
)

// Store holds students and tests.
type Store struct {
	mu       sync.Mutex
	students map[string]models.Student
	tests    map[string]models.Test

	// BeforeAddTest, when set, runs before every AddTest and aborts it on error.
	BeforeAddTest func(studentID, testID string) error
}

// New returns an empty store.
func New() *Store {
	return &Store{students: map[string]models.Student{}, tests: map[string]models.Test{}}
}

// PutStudent stores s as is, assigning an id when missing.
func (m *Store) PutStudent(s models.Student) models.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.students[s.ID] = s
	return s
}

// PutTest stores t as is, assigning an id when missing.
func (m *Store) PutTest(t models.Test) models.Test {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.tests[t.ID] = t
	return t
}

// Student returns a copy of the stored student.
func (m *Store) Student(id string) (models.Student, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	s.Tests = append(models.Refs{}, s.Tests...)
	return s, ok
}

// Test returns a copy of the stored test.
func (m *Store) Test(id string) (models.Test, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tests[id]
	t.Students = append(models.Refs{}, t.Students...)
	return t, ok
}

// Counts returns the number of stored students and tests.
func (m *Store) Counts() (students, tests int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.students), len(m.tests)
}

// Students exposes the student repository view.
func (m *Store) Students() *Students { return &Students{m} }

// Tests exposes the test repository view.
func (m *Store) Tests() *Tests { return &Tests{m} }

// Students implements the student repository methods.
type Students struct{ s *Store }

func (r *Students) List(_ context.Context) ([]models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Student, 0, len(r.s.students))
	for _, s := range r.s.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *Students) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := r.s.Student(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (r *Students) FindByUsername(_ context.Context, username string) (*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, s := range r.s.students {
		if s.Username == username {
			found := s
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *Students) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.s.Student(id)
	return ok, nil
}

func (r *Students) ExistsByUsername(_ context.Context, username, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, s := range r.s.students {
		if s.Username == username && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Students) ExistsByEmail(_ context.Context, email, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, s := range r.s.students {
		if s.Email != nil && *s.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Students) Create(_ context.Context, s *models.Student) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Tests == nil {
		s.Tests = models.Refs{}
	}
	r.s.PutStudent(*s)
	return nil
}

func (r *Students) UpdateFields(_ context.Context, id string, f *models.StudentFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	s, ok := r.s.students[id]
	if !ok {
		return nil
	}
	if f.Username != nil {
		s.Username = *f.Username
	}
	if f.Email != nil {
		email := *f.Email
		s.Email = &email
	}
	if f.IsAdmin != nil {
		s.IsAdmin = *f.IsAdmin
	}
	if f.Password != nil {
		password := *f.Password
		s.Password = &password
	}
	r.s.students[id] = s
	return nil
}

func (r *Students) SetTests(_ context.Context, id string, tests models.Refs) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.students[id]; ok {
		s.Tests = append(models.Refs{}, tests...)
		r.s.students[id] = s
	}
	return nil
}

func (r *Students) AddTest(_ context.Context, studentID, testID string) error {
	if r.s.BeforeAddTest != nil {
		if err := r.s.BeforeAddTest(studentID, testID); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.students[studentID]; ok {
		s.Tests = s.Tests.Add(testID)
		r.s.students[studentID] = s
	}
	return nil
}

func (r *Students) RemoveTest(_ context.Context, studentID, testID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if s, ok := r.s.students[studentID]; ok {
		s.Tests = s.Tests.Remove(testID)
		r.s.students[studentID] = s
	}
	return nil
}

func (r *Students) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.students, id)
	return nil
}

// Tests implements the test repository methods.
type Tests struct{ s *Store }

func (r *Tests) List(_ context.Context) ([]models.Test, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Test, 0, len(r.s.tests))
	for _, t := range r.s.tests {
		t.Students = append(models.Refs{}, t.Students...)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TestDate.Equal(out[j].TestDate) {
			return out[i].TestDate.Before(out[j].TestDate)
		}
		return out[i].Subject < out[j].Subject
	})
	return out, nil
}

func (r *Tests) FindByID(_ context.Context, id string) (*models.Test, error) {
	t, ok := r.s.Test(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

func (r *Tests) FindFirstBetween(ctx context.Context, start, end time.Time) (*models.Test, error) {
	all, _ := r.List(ctx)
	for _, t := range all {
		if !t.TestDate.Before(start) && !t.TestDate.After(end) {
			found := t
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *Tests) FindByStudent(ctx context.Context, studentID string) ([]models.Test, error) {
	all, _ := r.List(ctx)
	out := []models.Test{}
	for _, t := range all {
		if t.Students.Contains(studentID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Tests) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.s.Test(id)
	return ok, nil
}

func (r *Tests) ExistsBySubjectDate(_ context.Context, subject string, date time.Time, excludeID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tests {
		if id != excludeID && t.Subject == subject && t.TestDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Tests) Create(_ context.Context, t *models.Test) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Students == nil {
		t.Students = models.Refs{}
	}
	r.s.PutTest(*t)
	return nil
}

func (r *Tests) UpdateFields(_ context.Context, id string, f *models.TestFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tests[id]
	if !ok {
		return nil
	}
	if f.Subject != nil {
		t.Subject = *f.Subject
	}
	if f.TestType != nil {
		t.TestType = *f.TestType
	}
	if f.TestDate != nil {
		t.TestDate = *f.TestDate
	}
	if f.AdditionalNotes != nil {
		notes := *f.AdditionalNotes
		t.AdditionalNotes = &notes
	}
	r.s.tests[id] = t
	return nil
}

func (r *Tests) AddStudent(_ context.Context, testID, studentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tests[testID]; ok {
		t.Students = t.Students.Add(studentID)
		r.s.tests[testID] = t
	}
	return nil
}

func (r *Tests) RemoveStudent(_ context.Context, testID, studentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.tests[testID]; ok {
		t.Students = t.Students.Remove(studentID)
		r.s.tests[testID] = t
	}
	return nil
}

func (r *Tests) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tests[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.s.tests, id)
	return nil
}
