package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/school-tests-api/internal/models"
)

type studentRefStore interface {
	AddTest(ctx context.Context, studentID, testID string) error
	RemoveTest(ctx context.Context, studentID, testID string) error
}

type testRefStore interface {
	AddStudent(ctx context.Context, testID, studentID string) error
	RemoveStudent(ctx context.Context, testID, studentID string) error
}

// ReferenceSync keeps Student.tests and Test.students symmetric. Each method
// edits the in-memory owner record, then writes the mirror side one record
// at a time, stopping at the first failure. Already written mirrors are not
// rolled back. Persisting the owner record is left to the caller.
type ReferenceSync struct {
	students studentRefStore
	tests    testRefStore
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewReferenceSync constructs a ReferenceSync.
func NewReferenceSync(students studentRefStore, tests testRefStore, metrics *MetricsService, logger *zap.Logger) *ReferenceSync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceSync{students: students, tests: tests, metrics: metrics, logger: logger}
}

// Enroll adds studentIDs to a test that is about to be created and pushes
// the test id onto each student.
func (r *ReferenceSync) Enroll(ctx context.Context, test *models.Test, studentIDs models.Refs) error {
	for _, id := range studentIDs {
		test.Students = test.Students.Add(id)
	}
	for _, id := range test.Students {
		r.logger.Debug("pushing test to student", zap.String("test_id", test.ID), zap.String("student_id", id))
		if err := r.students.AddTest(ctx, id, test.ID); err != nil {
			r.metrics.RecordSyncFailure(SyncEnroll)
			return storeError(err, "add test to student")
		}
		r.metrics.RecordSync(SyncEnroll)
	}
	return nil
}

// DetachTest pulls a test that is about to be deleted from every student
// it lists.
func (r *ReferenceSync) DetachTest(ctx context.Context, test *models.Test) error {
	for _, id := range test.Students {
		r.logger.Debug("pulling test from student", zap.String("test_id", test.ID), zap.String("student_id", id))
		if err := r.students.RemoveTest(ctx, id, test.ID); err != nil {
			r.metrics.RecordSyncFailure(SyncDetach)
			return storeError(err, "remove test from student")
		}
		r.metrics.RecordSync(SyncDetach)
	}
	return nil
}

// DetachStudent pulls a student that is about to be deleted from tests.
func (r *ReferenceSync) DetachStudent(ctx context.Context, student *models.Student, tests []models.Test) error {
	for i := range tests {
		test := &tests[i]
		r.logger.Debug("pulling student from test", zap.String("test_id", test.ID), zap.String("student_id", student.ID))
		test.Students = test.Students.Remove(student.ID)
		if err := r.tests.RemoveStudent(ctx, test.ID, student.ID); err != nil {
			r.metrics.RecordSyncFailure(SyncDetach)
			return storeError(err, "remove student from test")
		}
		student.Tests = student.Tests.Remove(test.ID)
		r.metrics.RecordSync(SyncDetach)
	}
	return nil
}

// EnrollStudent adds testIDs to a student and pushes the student id onto
// each test.
func (r *ReferenceSync) EnrollStudent(ctx context.Context, student *models.Student, testIDs models.Refs) error {
	for _, id := range testIDs {
		student.Tests = student.Tests.Add(id)
		r.logger.Debug("pushing student to test", zap.String("test_id", id), zap.String("student_id", student.ID))
		if err := r.tests.AddStudent(ctx, id, student.ID); err != nil {
			r.metrics.RecordSyncFailure(SyncEnroll)
			return storeError(err, "add student to test")
		}
		r.metrics.RecordSync(SyncEnroll)
	}
	return nil
}

// WithdrawStudent removes testIDs from a student and pulls the student id
// from each test.
func (r *ReferenceSync) WithdrawStudent(ctx context.Context, student *models.Student, testIDs models.Refs) error {
	for _, id := range testIDs {
		student.Tests = student.Tests.Remove(id)
		r.logger.Debug("pulling student from test", zap.String("test_id", id), zap.String("student_id", student.ID))
		if err := r.tests.RemoveStudent(ctx, id, student.ID); err != nil {
			r.metrics.RecordSyncFailure(SyncWithdraw)
			return storeError(err, "remove student from test")
		}
		r.metrics.RecordSync(SyncWithdraw)
	}
	return nil
}

// Asymmetry is an edge present on only one side.
type Asymmetry struct {
	StudentID string `json:"studentId"`
	TestID    string `json:"testId"`
	// ListedBy is "student" when only Student.tests holds the edge and
	// "test" when only Test.students does.
	ListedBy string `json:"listedBy"`
}

// Asymmetries returns every one-sided reference, sorted by student then test.
func Asymmetries(students []models.Student, tests []models.Test) []Asymmetry {
	byStudent := make(map[string]models.Refs, len(students))
	for _, s := range students {
		byStudent[s.ID] = s.Tests
	}
	byTest := make(map[string]models.Refs, len(tests))
	for _, t := range tests {
		byTest[t.ID] = t.Students
	}

	var out []Asymmetry
	for _, s := range students {
		for _, testID := range s.Tests {
			if !byTest[testID].Contains(s.ID) {
				out = append(out, Asymmetry{StudentID: s.ID, TestID: testID, ListedBy: "student"})
			}
		}
	}
	for _, t := range tests {
		for _, studentID := range t.Students {
			if !byStudent[studentID].Contains(t.ID) {
				out = append(out, Asymmetry{StudentID: studentID, TestID: t.ID, ListedBy: "test"})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentID != out[j].StudentID {
			return out[i].StudentID < out[j].StudentID
		}
		return out[i].TestID < out[j].TestID
	})
	return out
}

// diffRefs returns the ids only in next and the ids only in prev.
func diffRefs(prev, next models.Refs) (added, removed models.Refs) {
	for _, id := range next {
		if !prev.Contains(id) {
			added = added.Add(id)
		}
	}
	for _, id := range prev {
		if !next.Contains(id) {
			removed = removed.Add(id)
		}
	}
	return added, removed
}
