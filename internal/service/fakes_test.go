package service

import (
	"sort"
	"time"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/repository/memory"
	"github.com/noah-isme/school-tests-api/internal/validation"
)

// fixture wires real services over an in-memory store.
type fixture struct {
	store    *memory.Store
	admin    models.Student
	students *StudentService
	tests    *TestService
	sync     *ReferenceSync
	metrics  *MetricsService
}

func newFixture() *fixture {
	store := memory.New()
	hash := "$2a$04$placeholderplaceholderplaceholderplaceholderpla"
	admin := store.PutStudent(models.Student{Username: "root", IsAdmin: true, Password: &hash})

	metrics := NewMetricsService()
	sync := NewReferenceSync(store.Students(), store.Tests(), metrics, nil)
	studentValidator := validation.NewStudentValidator(store.Tests().Exists)
	testValidator := validation.NewTestValidator(store.Students().Exists, time.UTC)

	return &fixture{
		store:    store,
		admin:    admin,
		sync:     sync,
		metrics:  metrics,
		students: NewStudentService(store.Students(), store.Tests(), sync, studentValidator, nil, nil, 4),
		tests:    NewTestService(store.Tests(), sync, testValidator, nil, nil, time.UTC),
	}
}

func ids(refs models.Refs) []string {
	out := append([]string{}, refs...)
	sort.Strings(out)
	return out
}

func (f *fixture) student(id string) models.Student {
	s, _ := f.store.Student(id)
	return s
}

func (f *fixture) test(id string) models.Test {
	t, _ := f.store.Test(id)
	return t
}
