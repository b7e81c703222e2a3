package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/school-tests-api/internal/models"
	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

func studentPayload(username string) validation.Payload {
	return validation.Payload{"isAdmin": false, "username": username, "tests": []interface{}{}}
}

func TestSignupRequiresAdmin(t *testing.T) {
	f := newFixture()
	pupil := f.store.PutStudent(models.Student{Username: "pupil"})

	_, err := f.students.Signup(context.Background(), &pupil, studentPayload("anna"))
	assert.ErrorIs(t, err, appErrors.ErrNotAdmin)

	_, err = f.students.Signup(context.Background(), nil, studentPayload("anna"))
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestSignupWithoutUsernamePersistsNothing(t *testing.T) {
	f := newFixture()
	before, _ := f.store.Counts()

	_, err := f.students.Signup(context.Background(), &f.admin, validation.Payload{"isAdmin": false, "tests": []interface{}{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "Invalid 'username' param", appErrors.FromError(err).Message)
	after, _ := f.store.Counts()
	assert.Equal(t, before, after)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	f := newFixture()
	email := "anna@school.test"
	f.store.PutStudent(models.Student{Username: "anna", Email: &email})

	_, err := f.students.Signup(context.Background(), &f.admin, studentPayload("anna"))
	assert.Equal(t, "User with given 'username' already exists", appErrors.FromError(err).Message)

	p := studentPayload("other")
	p["email"] = email
	_, err = f.students.Signup(context.Background(), &f.admin, p)
	assert.Equal(t, "User with given 'email' already exists", appErrors.FromError(err).Message)
}

func TestSignupHashesAdminPassword(t *testing.T) {
	f := newFixture()
	student, err := f.students.Signup(context.Background(), &f.admin, validation.Payload{
		"isAdmin": "true", "username": "mentor", "password": "long-enough", "tests": []interface{}{},
	})
	require.NoError(t, err)
	require.True(t, student.IsAdmin)
	require.NotNil(t, student.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*student.Password), []byte("long-enough")))

	pupil, err := f.students.Signup(context.Background(), &f.admin, validation.Payload{
		"isAdmin": false, "username": "pupil", "password": "ignored-pass", "tests": []interface{}{},
	})
	require.NoError(t, err)
	assert.Nil(t, pupil.Password)
}

func TestSignupMirrorsTests(t *testing.T) {
	f := newFixture()
	test := f.store.PutTest(models.Test{Subject: "Math", TestType: models.TestWritten})

	p := studentPayload("anna")
	p["tests"] = []interface{}{test.ID}
	student, err := f.students.Signup(context.Background(), &f.admin, p)
	require.NoError(t, err)

	assert.Equal(t, models.Refs{test.ID}, f.student(student.ID).Tests)
	assert.Equal(t, models.Refs{student.ID}, f.test(test.ID).Students)
}

func TestUpdateStudent(t *testing.T) {
	f := newFixture()
	anna := f.store.PutStudent(models.Student{Username: "anna"})

	_, err := f.students.Update(context.Background(), &f.admin, "not-an-id", validation.Payload{})
	assert.Equal(t, "Given _id is invalid", appErrors.FromError(err).Message)

	_, err = f.students.Update(context.Background(), &f.admin, "0b8f6a52-54a4-4d0c-8c1b-3f7e2a9d0999", validation.Payload{})
	assert.Equal(t, "Student with given _id doesn't exist", appErrors.FromError(err).Message)

	updated, err := f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"username": "anna-b", "email": "anna@school.test"})
	require.NoError(t, err)
	assert.Equal(t, "anna-b", updated.Username)
	assert.Equal(t, "anna@school.test", *updated.Email)

	// Keeping the same username is not a conflict with itself.
	_, err = f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"username": "anna-b"})
	assert.NoError(t, err)

	_, err = f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"username": "root"})
	assert.Equal(t, "User with given 'username' already exists", appErrors.FromError(err).Message)
}

func TestUpdatePromotionNeedsPassword(t *testing.T) {
	f := newFixture()
	anna := f.store.PutStudent(models.Student{Username: "anna"})

	_, err := f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"isAdmin": true})
	assert.Equal(t, "Invalid 'password' param (must be > 5 char)", appErrors.FromError(err).Message)
	assert.False(t, f.student(anna.ID).IsAdmin)

	updated, err := f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"isAdmin": true, "password": "long-enough"})
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*updated.Password), []byte("long-enough")))
}

func TestUpdateTestsIsMirrored(t *testing.T) {
	f := newFixture()
	math := f.store.PutTest(models.Test{Subject: "Math"})
	history := f.store.PutTest(models.Test{Subject: "History"})
	anna := f.store.PutStudent(models.Student{Username: "anna", Tests: models.Refs{math.ID}})
	f.store.PutTest(models.Test{ID: math.ID, Subject: "Math", Students: models.Refs{anna.ID}})

	updated, err := f.students.Update(context.Background(), &f.admin, anna.ID, validation.Payload{"tests": []interface{}{history.ID}})
	require.NoError(t, err)

	assert.Equal(t, models.Refs{history.ID}, updated.Tests)
	assert.Empty(t, f.test(math.ID).Students)
	assert.Equal(t, models.Refs{anna.ID}, f.test(history.ID).Students)
}

func TestDeleteStudentCascades(t *testing.T) {
	f := newFixture()
	anna := f.store.PutStudent(models.Student{Username: "anna"})
	math := f.store.PutTest(models.Test{Subject: "Math", Students: models.Refs{anna.ID}})
	anna.Tests = models.Refs{math.ID}
	f.store.PutStudent(anna)

	self, err := f.students.Delete(context.Background(), &f.admin, anna.ID)
	require.NoError(t, err)
	assert.False(t, self)
	_, found := f.store.Student(anna.ID)
	assert.False(t, found)
	assert.Empty(t, f.test(math.ID).Students)

	_, err = f.students.Delete(context.Background(), &f.admin, anna.ID)
	assert.Equal(t, "Student with given _id doesn't exist", appErrors.FromError(err).Message)
}

func TestDeleteSelfIsReported(t *testing.T) {
	f := newFixture()
	self, err := f.students.Delete(context.Background(), &f.admin, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, self)
}

func TestGetStudent(t *testing.T) {
	f := newFixture()
	anna := f.store.PutStudent(models.Student{Username: "anna"})

	got, err := f.students.Get(context.Background(), &f.admin, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", got.Username)

	_, err = f.students.Get(context.Background(), &anna, anna.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotAdmin)
}
