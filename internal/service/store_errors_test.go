package service

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

func TestStoreErrorTranslatesIntegrityViolations(t *testing.T) {
	cases := []struct {
		err  *pq.Error
		want string
	}{
		{&pq.Error{Code: "23505", Table: "students", Constraint: "students_username_key"}, "Invalid data: 'username'"},
		{&pq.Error{Code: "23514", Table: "tests", Constraint: "tests_test_type_check"}, "Invalid data: 'testType'"},
		{&pq.Error{Code: "23502", Table: "tests", Column: "test_date"}, "Invalid data: 'testDate'"},
		{&pq.Error{Code: "23505", Table: "students", Constraint: "students_pkey"}, "Invalid data: '_id'"},
	}
	for _, tc := range cases {
		err := appErrors.FromError(storeError(tc.err, "op"))
		assert.Equal(t, appErrors.ErrInvalidData.Code, err.Code)
		assert.Equal(t, 400, err.Status)
		assert.Equal(t, tc.want, err.Message)
	}
}

func TestStoreErrorDuplicateTest(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Table: "tests", Constraint: "tests_subject_test_date_key"}
	err := appErrors.FromError(storeError(pqErr, "op"))
	assert.Equal(t, appErrors.ErrConflict.Code, err.Code)
	assert.Equal(t, 400, err.Status)
	assert.Equal(t, "Test already exists", err.Message)
}

func TestStoreErrorOtherwiseInternal(t *testing.T) {
	err := appErrors.FromError(storeError(&pq.Error{Code: "57014"}, "op"))
	assert.Equal(t, appErrors.ErrInternal.Code, err.Code)
	assert.Equal(t, "Unknown error", err.PublicMessage())

	err = appErrors.FromError(storeError(errors.New("conn reset"), "op"))
	assert.Equal(t, 500, err.Status)
}
