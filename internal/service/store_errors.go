package service

import (
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/school-tests-api/internal/validation"
	appErrors "github.com/noah-isme/school-tests-api/pkg/errors"
)

var wireNames = map[string]string{
	"id":               "_id",
	"is_admin":         "isAdmin",
	"test_type":        "testType",
	"test_date":        "testDate",
	"additional_notes": "additionalNotes",
	"created_at":       "createdAt",
}

const duplicateTestConstraint = "tests_subject_test_date_key"

func errDuplicateTest() error {
	return appErrors.Clone(appErrors.ErrConflict, "Test already exists")
}

// storeError turns integrity violations into client errors naming the
// offending field. Anything else is internal.
func storeError(err error, message string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint == duplicateTestConstraint {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "Test already exists")
	}
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		msg := appErrors.ErrInvalidData.Message + ": '" + constraintField(pqErr) + "'"
		return appErrors.Wrap(err, appErrors.ErrInvalidData.Code, appErrors.ErrInvalidData.Status, msg)
	}
	return appErrors.Internal(err, message)
}

func constraintField(e *pq.Error) string {
	column := e.Column
	if column == "" {
		column = strings.TrimPrefix(e.Constraint, e.Table+"_")
		for _, suffix := range []string{"_key", "_check", "_fkey", "_not_null"} {
			column = strings.TrimSuffix(column, suffix)
		}
		if column == "pkey" {
			column = "id"
		}
	}
	if column == "" {
		return "unknown"
	}
	if wire, ok := wireNames[column]; ok {
		return wire
	}
	return column
}

// validationError maps a pipeline failure to an API error.
func validationError(err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return appErrors.Wrap(fe, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fe.Message)
	}
	return appErrors.Internal(err, "validate payload")
}

func invalid(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}
