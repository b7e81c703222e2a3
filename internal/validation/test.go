package validation

import (
	"context"
	"time"

	"github.com/noah-isme/school-tests-api/internal/models"
)

// TestValidator checks test payloads.
type TestValidator struct {
	studentExists ExistsFunc
	loc           *time.Location
}

// NewTestValidator returns a validator resolving student ids with
// studentExists. Zone-less dates are read in loc.
func NewTestValidator(studentExists ExistsFunc, loc *time.Location) *TestValidator {
	if loc == nil {
		loc = time.Local
	}
	return &TestValidator{studentExists: studentExists, loc: loc}
}

// Validate runs the test pipeline and normalizes the payload.
func (v *TestValidator) Validate(ctx context.Context, mode Mode, p Payload) (*models.TestFields, error) {
	pipeline := Pipeline{
		{Field: "students", Check: func(ctx context.Context, p Payload) error {
			ids, ok := idList(p["students"], true)
			if !ok {
				return fieldErr("students", "Invalid 'students' param")
			}
			return checkRefs(ctx, ids, v.studentExists, "students", "Some of the specified 'students' are invalid")
		}},
		{Field: "subject", Check: checkSubject},
		{Field: "testDate", Check: func(_ context.Context, p Payload) error {
			return v.checkDate("testDate", p["testDate"])
		}},
		{Field: "testType", Check: checkTestType},
		{Field: "additionalNotes", Check: checkNotes},
	}
	if err := pipeline.Run(ctx, mode, p); err != nil {
		return nil, err
	}
	return v.testFields(mode, p), nil
}

// CheckDate validates a date the way testDate is validated, reporting
// errors against field.
func (v *TestValidator) CheckDate(field string, raw interface{}) (time.Time, error) {
	if err := v.checkDate(field, raw); err != nil {
		return time.Time{}, err
	}
	return ParseDate(raw, v.loc)
}

func (v *TestValidator) checkDate(field string, raw interface{}) error {
	if !Truthy(raw) {
		return fieldErr(field, "Invalid '"+field+"' param")
	}
	if _, err := ParseDate(raw, v.loc); err != nil {
		return fieldErr(field, "Given '"+field+"' is not a valid date")
	}
	return nil
}

func checkSubject(_ context.Context, p Payload) error {
	subject, ok := p["subject"].(string)
	if !ok {
		return fieldErr("subject", "Invalid 'subject' param")
	}
	if len(subject) < 1 {
		return fieldErr("subject", "'subject' must be at least 1 char")
	}
	return nil
}

func checkTestType(_ context.Context, p Payload) error {
	s, _ := p["testType"].(string)
	if !models.TestType(s).Valid() {
		return fieldErr("testType", "Invalid 'testType' param")
	}
	return nil
}

func checkNotes(_ context.Context, p Payload) error {
	raw, present := p["additionalNotes"]
	if !present || raw == nil {
		return nil
	}
	if _, ok := raw.(string); !ok {
		return fieldErr("additionalNotes", "Invalid 'additionalNotes' param")
	}
	return nil
}

func (v *TestValidator) testFields(mode Mode, p Payload) *models.TestFields {
	keep := func(field string) bool {
		if mode == ModeCreate {
			return p[field] != nil
		}
		return Truthy(p[field])
	}

	out := &models.TestFields{}
	if keep("subject") {
		s := p["subject"].(string)
		out.Subject = &s
	}
	if keep("testType") {
		tt := models.TestType(p["testType"].(string))
		out.TestType = &tt
	}
	if keep("testDate") {
		d, _ := ParseDate(p["testDate"], v.loc)
		out.TestDate = &d
	}
	if keep("additionalNotes") {
		s := p["additionalNotes"].(string)
		out.AdditionalNotes = &s
	}
	if keep("students") {
		ids, _ := idList(p["students"], true)
		out.Students = toRefs(ids)
		out.HasStudents = true
	}
	return out
}
