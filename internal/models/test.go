package models

import "time"

// TestType enumerates the kinds of test.
type TestType string

const (
	TestWritten TestType = "written"
	TestOral    TestType = "oral"
)

// Valid reports whether t is a known test type.
func (t TestType) Valid() bool {
	return t == TestWritten || t == TestOral
}

// Test is a scheduled exam and the students sitting it.
type Test struct {
	ID              string    `db:"id" json:"_id"`
	Subject         string    `db:"subject" json:"subject"`
	TestType        TestType  `db:"test_type" json:"testType"`
	Students        Refs      `db:"students" json:"students"`
	AdditionalNotes *string   `db:"additional_notes" json:"additionalNotes,omitempty"`
	TestDate        time.Time `db:"test_date" json:"testDate"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// TestFields is a validated test payload.
type TestFields struct {
	Subject         *string
	TestType        *TestType
	TestDate        *time.Time
	AdditionalNotes *string
	Students        Refs
	HasStudents     bool
}

// TestPayload documents the accepted test request body.
type TestPayload struct {
	Subject         string   `json:"subject" example:"Math"`
	TestType        TestType `json:"testType" example:"written"`
	TestDate        string   `json:"testDate" example:"2024-05-01T09:00:00Z"`
	AdditionalNotes string   `json:"additionalNotes,omitempty"`
	Students        []string `json:"students"`
}
