package models

import "time"

// Student is a registered student. Admin students can log in and manage
// every record.
type Student struct {
	ID        string    `db:"id" json:"_id"`
	Username  string    `db:"username" json:"username"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Password  *string   `db:"password" json:"password,omitempty"`
	IsAdmin   bool      `db:"is_admin" json:"isAdmin"`
	Tests     Refs      `db:"tests" json:"tests"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// HasPassword reports whether a password hash is stored.
func (s *Student) HasPassword() bool {
	return s.Password != nil && *s.Password != ""
}

// StudentFields is a validated student payload. Nil fields were not supplied
// and must be left untouched.
type StudentFields struct {
	Username *string
	Email    *string
	IsAdmin  *bool
	Password *string
	Tests    Refs
	HasTests bool
}

// StudentPayload documents the accepted student request body.
type StudentPayload struct {
	Username string   `json:"username" example:"anna"`
	Email    string   `json:"email,omitempty" example:"anna@school.test"`
	IsAdmin  bool     `json:"isAdmin"`
	Password string   `json:"password,omitempty"`
	Tests    []string `json:"tests"`
}
