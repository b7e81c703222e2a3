package validation

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/school-tests-api/internal/models"
)

const (
	minPasswordLen = 5
	maxPasswordLen = 256
)

var validate = validator.New()

// StudentValidator checks student payloads.
type StudentValidator struct {
	testExists ExistsFunc
}

// NewStudentValidator returns a validator resolving test ids with testExists.
func NewStudentValidator(testExists ExistsFunc) *StudentValidator {
	return &StudentValidator{testExists: testExists}
}

// Validate runs the student pipeline and normalizes the payload. current is
// the stored record for ModeUpdate and nil for ModeCreate.
func (v *StudentValidator) Validate(ctx context.Context, mode Mode, p Payload, current *models.Student) (*models.StudentFields, error) {
	adminFallback := false
	if current != nil {
		adminFallback = current.IsAdmin
	}

	pipeline := Pipeline{
		{Field: "isAdmin", Check: checkIsAdmin},
		{Field: "username", Check: checkUsername},
		{Field: "email", Check: checkEmail},
		{Field: "password", Check: func(_ context.Context, p Payload) error {
			return checkPassword(resolveIsAdmin(p["isAdmin"], adminFallback), p["password"])
		}},
		{Field: "tests", Check: func(ctx context.Context, p Payload) error {
			ids, ok := idList(p["tests"], false)
			if !ok {
				return fieldErr("tests", "Invalid 'tests' param")
			}
			return checkRefs(ctx, ids, v.testExists, "tests", "Some of the specified 'tests' are invalid")
		}},
	}
	if err := pipeline.Run(ctx, mode, p); err != nil {
		return nil, err
	}
	return studentFields(mode, p, adminFallback), nil
}

// IsAdminValue coerces the accepted isAdmin representations.
func IsAdminValue(v interface{}) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if t == "true" || t == "false" {
			return t == "true", true
		}
	}
	return false, false
}

func resolveIsAdmin(v interface{}, fallback bool) bool {
	if !Truthy(v) {
		return fallback
	}
	admin, _ := IsAdminValue(v)
	return admin
}

func checkIsAdmin(_ context.Context, p Payload) error {
	if _, ok := IsAdminValue(p["isAdmin"]); !ok {
		return fieldErr("isAdmin", "Invalid 'isAdmin' param")
	}
	return nil
}

func checkUsername(_ context.Context, p Payload) error {
	username, ok := p["username"].(string)
	if !ok {
		return fieldErr("username", "Invalid 'username' param")
	}
	if len(username) < 1 {
		return fieldErr("username", "'username' must be at least 1 char")
	}
	return nil
}

func checkEmail(_ context.Context, p Payload) error {
	raw, present := p["email"]
	if !present || raw == nil {
		return nil
	}
	email, ok := raw.(string)
	if !ok {
		return fieldErr("email", "Invalid 'email' param")
	}
	if len(email) < 1 {
		return fieldErr("email", "'email' must be at least 1 char")
	}
	if err := validate.Var(email, "email"); err != nil {
		return fieldErr("email", "Specified 'email' is invalid")
	}
	return nil
}

func checkPassword(isAdmin bool, raw interface{}) error {
	if !isAdmin {
		return nil
	}
	password, ok := raw.(string)
	if !ok || len(password) <= minPasswordLen || len(password) >= maxPasswordLen {
		return fieldErr("password", "Invalid 'password' param (must be > 5 char)")
	}
	return nil
}

// studentFields keeps only the fields an operation may write. Updates drop
// falsy values, so isAdmin can be raised but never lowered through an update.
func studentFields(mode Mode, p Payload, adminFallback bool) *models.StudentFields {
	keep := func(field string) bool {
		if mode == ModeCreate {
			return p[field] != nil
		}
		return Truthy(p[field])
	}

	out := &models.StudentFields{}
	if keep("username") {
		s := p["username"].(string)
		out.Username = &s
	}
	if keep("email") {
		s := p["email"].(string)
		out.Email = &s
	}
	if keep("isAdmin") {
		admin, _ := IsAdminValue(p["isAdmin"])
		if mode == ModeCreate || admin {
			out.IsAdmin = &admin
		}
	}
	if resolveIsAdmin(p["isAdmin"], adminFallback) && keep("password") {
		s := p["password"].(string)
		out.Password = &s
	}
	if keep("tests") {
		ids, _ := idList(p["tests"], false)
		out.Tests = toRefs(ids)
		out.HasTests = true
	}
	return out
}
