// Package validation runs ordered field checks over untyped request
// payloads and normalizes them into typed field sets.
package validation

import (
	"context"
	"math"
)

// Payload is a decoded request body.
type Payload map[string]interface{}

// Mode selects which steps run.
type Mode int

const (
	// ModeCreate runs every step.
	ModeCreate Mode = iota
	// ModeUpdate runs a step only when its field is truthy.
	ModeUpdate
)

// FieldError reports the first failed check.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func fieldErr(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// Step checks a single field. Check returns a *FieldError for client
// mistakes and any other error for lookup failures.
type Step struct {
	Field string
	Check func(ctx context.Context, p Payload) error
}

// Pipeline is an ordered list of steps. Run stops at the first failure.
type Pipeline []Step

// Run executes the pipeline against p.
func (pl Pipeline) Run(ctx context.Context, mode Mode, p Payload) error {
	for _, step := range pl {
		if mode == ModeUpdate && !Truthy(p[step.Field]) {
			continue
		}
		if err := step.Check(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Truthy mirrors loose truthiness: nil, false, zero, NaN and "" are falsy.
// Arrays and objects are truthy even when empty.
func Truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// ExistsFunc reports whether a record with id exists.
type ExistsFunc func(ctx context.Context, id string) (bool, error)
