package validation

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// IsID reports whether v is a well formed record id.
func IsID(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// idList accepts an array, or a string holding a JSON array when allowString
// is set. ok is false for anything else.
func idList(v interface{}, allowString bool) ([]interface{}, bool) {
	switch t := v.(type) {
	case []interface{}:
		return t, true
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case string:
		if !allowString {
			return nil, false
		}
		var parsed []interface{}
		if err := json.Unmarshal([]byte(t), &parsed); err != nil {
			return nil, false
		}
		return parsed, true
	default:
		return nil, false
	}
}

// checkRefs validates every entry syntactically first, then checks existence
// one id at a time, stopping at the first missing record.
func checkRefs(ctx context.Context, ids []interface{}, exists ExistsFunc, field, invalid string) error {
	for _, id := range ids {
		if !IsID(id) {
			return fieldErr(field, invalid)
		}
	}
	for _, id := range ids {
		ok, err := exists(ctx, id.(string))
		if err != nil {
			return err
		}
		if !ok {
			return fieldErr(field, invalid)
		}
	}
	return nil
}

func toRefs(ids []interface{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := id.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
