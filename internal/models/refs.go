package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/lib/pq"
)

// Refs is a set of record ids stored in a uuid[] column.
type Refs []string

// Contains reports whether id is in the set.
func (r Refs) Contains(id string) bool {
	for _, v := range r {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless it is already present.
func (r Refs) Add(id string) Refs {
	if r.Contains(id) {
		return r
	}
	return append(r, id)
}

// Remove drops every occurrence of id.
func (r Refs) Remove(id string) Refs {
	out := make(Refs, 0, len(r))
	for _, v := range r {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Scan implements sql.Scanner.
func (r *Refs) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*r = Refs(arr)
	return nil
}

// Value implements driver.Valuer. An empty set is stored as '{}', not NULL.
func (r Refs) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return pq.StringArray(r).Value()
}

// MarshalJSON always renders an array.
func (r Refs) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(r))
}
