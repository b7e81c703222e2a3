package validation

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipelineStopsAtFirstFailure(t *testing.T) {
	var ran []string
	step := func(field string, fail bool) Step {
		return Step{Field: field, Check: func(context.Context, Payload) error {
			ran = append(ran, field)
			if fail {
				return fieldErr(field, field+" failed")
			}
			return nil
		}}
	}
	pl := Pipeline{step("a", false), step("b", true), step("c", true)}

	err := pl.Run(context.Background(), ModeCreate, Payload{})
	assert.EqualError(t, err, "b failed")
	assert.Equal(t, []string{"a", "b"}, ran)
}

func TestPipelineUpdateSkipsFalsyFields(t *testing.T) {
	var ran []string
	check := func(field string) Step {
		return Step{Field: field, Check: func(context.Context, Payload) error {
			ran = append(ran, field)
			return nil
		}}
	}
	pl := Pipeline{check("missing"), check("empty"), check("zero"), check("set")}

	err := pl.Run(context.Background(), ModeUpdate, Payload{"empty": "", "zero": float64(0), "set": "x"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"set"}, ran)
}

func TestTruthy(t *testing.T) {
	for _, v := range []interface{}{nil, false, "", float64(0), math.NaN(), 0} {
		assert.False(t, Truthy(v), "%#v", v)
	}
	for _, v := range []interface{}{true, "false", float64(2), []interface{}{}, map[string]interface{}{}} {
		assert.True(t, Truthy(v), "%#v", v)
	}
}
