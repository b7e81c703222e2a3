package validation

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrInvalidDate is returned by ParseDate for unparseable input.
var ErrInvalidDate = errors.New("invalid date")

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
}

// ParseDate accepts ISO 8601 style strings, US style MM/DD/YYYY and
// numbers as Unix milliseconds. Layouts without a zone are read in loc.
func ParseDate(v interface{}, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return time.Time{}, ErrInvalidDate
		}
		return time.UnixMilli(int64(t)).In(loc), nil
	case int64:
		return time.UnixMilli(t).In(loc), nil
	case int:
		return time.UnixMilli(int64(t)).In(loc), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range zonedLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		for _, layout := range localLayouts {
			if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
				return parsed, nil
			}
		}
	}
	return time.Time{}, ErrInvalidDate
}

// DayBounds returns local midnight and 23:59:59 of the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, 0, t.Location())
	return start, end
}
