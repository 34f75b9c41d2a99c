package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
)

// maxExactFloat is the largest integer a JSON number decoded as float64 holds exactly.
const maxExactFloat = 1 << 53

// dateLayouts are the ISO-8601 forms accepted for start_date and end_date.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// reader pulls typed values out of a raw field map, collecting violations
// instead of stopping at the first one. A field that fails coercion comes back
// absent so later rules skip it.
type reader struct {
	raw        map[string]any
	violations []domain.FieldViolation
}

func newReader(raw map[string]any) *reader {
	if raw == nil {
		raw = map[string]any{}
	}
	return &reader{raw: raw}
}

func (r *reader) fail(field, msg string) {
	r.violations = append(r.violations, domain.FieldViolation{Field: field, Message: msg})
}

// required records a violation when field is absent or null.
func (r *reader) required(field string) bool {
	v, ok := r.raw[field]
	if !ok || v == nil {
		r.fail(field, "is required")
		return false
	}
	return true
}

// notNull records a violation when field is present but null.
func (r *reader) notNull(field string) {
	if v, ok := r.raw[field]; ok && v == nil {
		r.fail(field, "must not be null")
	}
}

func (r *reader) str(field string) domain.Optional[string] {
	v, ok := r.raw[field]
	if !ok {
		return domain.Optional[string]{}
	}
	if v == nil {
		return domain.Null[string]()
	}
	s, ok := v.(string)
	if !ok {
		r.fail(field, "must be a string")
		return domain.Optional[string]{}
	}
	return domain.Some(s)
}

func (r *reader) integer(field string) domain.Optional[int64] {
	v, ok := r.raw[field]
	if !ok {
		return domain.Optional[int64]{}
	}
	if v == nil {
		return domain.Null[int64]()
	}
	n, ok := toInt64(v)
	if !ok {
		r.fail(field, "must be an integer")
		return domain.Optional[int64]{}
	}
	return domain.Some(n)
}

func (r *reader) boolean(field string) domain.Optional[bool] {
	v, ok := r.raw[field]
	if !ok {
		return domain.Optional[bool]{}
	}
	if v == nil {
		return domain.Null[bool]()
	}
	switch b := v.(type) {
	case bool:
		return domain.Some(b)
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return domain.Some(parsed)
		}
	}
	r.fail(field, "must be a boolean")
	return domain.Optional[bool]{}
}

// datetime parses an ISO-8601 date-time. An empty string is treated as null.
func (r *reader) datetime(field string) domain.Optional[time.Time] {
	s := r.str(field)
	if !s.Present() {
		return domain.Optional[time.Time]{}
	}
	if s.IsNull() {
		return domain.Null[time.Time]()
	}
	raw, _ := s.Value()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Null[time.Time]()
	}
	t, ok := parseDateTime(raw)
	if !ok {
		r.fail(field, "must be an ISO-8601 date-time (YYYY-MM-DDTHH:MM:SS)")
		return domain.Optional[time.Time]{}
	}
	return domain.Some(t)
}

// intList reads a JSON array of integers, dropping repeated ids.
func (r *reader) intList(field string) domain.Optional[[]int64] {
	v, ok := r.raw[field]
	if !ok {
		return domain.Optional[[]int64]{}
	}
	if v == nil {
		return domain.Null[[]int64]()
	}
	items, ok := v.([]any)
	if !ok {
		r.fail(field, "must be a list of integers")
		return domain.Optional[[]int64]{}
	}
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		n, ok := toInt64(item)
		if !ok {
			r.fail(field, "must be a list of integers")
			return domain.Optional[[]int64]{}
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		ids = append(ids, n)
	}
	return domain.Some(ids)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n > maxExactFloat || n < -maxExactFloat {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
