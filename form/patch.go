package form

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// NoChangesMessage is shown when a submitted form equals the original record.
const NoChangesMessage = "No hay cambios para guardar"

// ErrNoChanges is returned when no field differs. Callers skip the request.
var ErrNoChanges = errors.New(NoChangesMessage)

// Values are form field values keyed by field name.
type Values map[string]any

// Patch is the minimal set of changed fields. A nil value is an explicit
// clear and marshals to JSON null.
type Patch map[string]any

// Has reports whether field is part of the patch.
func (p Patch) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// IsCleared reports whether field is present as an explicit null.
func (p Patch) IsCleared(field string) bool {
	v, ok := p[field]
	return ok && v == nil
}

const dateLayout = "2006-01-02"

// ComputeDirtyPatch compares submitted against original for each of fields
// and returns the fields that differ. Strings in dateFields are compared by
// UTC calendar day, every other string exactly. Cleared fields become
// explicit nulls.
func ComputeDirtyPatch(original, submitted Values, fields []string, dateFields ...string) (Patch, error) {
	dates := make(map[string]bool, len(dateFields))
	for _, f := range dateFields {
		dates[f] = true
	}
	return dirtyPatch(original, submitted, fields, dates, func(string) bool { return true })
}

func dirtyPatch(original, submitted Values, fields []string, dates map[string]bool, nullOnClear func(string) bool) (Patch, error) {
	patch := Patch{}
	for _, f := range fields {
		before, after := normalize(original[f], dates[f]), normalize(submitted[f], dates[f])
		if equal(before, after) {
			continue
		}
		if after == nil {
			if nullOnClear(f) {
				patch[f] = nil
			} else {
				patch[f] = ""
			}
			continue
		}
		patch[f] = outgoing(submitted[f])
	}
	if len(patch) == 0 {
		return nil, ErrNoChanges
	}
	return patch, nil
}

// normalize maps empty values to nil and time values to their UTC calendar
// day. Strings are reduced to a day only when date is set.
func normalize(v any, date bool) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		if date {
			if d, ok := parseDate(t); ok {
				return d
			}
		}
		return t
	case *string:
		if t == nil {
			return nil
		}
		return normalize(*t, date)
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return t.UTC().Format(dateLayout)
	case *time.Time:
		if t == nil {
			return nil
		}
		return normalize(*t, date)
	case fmt.Stringer:
		return normalize(t.String(), date)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return nil
		}
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface(), date)
	}
	return v
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// outgoing converts a submitted value to what is sent on the wire.
func outgoing(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(dateLayout)
	case *time.Time:
		return t.UTC().Format(dateLayout)
	case *string:
		return *t
	}
	return v
}

// parseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// UTC calendar day.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(dateLayout) || s[4] != '-' || s[7] != '-' {
		return "", false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC().Format(dateLayout), true
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t.Format(dateLayout), true
	}
	return "", false
}

// DateOnly returns the calendar day of s, or s unchanged when it is not a
// date.
func DateOnly(s string) string {
	if d, ok := parseDate(s); ok {
		return d
	}
	return s
}
