package form

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ValidationError names the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Rule checks a non-null value and returns a message when it is invalid.
type Rule func(v any) string

// Field is one payload field. Date fields are diffed by calendar day.
type Field struct {
	Name     string
	Required bool
	Nullable bool
	Date     bool
	Rules    []Rule
}

// Schema describes the fields of a create or update payload. Fields are
// checked in order and the first failure wins.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldNames returns the schema fields in order.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Partial returns a copy where every field is optional.
func (s Schema) Partial() Schema {
	fields := slices.Clone(s.Fields)
	for i := range fields {
		fields[i].Required = false
	}
	return Schema{Name: s.Name, Fields: fields}
}

// Validate checks every present field of v and that required fields are set.
func (s Schema) Validate(v map[string]any) error {
	for _, f := range s.Fields {
		val, ok := v[f.Name]
		if !ok || isEmpty(val) {
			if f.Required {
				return &ValidationError{Field: f.Name, Message: "es obligatorio"}
			}
			if !ok {
				continue
			}
		}
		if val == nil {
			if f.Nullable {
				continue
			}
			return &ValidationError{Field: f.Name, Message: "no puede ser nulo"}
		}
		for _, rule := range f.Rules {
			if msg := rule(val); msg != "" {
				return &ValidationError{Field: f.Name, Message: msg}
			}
		}
	}
	return nil
}

// Diff computes the dirty patch of submitted against original over the schema
// fields and validates it as a partial update. Only nullable fields are sent
// as null when cleared; other cleared strings are sent empty.
func (s Schema) Diff(original, submitted Values) (Patch, error) {
	nullable := map[string]bool{}
	dates := map[string]bool{}
	for _, f := range s.Fields {
		nullable[f.Name] = f.Nullable
		dates[f.Name] = f.Date
	}
	patch, err := dirtyPatch(original, submitted, s.FieldNames(), dates, func(f string) bool { return nullable[f] })
	if err != nil {
		return nil, err
	}
	if err := s.Partial().Validate(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	}
	return "", false
}

// Length requires a string of lo..hi characters. hi <= 0 means unbounded.
func Length(lo, hi int) Rule {
	return func(v any) string {
		s, ok := asString(v)
		if !ok {
			return "debe ser texto"
		}
		n := utf8.RuneCountInString(s)
		if n < lo {
			if lo == 1 {
				return "es obligatorio"
			}
			return fmt.Sprintf("debe tener al menos %d caracteres", lo)
		}
		if hi > 0 && n > hi {
			return fmt.Sprintf("no puede exceder %d caracteres", hi)
		}
		return ""
	}
}

// MaxLength requires a string of at most max characters.
func MaxLength(n int) Rule {
	return Length(0, n)
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Email(v any) string {
	s, ok := asString(v)
	if !ok || !emailRe.MatchString(s) {
		return "correo electrónico inválido"
	}
	return ""
}

func UUID(v any) string {
	s, ok := asString(v)
	if !ok {
		return "identificador inválido"
	}
	if _, err := uuid.Parse(s); err != nil {
		return "identificador inválido"
	}
	return ""
}

// UUIDs requires a list of UUID strings.
func UUIDs(v any) string {
	switch ids := v.(type) {
	case []string:
		for _, id := range ids {
			if msg := UUID(id); msg != "" {
				return msg
			}
		}
		return ""
	case []any:
		for _, id := range ids {
			if msg := UUID(id); msg != "" {
				return msg
			}
		}
		return ""
	}
	return "debe ser una lista de identificadores"
}

// Date requires a calendar date or RFC 3339 timestamp.
func Date(v any) string {
	switch t := v.(type) {
	case time.Time, *time.Time:
		return ""
	case string:
		if _, ok := parseDate(t); ok {
			return ""
		}
	}
	return "fecha inválida"
}

// OneOf requires the string form of the value to be one of allowed.
func OneOf[T ~string](allowed ...T) Rule {
	return func(v any) string {
		s, ok := asString(v)
		if ok && slices.Contains(allowed, T(s)) {
			return ""
		}
		return "valor inválido"
	}
}

// Positive requires an integer greater than zero.
func Positive(v any) string {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() > 0 {
			return ""
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > 0 {
			return ""
		}
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f > 0 && f == float64(int64(f)) {
			return ""
		}
	}
	return "debe ser un entero mayor que 0"
}

// AsValidationError extracts a *ValidationError from err.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
