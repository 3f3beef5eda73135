package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes three states of a payload field: absent (zero value,
// dropped by omitzero), explicit null, and set.
type Optional[T any] struct {
	set   bool
	valid bool
	value T
}

// Some returns a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, valid: true, value: v}
}

// Null returns an Optional that marshals to JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

func (o Optional[T]) IsZero() bool { return !o.set }

func (o Optional[T]) IsNull() bool { return o.set && !o.valid }

// Get returns the value and whether it is present and non-null.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.valid
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.valid = false
		var zero T
		o.value = zero
		return nil
	}
	if err := json.Unmarshal(b, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}
