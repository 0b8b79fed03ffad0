// internal/model/optional.go
package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a JSON field that was absent, explicitly null, or
// carried a value. encoding/json only calls UnmarshalJSON for keys that are
// present, so the zero Optional means "absent".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that writes NULL.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero reports an absent field, so `omitzero` drops it when encoding.
func (o Optional[T]) IsZero() bool { return !o.Set }

// Arg returns the value to bind as a SQL parameter (nil for NULL).
func (o Optional[T]) Arg() any {
	if o.Null {
		return nil
	}
	return o.Value
}
