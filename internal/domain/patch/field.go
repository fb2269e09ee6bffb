// Package patch models sparse updates: every field of an update payload is either
// present (and carries a value, possibly the zero value) or absent.
package patch

import "encoding/json"

// Field holds an optional update value. The zero Field is absent.
type Field[T any] struct {
	Set   bool
	Value T
}

// Some returns a present Field carrying value.
func Some[T any](value T) Field[T] {
	return Field[T]{Set: true, Value: value}
}

// UnmarshalJSON marks the field present whenever its key appears in the payload,
// including an explicit null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// Apply writes the value into dst when present and reports whether it did.
func (f Field[T]) Apply(dst *T) bool {
	if !f.Set || dst == nil {
		return false
	}
	*dst = f.Value
	return true
}

// Or returns the value when present, otherwise fallback.
func (f Field[T]) Or(fallback T) T {
	if f.Set {
		return f.Value
	}
	return fallback
}
