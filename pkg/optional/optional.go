// Package optional distinguishes the three states an updatable field can be
// in: absent from the request (leave the column untouched), explicitly null
// (clear the column), or set to a value.
package optional

import "encoding/json"

type Field[T any] struct {
	present bool
	valid   bool
	value   T
}

// Set returns a field carrying a value.
func Set[T any](v T) Field[T] {
	return Field[T]{present: true, valid: true, value: v}
}

// Clear returns a field that explicitly nulls its target.
func Clear[T any]() Field[T] {
	return Field[T]{present: true}
}

// IsSet reports whether the field appeared in the request at all.
func (f Field[T]) IsSet() bool {
	return f.present
}

// IsNull reports whether the field was an explicit null.
func (f Field[T]) IsNull() bool {
	return f.present && !f.valid
}

// Value returns the carried value and whether one is present.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.present && f.valid
}

// Ptr returns nil for null fields and a pointer to the value otherwise.
// Only meaningful when IsSet is true.
func (f Field[T]) Ptr() *T {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.valid = false
		var zero T
		f.value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.value); err != nil {
		return err
	}
	f.valid = true
	return nil
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || !f.valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
