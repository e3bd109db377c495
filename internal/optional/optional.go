// Package optional provides a tri-state JSON field for partial updates:
// a field is either absent from the payload, explicitly null, or set to
// a value. encoding/json only calls UnmarshalJSON for keys present in
// the payload, which is what makes the absent state observable.
package optional

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// Some is a convenience constructor, mainly for tests.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null represents an explicit JSON null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}
