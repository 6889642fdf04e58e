// Package optional modela campos de PATCH con presencia: no enviado, null o valor.
package optional

import (
	"encoding/json"
	"fmt"
)

// Field: Set=false => no tocar. Set con Value nil => limpiar.
type Field[T any] struct {
	Set   bool
	Value *T
}

func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Apply devuelve el valor resultante de aplicar el patch sobre cur.
func (f Field[T]) Apply(cur *T) *T {
	if !f.Set {
		return cur
	}
	return f.Value
}

// Decode lee key de un body PATCH ya decodificado a map.
func Decode[T any](raw map[string]json.RawMessage, key string) (Field[T], error) {
	v, ok := raw[key]
	if !ok {
		return Field[T]{}, nil
	}
	if string(v) == "null" {
		return Null[T](), nil
	}
	var out T
	if err := json.Unmarshal(v, &out); err != nil {
		return Field[T]{}, fmt.Errorf("%s has an invalid value", key)
	}
	return Of(out), nil
}
