package object

import (
	"math"
	"reflect"
)

// Value is any datum a field can hold.
//
// Legal payloads are nil (null), Undefined, bool, the Go integer kinds,
// float64, string, []Value and any Target.
type Value = any

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined is returned when a field is absent along the whole type-link
// chain. It is distinct from nil, which is a stored null.
var Undefined Value = undefined{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v Value) bool {
	_, ok := v.(undefined)
	return ok
}

// IsNil reports whether t is a nil interface or a typed nil pointer.
func IsNil(t Target) bool {
	if t == nil {
		return true
	}
	rv := reflect.ValueOf(t)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// AsTarget returns v as a Target when it holds a non-nil one.
func AsTarget(v Value) (Target, bool) {
	t, ok := v.(Target)
	if !ok || IsNil(t) {
		return nil, false
	}
	return t, true
}

// ToNumber converts numeric payloads to float64.
func ToNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return n, false
		}
		return n, true
	}
	return 0, false
}
