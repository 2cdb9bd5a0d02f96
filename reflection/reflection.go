// Package reflection provides the direct, non-intercepted structural
// primitives. Handlers use them to delegate to the real target, and
// proxies fall back to them when no handler is registered.
package reflection

import (
	"fmt"

	"github.com/chazu/intercede/object"
)

// Get returns target[key] with the receiver bound to target.
func Get(target object.Target, key string) (object.Value, error) {
	return GetWith(target, key, nil)
}

// GetWith returns target[key]. An accessor runs with its context bound to
// receiver; a nil receiver means target.
func GetWith(target object.Target, key string, receiver object.Target) (object.Value, error) {
	if object.IsNil(target) {
		return nil, fmt.Errorf("get %q: %w", key, object.ErrInvalidTarget)
	}
	if object.IsNil(receiver) {
		receiver = target
	}
	return target.GetField(key, receiver)
}

// Set writes value to target[key] with the receiver bound to target.
func Set(target object.Target, key string, value object.Value) (bool, error) {
	return SetWith(target, key, value, nil)
}

// SetWith writes value to target[key]. A setter runs with its context bound
// to receiver, and a data write lands on receiver rather than target.
func SetWith(target object.Target, key string, value object.Value, receiver object.Target) (bool, error) {
	if object.IsNil(target) {
		return false, fmt.Errorf("set %q: %w", key, object.ErrInvalidTarget)
	}
	if object.IsNil(receiver) {
		receiver = target
	}
	return target.SetField(key, value, receiver)
}

// Has reports whether key exists on target or along its type-link chain.
func Has(target object.Target, key string) (bool, error) {
	if object.IsNil(target) {
		return false, fmt.Errorf("has %q: %w", key, object.ErrInvalidTarget)
	}
	return target.HasField(key)
}

// DeleteField removes key from target. Deleting an absent key succeeds.
func DeleteField(target object.Target, key string) (bool, error) {
	if object.IsNil(target) {
		return false, fmt.Errorf("deleteField %q: %w", key, object.ErrInvalidTarget)
	}
	return target.DeleteField(key)
}

// Construct builds a new instance of target with target as newTarget.
func Construct(target object.Target, args []object.Value) (object.Target, error) {
	return ConstructWith(target, args, nil)
}

// ConstructWith builds a new instance of target whose type-link is taken
// from newTarget. A nil newTarget means target.
func ConstructWith(target object.Target, args []object.Value, newTarget object.Target) (object.Target, error) {
	if object.IsNil(target) {
		return nil, fmt.Errorf("construct: %w", object.ErrInvalidTarget)
	}
	if !target.Constructible() {
		return nil, fmt.Errorf("construct: %w", object.ErrNotConstructible)
	}
	if object.IsNil(newTarget) {
		newTarget = target
	} else if !newTarget.Constructible() {
		return nil, fmt.Errorf("construct: newTarget: %w", object.ErrNotConstructible)
	}
	return target.Construct(args, newTarget)
}

// Apply invokes fn with an explicit this and argument list. Errors raised
// by fn are returned unchanged.
func Apply(fn object.Value, this object.Value, args []object.Value) (object.Value, error) {
	t, ok := object.AsTarget(fn)
	if !ok || !t.Callable() {
		return nil, fmt.Errorf("apply: %w", object.ErrNotCallable)
	}
	return t.Call(this, args)
}

// GetPrototype returns obj's type-link, nil for the null sentinel.
func GetPrototype(obj object.Target) (object.Target, error) {
	if object.IsNil(obj) {
		return nil, fmt.Errorf("getPrototype: %w", object.ErrInvalidTarget)
	}
	return obj.Prototype()
}

// SetPrototype replaces obj's type-link. proto must be a Target or nil;
// anything else fails with ErrInvalidPrototype. A link that would form a
// cycle is refused with false.
func SetPrototype(obj object.Target, proto object.Value) (bool, error) {
	if object.IsNil(obj) {
		return false, fmt.Errorf("setPrototype: %w", object.ErrInvalidTarget)
	}
	if proto == nil {
		return obj.SetPrototype(nil)
	}
	p, ok := proto.(object.Target)
	if !ok {
		return false, fmt.Errorf("setPrototype: %T: %w", proto, object.ErrInvalidPrototype)
	}
	if object.IsNil(p) {
		return obj.SetPrototype(nil)
	}
	return obj.SetPrototype(p)
}
