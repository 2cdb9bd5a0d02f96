// Package policy builds proxy handler tables from declarative rules.
//
// Rules are checked before any delegation, so an action a rule rejects
// never reaches the target and leaves it unchanged.
package policy

import (
	"math"
	"strings"

	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/proxy"
)

// Action describes an intercepted action as seen by a rule.
type Action struct {
	Kind  proxy.Kind
	Key   string       // empty for apply, construct and prototype actions
	Value object.Value // the value being written, set only
}

// Rule vets actions of the kinds it applies to.
type Rule interface {
	// Applies reports whether the rule wants to see actions of kind k.
	Applies(k proxy.Kind) bool
	// Check returns a non-nil error, normally a *object.PolicyError, to
	// deny the action.
	Check(a Action) error
}

type ruleFunc struct {
	kinds []proxy.Kind
	check func(Action) error
}

func (r ruleFunc) Applies(k proxy.Kind) bool {
	for _, kk := range r.kinds {
		if kk == k {
			return true
		}
	}
	return false
}

func (r ruleFunc) Check(a Action) error {
	return r.check(a)
}

// RuleFunc adapts a plain function into a Rule covering kinds.
func RuleFunc(check func(Action) error, kinds ...proxy.Kind) Rule {
	return ruleFunc{kinds: kinds, check: check}
}

// PrivatePrefix rejects reads, writes and deletes of keys starting with
// prefix.
func PrivatePrefix(prefix string) Rule {
	return RuleFunc(func(a Action) error {
		if prefix != "" && strings.HasPrefix(a.Key, prefix) {
			return object.Reject(a.Kind.String(), a.Key, "cannot access private field")
		}
		return nil
	}, proxy.KindGet, proxy.KindSet, proxy.KindDeleteField)
}

// Range rejects writes to key whose value is not a number within
// [lo, hi]. Use math.Inf for an open bound.
func Range(key string, lo, hi float64) Rule {
	return RuleFunc(func(a Action) error {
		if a.Key != key {
			return nil
		}
		n, ok := object.ToNumber(a.Value)
		if !ok {
			return object.Reject(a.Kind.String(), key, "value %v is not a number", a.Value)
		}
		if n < lo {
			return object.Reject(a.Kind.String(), key, "value %v is below %v", a.Value, lo)
		}
		if n > hi {
			return object.Reject(a.Kind.String(), key, "value %v is above %v", a.Value, hi)
		}
		return nil
	}, proxy.KindSet)
}

// AtMost is Range with no lower bound.
func AtMost(key string, hi float64) Rule {
	return Range(key, math.Inf(-1), hi)
}

// ReadOnly rejects writes and deletes of the given keys.
func ReadOnly(keys ...string) Rule {
	set := keySet(keys)
	return RuleFunc(func(a Action) error {
		if set[a.Key] {
			return object.Reject(a.Kind.String(), a.Key, "field is read-only")
		}
		return nil
	}, proxy.KindSet, proxy.KindDeleteField)
}

// Deny rejects every action of the given kinds.
func Deny(kinds ...proxy.Kind) Rule {
	return RuleFunc(func(a Action) error {
		return object.Reject(a.Kind.String(), a.Key, "action denied")
	}, kinds...)
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
