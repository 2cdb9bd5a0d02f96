package proxy

import "fmt"

// Kind enumerates the action kinds a proxy can intercept.
type Kind uint8

const (
	KindGet Kind = iota
	KindSet
	KindHas
	KindDeleteField
	KindApply
	KindConstruct
	KindGetPrototype
	KindSetPrototype

	numKinds
)

var kindNames = [numKinds]string{
	KindGet:          "get",
	KindSet:          "set",
	KindHas:          "has",
	KindDeleteField:  "deleteField",
	KindApply:        "apply",
	KindConstruct:    "construct",
	KindGetPrototype: "getPrototype",
	KindSetPrototype: "setPrototype",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Kinds returns every action kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// ParseKind maps an action kind name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action kind %q", name)
}
