package proxy

import "github.com/chazu/intercede/object"

// Handler signatures. Each receives the proxy's raw target, never the proxy
// itself, so it can delegate explicitly through the reflection package.
type (
	GetFunc          func(target object.Target, key string, receiver object.Target) (object.Value, error)
	SetFunc          func(target object.Target, key string, value object.Value, receiver object.Target) (bool, error)
	HasFunc          func(target object.Target, key string) (bool, error)
	DeleteFieldFunc  func(target object.Target, key string) (bool, error)
	ApplyFunc        func(target object.Target, this object.Value, args []object.Value) (object.Value, error)
	ConstructFunc    func(target object.Target, args []object.Value, newTarget object.Target) (object.Target, error)
	GetPrototypeFunc func(target object.Target) (object.Target, error)
	SetPrototypeFunc func(target object.Target, proto object.Target) (bool, error)
)

// Handlers is the capability table of a proxy: one optional handler per
// action kind. A nil entry means the action passes straight through to the
// target.
type Handlers struct {
	Get          GetFunc
	Set          SetFunc
	Has          HasFunc
	DeleteField  DeleteFieldFunc
	Apply        ApplyFunc
	Construct    ConstructFunc
	GetPrototype GetPrototypeFunc
	SetPrototype SetPrototypeFunc
}

// Registered reports whether a handler is installed for k.
func (h *Handlers) Registered(k Kind) bool {
	switch k {
	case KindGet:
		return h.Get != nil
	case KindSet:
		return h.Set != nil
	case KindHas:
		return h.Has != nil
	case KindDeleteField:
		return h.DeleteField != nil
	case KindApply:
		return h.Apply != nil
	case KindConstruct:
		return h.Construct != nil
	case KindGetPrototype:
		return h.GetPrototype != nil
	case KindSetPrototype:
		return h.SetPrototype != nil
	}
	return false
}

// Kinds returns the action kinds with a registered handler.
func (h *Handlers) Kinds() []Kind {
	var kinds []Kind
	for _, k := range Kinds() {
		if h.Registered(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
