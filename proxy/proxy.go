// Package proxy implements the interception layer: a Proxy wraps a target
// with a Handlers table, gives each registered handler first refusal over
// its action kind, and falls back to the reflection primitives otherwise.
//
// With an empty Handlers table a Proxy behaves exactly like its target.
// Errors from handlers and from the target are returned unchanged.
package proxy

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/reflection"
)

var log = commonlog.GetLogger("intercede.proxy")

// Proxy binds exactly one target to one handler table. It implements
// object.Target, so proxies can be read, written, called, constructed and
// nested like any other target.
type Proxy struct {
	id       string
	target   object.Target
	handlers Handlers

	callable      bool
	constructible bool
	revoked       atomic.Bool
}

// New wraps target with handlers. The table is copied, so later changes to
// the caller's Handlers value do not affect the proxy.
//
// It fails with ErrInvalidTarget when target is nil, or when an apply or
// construct handler is registered for a target lacking that contract.
func New(target object.Target, handlers Handlers) (*Proxy, error) {
	if object.IsNil(target) {
		return nil, fmt.Errorf("new proxy: %w", object.ErrInvalidTarget)
	}
	if handlers.Apply != nil && !target.Callable() {
		return nil, fmt.Errorf("new proxy: apply handler on non-callable target: %w", object.ErrInvalidTarget)
	}
	if handlers.Construct != nil && !target.Constructible() {
		return nil, fmt.Errorf("new proxy: construct handler on non-constructible target: %w", object.ErrInvalidTarget)
	}
	p := &Proxy{
		id:            uuid.NewString(),
		target:        target,
		handlers:      handlers,
		callable:      target.Callable(),
		constructible: target.Constructible(),
	}
	log.Debugf("proxy %s created, handlers %v", p.id, handlers.Kinds())
	return p, nil
}

// NewRevocable wraps target like New and also returns a function that
// revokes the proxy.
func NewRevocable(target object.Target, handlers Handlers) (*Proxy, func(), error) {
	p, err := New(target, handlers)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Revoke, nil
}

// ID returns the identifier used in trace logs.
func (p *Proxy) ID() string {
	return p.id
}

// Revoke moves the proxy to the revoked state. Every later action fails
// with ErrRevokedProxy. Revoking twice is harmless.
func (p *Proxy) Revoke() {
	if p.revoked.CompareAndSwap(false, true) {
		log.Debugf("proxy %s revoked", p.id)
	}
}

// Revoked reports whether Revoke has been called.
func (p *Proxy) Revoked() bool {
	return p.revoked.Load()
}

// Unwrap returns the wrapped target, or nil once revoked. It exists for
// formatting and snapshots; dispatch never goes through it.
func (p *Proxy) Unwrap() object.Target {
	if p.Revoked() {
		return nil
	}
	return p.target
}

func (p *Proxy) enter(k Kind, key string) error {
	if p.Revoked() {
		return fmt.Errorf("%s %q: %w", k, key, object.ErrRevokedProxy)
	}
	if log.AllowLevel(commonlog.Debug) {
		route := "fallback"
		if p.handlers.Registered(k) {
			route = "handler"
		}
		log.Debugf("proxy %s: %s %q via %s", p.id, k, key, route)
	}
	return nil
}

// ---------------------------------------------------------------------------
// object.Target implementation
// ---------------------------------------------------------------------------

func (p *Proxy) GetField(key string, receiver object.Target) (object.Value, error) {
	if err := p.enter(KindGet, key); err != nil {
		return nil, err
	}
	if object.IsNil(receiver) {
		receiver = p
	}
	if h := p.handlers.Get; h != nil {
		return h(p.target, key, receiver)
	}
	return reflection.GetWith(p.target, key, receiver)
}

func (p *Proxy) SetField(key string, value object.Value, receiver object.Target) (bool, error) {
	if err := p.enter(KindSet, key); err != nil {
		return false, err
	}
	if object.IsNil(receiver) {
		receiver = p
	}
	if h := p.handlers.Set; h != nil {
		return h(p.target, key, value, receiver)
	}
	return reflection.SetWith(p.target, key, value, receiver)
}

func (p *Proxy) HasField(key string) (bool, error) {
	if err := p.enter(KindHas, key); err != nil {
		return false, err
	}
	if h := p.handlers.Has; h != nil {
		return h(p.target, key)
	}
	return reflection.Has(p.target, key)
}

func (p *Proxy) DeleteField(key string) (bool, error) {
	if err := p.enter(KindDeleteField, key); err != nil {
		return false, err
	}
	if h := p.handlers.DeleteField; h != nil {
		return h(p.target, key)
	}
	return reflection.DeleteField(p.target, key)
}

// DefineField is not an action kind; it reaches the target directly. Data
// writes arrive here when the proxy is the receiver of a set.
func (p *Proxy) DefineField(key string, value object.Value) (bool, error) {
	if p.Revoked() {
		return false, fmt.Errorf("define %q: %w", key, object.ErrRevokedProxy)
	}
	return p.target.DefineField(key, value)
}

func (p *Proxy) Prototype() (object.Target, error) {
	if err := p.enter(KindGetPrototype, ""); err != nil {
		return nil, err
	}
	if h := p.handlers.GetPrototype; h != nil {
		return h(p.target)
	}
	return reflection.GetPrototype(p.target)
}

func (p *Proxy) SetPrototype(proto object.Target) (bool, error) {
	if err := p.enter(KindSetPrototype, ""); err != nil {
		return false, err
	}
	if h := p.handlers.SetPrototype; h != nil {
		return h(p.target, proto)
	}
	return reflection.SetPrototype(p.target, proto)
}

func (p *Proxy) Callable() bool {
	return p.callable
}

func (p *Proxy) Constructible() bool {
	return p.constructible
}

func (p *Proxy) Call(this object.Value, args []object.Value) (object.Value, error) {
	if err := p.enter(KindApply, ""); err != nil {
		return nil, err
	}
	if !p.callable {
		return nil, fmt.Errorf("apply: %w", object.ErrNotCallable)
	}
	if h := p.handlers.Apply; h != nil {
		return h(p.target, this, args)
	}
	return reflection.Apply(p.target, this, args)
}

func (p *Proxy) Construct(args []object.Value, newTarget object.Target) (object.Target, error) {
	if err := p.enter(KindConstruct, ""); err != nil {
		return nil, err
	}
	if !p.constructible {
		return nil, fmt.Errorf("construct: %w", object.ErrNotConstructible)
	}
	if object.IsNil(newTarget) {
		newTarget = p
	}
	if h := p.handlers.Construct; h != nil {
		inst, err := h(p.target, args, newTarget)
		if err != nil {
			return nil, err
		}
		if object.IsNil(inst) {
			return nil, fmt.Errorf("construct handler returned no instance: %w", object.ErrInvalidTarget)
		}
		return inst, nil
	}
	return reflection.ConstructWith(p.target, args, newTarget)
}
