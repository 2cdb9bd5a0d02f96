package policy

import (
	"github.com/tliron/commonlog"

	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/proxy"
	"github.com/chazu/intercede/reflection"
)

// Options configures a handler table built by Handlers.
type Options struct {
	Rules []Rule

	// Hidden keys report false from has and read as Undefined.
	Hidden []string

	// Alias maps a requested key to the key actually read and written,
	// typically an accessor or a backing field. Rules see both keys.
	Alias map[string]string

	// Trace logs every get and set at info level.
	Trace bool

	// Logger defaults to the "intercede.policy" logger.
	Logger commonlog.Logger
}

type enforcer struct {
	rules  []Rule
	hidden map[string]bool
	alias  map[string]string
	trace  bool
	log    commonlog.Logger
}

// Handlers builds a proxy handler table enforcing opts. Only the action
// kinds some option cares about get a handler; the rest stay transparent.
func Handlers(opts Options) proxy.Handlers {
	e := &enforcer{
		rules:  opts.Rules,
		hidden: keySet(opts.Hidden),
		alias:  opts.Alias,
		trace:  opts.Trace,
		log:    opts.Logger,
	}
	if e.log == nil {
		e.log = commonlog.GetLogger("intercede.policy")
	}

	var h proxy.Handlers
	keyed := len(e.hidden) > 0 || len(e.alias) > 0
	if e.trace || keyed || e.covers(proxy.KindGet) {
		h.Get = e.get
	}
	if e.trace || keyed || e.covers(proxy.KindSet) {
		h.Set = e.set
	}
	if keyed || e.covers(proxy.KindHas) {
		h.Has = e.has
	}
	if len(e.alias) > 0 || e.covers(proxy.KindDeleteField) {
		h.DeleteField = e.deleteField
	}
	if e.covers(proxy.KindApply) {
		h.Apply = e.apply
	}
	if e.covers(proxy.KindConstruct) {
		h.Construct = e.construct
	}
	if e.covers(proxy.KindGetPrototype) {
		h.GetPrototype = e.getPrototype
	}
	if e.covers(proxy.KindSetPrototype) {
		h.SetPrototype = e.setPrototype
	}
	return h
}

// Wrap creates a proxy over target enforcing opts. Apply and construct
// rules are dropped for targets lacking those contracts, since the proxy
// refuses such actions anyway.
func Wrap(target object.Target, opts Options) (*proxy.Proxy, error) {
	h := Handlers(opts)
	if !object.IsNil(target) {
		if !target.Callable() {
			h.Apply = nil
		}
		if !target.Constructible() {
			h.Construct = nil
		}
	}
	return proxy.New(target, h)
}

func (e *enforcer) covers(k proxy.Kind) bool {
	for _, r := range e.rules {
		if r.Applies(k) {
			return true
		}
	}
	return false
}

func (e *enforcer) check(a Action) error {
	for _, r := range e.rules {
		if !r.Applies(a.Kind) {
			continue
		}
		if err := r.Check(a); err != nil {
			e.log.Noticef("rejected %s %q: %v", a.Kind, a.Key, err)
			return err
		}
	}
	return nil
}

// checkKey vets an action on key and, when key is aliased, on the key the
// action will actually touch.
func (e *enforcer) checkKey(k proxy.Kind, key string, value object.Value) error {
	if err := e.check(Action{Kind: k, Key: key, Value: value}); err != nil {
		return err
	}
	if to := e.resolve(key); to != key {
		return e.check(Action{Kind: k, Key: to, Value: value})
	}
	return nil
}

func (e *enforcer) resolve(key string) string {
	if k, ok := e.alias[key]; ok {
		return k
	}
	return key
}

func (e *enforcer) get(target object.Target, key string, receiver object.Target) (object.Value, error) {
	if err := e.checkKey(proxy.KindGet, key, nil); err != nil {
		return nil, err
	}
	if e.trace {
		e.log.Infof("getting %s", key)
	}
	if e.hidden[key] {
		return object.Undefined, nil
	}
	return reflection.GetWith(target, e.resolve(key), receiver)
}

func (e *enforcer) set(target object.Target, key string, value object.Value, receiver object.Target) (bool, error) {
	if err := e.checkKey(proxy.KindSet, key, value); err != nil {
		return false, err
	}
	if e.trace {
		e.log.Infof("setting %s %v", key, object.Format(value))
	}
	return reflection.SetWith(target, e.resolve(key), value, receiver)
}

func (e *enforcer) has(target object.Target, key string) (bool, error) {
	if err := e.checkKey(proxy.KindHas, key, nil); err != nil {
		return false, err
	}
	if e.hidden[key] {
		return false, nil
	}
	return reflection.Has(target, e.resolve(key))
}

func (e *enforcer) deleteField(target object.Target, key string) (bool, error) {
	if err := e.checkKey(proxy.KindDeleteField, key, nil); err != nil {
		return false, err
	}
	return reflection.DeleteField(target, e.resolve(key))
}

func (e *enforcer) apply(target object.Target, this object.Value, args []object.Value) (object.Value, error) {
	if err := e.check(Action{Kind: proxy.KindApply}); err != nil {
		return nil, err
	}
	return reflection.Apply(target, this, args)
}

func (e *enforcer) construct(target object.Target, args []object.Value, newTarget object.Target) (object.Target, error) {
	if err := e.check(Action{Kind: proxy.KindConstruct}); err != nil {
		return nil, err
	}
	return reflection.ConstructWith(target, args, newTarget)
}

func (e *enforcer) getPrototype(target object.Target) (object.Target, error) {
	if err := e.check(Action{Kind: proxy.KindGetPrototype}); err != nil {
		return nil, err
	}
	return reflection.GetPrototype(target)
}

func (e *enforcer) setPrototype(target object.Target, proto object.Target) (bool, error) {
	if err := e.check(Action{Kind: proxy.KindSetPrototype}); err != nil {
		return false, err
	}
	return reflection.SetPrototype(target, proto)
}
