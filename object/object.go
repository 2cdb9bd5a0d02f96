package object

import "fmt"

// Object is an ordinary structured value: ordered named fields, a swappable
// type-link, and for function objects a call and/or construct contract.
type Object struct {
	proto  Target            // type-link; nil is the null sentinel
	keys   []string          // insertion order
	fields map[string]*Field // key -> field
	fn     *function         // nil for plain records
}

// New creates an empty object whose type-link is proto (nil for null).
func New(proto Target) *Object {
	if IsNil(proto) {
		proto = nil
	}
	return &Object{
		proto:  proto,
		fields: make(map[string]*Field),
	}
}

// ---------------------------------------------------------------------------
// Building
// ---------------------------------------------------------------------------

// Put defines or overwrites an own data field, bypassing attributes and the
// type-link chain. It returns o for chaining.
func (o *Object) Put(key string, value Value) *Object {
	return o.Define(key, Field{Value: value})
}

// Define installs a field descriptor as an own field. It returns o for
// chaining.
func (o *Object) Define(key string, f Field) *Object {
	if _, ok := o.fields[key]; !ok {
		o.keys = append(o.keys, key)
	}
	field := f
	o.fields[key] = &field
	return o
}

// DefineAccessor installs a computed field. It returns o for chaining.
func (o *Object) DefineAccessor(key string, get Getter, set Setter) *Object {
	return o.Define(key, Accessor(get, set))
}

// ---------------------------------------------------------------------------
// Introspection
// ---------------------------------------------------------------------------

// Own returns a copy of the own field descriptor for key.
func (o *Object) Own(key string) (Field, bool) {
	f, ok := o.fields[key]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Keys returns the visible own keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.keys))
	for _, k := range o.keys {
		if !o.fields[k].Hidden {
			keys = append(keys, k)
		}
	}
	return keys
}

// Len returns the number of own fields, hidden ones included.
func (o *Object) Len() int {
	return len(o.keys)
}

// ---------------------------------------------------------------------------
// Target implementation
// ---------------------------------------------------------------------------

func (o *Object) GetField(key string, receiver Target) (Value, error) {
	if IsNil(receiver) {
		receiver = o
	}
	f, ok := o.fields[key]
	if !ok {
		if o.proto == nil {
			return Undefined, nil
		}
		return o.proto.GetField(key, receiver)
	}
	if f.IsAccessor() {
		if f.Get == nil {
			return Undefined, nil
		}
		return f.Get(receiver)
	}
	return f.Value, nil
}

func (o *Object) SetField(key string, value Value, receiver Target) (bool, error) {
	if IsNil(receiver) {
		receiver = o
	}
	f, ok := o.fields[key]
	if !ok {
		if o.proto != nil {
			return o.proto.SetField(key, value, receiver)
		}
		return receiver.DefineField(key, value)
	}
	if f.IsAccessor() {
		if f.Set == nil {
			return false, nil
		}
		if err := f.Set(receiver, value); err != nil {
			return false, err
		}
		return true, nil
	}
	if f.ReadOnly {
		return false, nil
	}
	return receiver.DefineField(key, value)
}

func (o *Object) HasField(key string) (bool, error) {
	if _, ok := o.fields[key]; ok {
		return true, nil
	}
	if o.proto == nil {
		return false, nil
	}
	return o.proto.HasField(key)
}

func (o *Object) DeleteField(key string) (bool, error) {
	f, ok := o.fields[key]
	if !ok {
		return true, nil
	}
	if f.Permanent {
		return false, nil
	}
	delete(o.fields, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true, nil
}

func (o *Object) DefineField(key string, value Value) (bool, error) {
	if f, ok := o.fields[key]; ok {
		if f.IsAccessor() || f.ReadOnly {
			return false, nil
		}
		f.Value = value
		return true, nil
	}
	o.Put(key, value)
	return true, nil
}

func (o *Object) Prototype() (Target, error) {
	return o.proto, nil
}

func (o *Object) SetPrototype(proto Target) (bool, error) {
	if IsNil(proto) {
		o.proto = nil
		return true, nil
	}
	if proto == o.proto {
		return true, nil
	}
	// Proxies are followed to their targets; any other Target ends the walk.
	for cur := proto; !IsNil(cur); {
		if cur == Target(o) {
			return false, nil
		}
		switch next := cur.(type) {
		case *Object:
			cur = next.proto
		case Unwrapper:
			cur = next.Unwrap()
		default:
			cur = nil
		}
	}
	o.proto = proto
	return true, nil
}

func (o *Object) Callable() bool {
	return o.fn != nil && o.fn.callable
}

func (o *Object) Constructible() bool {
	return o.fn != nil && o.fn.constructible
}

func (o *Object) Call(this Value, args []Value) (Value, error) {
	if !o.Callable() {
		return nil, fmt.Errorf("%s: %w", o.describe(), ErrNotCallable)
	}
	if o.fn.body == nil {
		return Undefined, nil
	}
	return o.fn.body(this, args)
}

func (o *Object) Construct(args []Value, newTarget Target) (Target, error) {
	if !o.Constructible() {
		return nil, fmt.Errorf("%s: %w", o.describe(), ErrNotConstructible)
	}
	if IsNil(newTarget) {
		newTarget = o
	}
	proto, err := instancePrototype(newTarget, o)
	if err != nil {
		return nil, err
	}
	inst := New(proto)
	if o.fn.body == nil {
		return inst, nil
	}
	result, err := o.fn.body(inst, args)
	if err != nil {
		return nil, err
	}
	if t, ok := AsTarget(result); ok {
		return t, nil
	}
	return inst, nil
}

// instancePrototype reads newTarget.prototype, falling back to the
// constructor's own prototype when newTarget does not supply an object.
func instancePrototype(newTarget Target, ctor *Object) (Target, error) {
	v, err := newTarget.GetField(PrototypeKey, newTarget)
	if err != nil {
		return nil, err
	}
	if t, ok := AsTarget(v); ok {
		return t, nil
	}
	if f, ok := ctor.fields[PrototypeKey]; ok {
		if t, ok := AsTarget(f.Value); ok {
			return t, nil
		}
	}
	return nil, nil
}

func (o *Object) describe() string {
	if o.fn != nil && o.fn.name != "" {
		return o.fn.name
	}
	if name := ClassName(o); name != "" {
		return name
	}
	return "object"
}
