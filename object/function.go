package object

// Well-known keys on function objects and their prototypes.
const (
	PrototypeKey   = "prototype"
	ConstructorKey = "constructor"
	NameKey        = "name"
)

// Func is the body of a function object. For construction, this is the
// freshly allocated instance.
type Func func(this Value, args []Value) (Value, error)

type function struct {
	name          string
	body          Func
	callable      bool
	constructible bool
	class         bool
}

// NewFunction creates a function object that is both callable and
// constructible. It owns a prototype object used as the type-link of the
// instances it constructs.
func NewFunction(name string, body Func) *Object {
	o := New(nil)
	o.fn = &function{name: name, body: body, callable: true, constructible: true}
	attachName(o, name)
	attachPrototype(o)
	return o
}

// NewMethod creates a callable function object with no construction
// contract.
func NewMethod(name string, body Func) *Object {
	o := New(nil)
	o.fn = &function{name: name, body: body, callable: true}
	attachName(o, name)
	return o
}

// NewClass creates a constructible object with no call contract. ctor runs
// against each new instance and may be nil.
func NewClass(name string, ctor Func) *Object {
	o := New(nil)
	o.fn = &function{name: name, body: ctor, constructible: true, class: true}
	attachName(o, name)
	attachPrototype(o)
	return o
}

// attachName gives every function object its own name field, so has and
// get see it the way they see any other field.
func attachName(o *Object, name string) {
	o.Define(NameKey, Field{Value: name, Hidden: true, ReadOnly: true, Permanent: true})
}

func attachPrototype(o *Object) {
	proto := New(nil)
	proto.Define(ConstructorKey, Field{Value: o, Hidden: true})
	o.Define(PrototypeKey, Field{Value: proto, Hidden: true, Permanent: true})
}

// Name returns the function name, or "" for non-function objects.
func (o *Object) Name() string {
	if o.fn == nil {
		return ""
	}
	return o.fn.name
}

// IsFunction reports whether o carries a call or construct contract.
func (o *Object) IsFunction() bool {
	return o.fn != nil
}

// IsClass reports whether o was created by NewClass.
func (o *Object) IsClass() bool {
	return o.fn != nil && o.fn.class
}

// PrototypeObject returns the object stored in o's own prototype field, the
// type-link given to instances o constructs.
func (o *Object) PrototypeObject() *Object {
	f, ok := o.fields[PrototypeKey]
	if !ok {
		return nil
	}
	p, _ := f.Value.(*Object)
	return p
}

// Method installs a callable on o's prototype object so instances inherit
// it. It returns o for chaining.
func (o *Object) Method(name string, body Func) *Object {
	if p := o.PrototypeObject(); p != nil {
		p.Put(name, NewMethod(name, body))
	}
	return o
}

// ClassName returns the name of the constructor reachable through o's
// type-link, or "" for plain records.
func ClassName(o *Object) string {
	p, ok := o.proto.(*Object)
	if !ok {
		return ""
	}
	f, ok := p.fields[ConstructorKey]
	if !ok {
		return ""
	}
	if ctor, ok := f.Value.(*Object); ok {
		return ctor.Name()
	}
	return ""
}
