package object

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// Field storage
// ---------------------------------------------------------------------------

func TestPutAndGetField(t *testing.T) {
	o := New(nil).Put("name", "zhangsan").Put("age", 20)

	v, err := o.GetField("name", nil)
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if v != "zhangsan" {
		t.Errorf("name = %v, want zhangsan", v)
	}

	v, _ = o.GetField("missing", nil)
	if !IsUndefined(v) {
		t.Errorf("missing = %v, want undefined", v)
	}
}

func TestKeysKeepInsertionOrder(t *testing.T) {
	o := New(nil).Put("b", 1).Put("a", 2).Put("c", 3)
	o.Put("a", 4)

	if diff := cmp.Diff([]string{"b", "a", "c"}, o.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenFieldsSkippedByKeys(t *testing.T) {
	o := New(nil).Put("a", 1).Define("h", Field{Value: 2, Hidden: true})
	if got := o.Keys(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Keys() = %v, want [a]", got)
	}
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2", o.Len())
	}
}

func TestSetFieldCreatesMissingKey(t *testing.T) {
	o := New(nil)
	ok, err := o.SetField("name", "lisi", nil)
	if err != nil || !ok {
		t.Fatalf("SetField = %v, %v; want true, nil", ok, err)
	}
	if has, _ := o.HasField("name"); !has {
		t.Error("name should exist after SetField")
	}
}

func TestReadOnlyFieldRefusesWrite(t *testing.T) {
	o := New(nil).Define("id", Field{Value: 7, ReadOnly: true})
	ok, err := o.SetField("id", 8, nil)
	if err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if ok {
		t.Error("SetField on read-only field should return false")
	}
	if v, _ := o.GetField("id", nil); v != 7 {
		t.Errorf("id = %v, want 7", v)
	}
}

func TestDeleteField(t *testing.T) {
	o := New(nil).Put("name", "Tom").Put("age", 24)

	ok, _ := o.DeleteField("age")
	if !ok {
		t.Error("delete existing key should succeed")
	}
	if has, _ := o.HasField("age"); has {
		t.Error("age should be gone")
	}
	if ok, _ := o.DeleteField("age"); !ok {
		t.Error("delete of absent key should succeed")
	}

	o.Define("fixed", Field{Value: 1, Permanent: true})
	if ok, _ := o.DeleteField("fixed"); ok {
		t.Error("delete of permanent key should fail")
	}
}

// ---------------------------------------------------------------------------
// Accessors and receivers
// ---------------------------------------------------------------------------

func personWithInfo() *Object {
	return New(nil).
		Put("name", "Tom").
		Put("age", 24).
		DefineAccessor("info",
			func(this Target) (Value, error) {
				name, _ := this.GetField("name", this)
				return name, nil
			},
			func(this Target, v Value) error {
				_, err := this.SetField("age", v, this)
				return err
			})
}

func TestGetterBindsReceiver(t *testing.T) {
	person := personWithInfo()
	other := New(nil).Put("name", "Jerry")

	v, err := person.GetField("info", other)
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if v != "Jerry" {
		t.Errorf("info via receiver = %v, want Jerry", v)
	}

	v, _ = person.GetField("info", nil)
	if v != "Tom" {
		t.Errorf("info = %v, want Tom", v)
	}
}

func TestSetterMutatesReceiver(t *testing.T) {
	person := personWithInfo()
	receiver := New(nil).Put("age", 50)

	ok, err := person.SetField("info", 1, receiver)
	if err != nil || !ok {
		t.Fatalf("SetField = %v, %v", ok, err)
	}
	if v, _ := receiver.GetField("age", nil); v != 1 {
		t.Errorf("receiver.age = %v, want 1", v)
	}
	if v, _ := person.GetField("age", nil); v != 24 {
		t.Errorf("person.age = %v, want 24 (unchanged)", v)
	}
}

func TestDataWriteLandsOnReceiver(t *testing.T) {
	target := New(nil).Put("x", 1)
	receiver := New(nil)

	ok, _ := target.SetField("x", 2, receiver)
	if !ok {
		t.Fatal("SetField should succeed")
	}
	if v, _ := receiver.GetField("x", nil); v != 2 {
		t.Errorf("receiver.x = %v, want 2", v)
	}
	if v, _ := target.GetField("x", nil); v != 1 {
		t.Errorf("target.x = %v, want 1", v)
	}
}

func TestSetterErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	o := New(nil).DefineAccessor("v", nil, func(Target, Value) error { return boom })
	if _, err := o.SetField("v", 1, nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestAccessorWithoutSetterRefusesWrite(t *testing.T) {
	o := New(nil).DefineAccessor("v", func(Target) (Value, error) { return 1, nil }, nil)
	if ok, _ := o.SetField("v", 2, nil); ok {
		t.Error("write to getter-only accessor should return false")
	}
}

// ---------------------------------------------------------------------------
// Type-links
// ---------------------------------------------------------------------------

func TestInheritedLookup(t *testing.T) {
	base := New(nil).Put("greeting", "hi")
	child := New(base)

	if v, _ := child.GetField("greeting", nil); v != "hi" {
		t.Errorf("inherited greeting = %v, want hi", v)
	}
	if has, _ := child.HasField("greeting"); !has {
		t.Error("HasField should see inherited keys")
	}

	child.SetField("greeting", "hello", nil)
	if v, _ := base.GetField("greeting", nil); v != "hi" {
		t.Errorf("base.greeting = %v, want hi (write must land on receiver)", v)
	}
	if _, own := child.Own("greeting"); !own {
		t.Error("write should create an own field on child")
	}
}

// wrapper stands in front of another target the way a proxy does.
type wrapper struct {
	*Object
}

func (w wrapper) Unwrap() Target {
	if w.Object == nil {
		return nil
	}
	return w.Object
}

func TestSetPrototypeRejectsCycles(t *testing.T) {
	a := New(nil)
	b := New(a)

	ok, err := a.SetPrototype(b)
	if err != nil {
		t.Fatalf("SetPrototype: %v", err)
	}
	if ok {
		t.Error("cycle a -> b -> a should be refused")
	}
	if ok, _ := a.SetPrototype(a); ok {
		t.Error("self link should be refused")
	}
	if ok, _ := a.SetPrototype(wrapper{b}); ok {
		t.Error("cycle a -> wrapper(b) -> a should be refused")
	}
	if ok, _ := a.SetPrototype(wrapper{a}); ok {
		t.Error("link to a wrapper over a should be refused")
	}
	if ok, _ := a.SetPrototype(wrapper{nil}); !ok {
		t.Error("wrapper with nothing behind it should be accepted")
	}
	if ok, _ := b.SetPrototype(nil); !ok {
		t.Error("null link should be accepted")
	}
	if p, _ := b.Prototype(); p != nil {
		t.Errorf("Prototype() = %v, want nil", p)
	}
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func TestCallUsesExplicitThis(t *testing.T) {
	multiply := NewMethod("multiply", func(this Value, args []Value) (Value, error) {
		self := this.(Target)
		factor, _ := self.GetField("factor", self)
		x, _ := ToNumber(args[0])
		f, _ := ToNumber(factor)
		return x * f, nil
	})
	calc := New(nil).Put("factor", 2).Put("multiply", multiply)

	v, err := multiply.Call(calc, []Value{5})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != 10.0 {
		t.Errorf("multiply(5) = %v, want 10", v)
	}
}

func TestCallOnPlainObjectFails(t *testing.T) {
	_, err := New(nil).Call(nil, nil)
	if !errors.Is(err, ErrNotCallable) {
		t.Errorf("err = %v, want ErrNotCallable", err)
	}
}

func TestClassIsNotCallable(t *testing.T) {
	cls := NewClass("Person", nil)
	if cls.Callable() {
		t.Error("class should not be callable")
	}
	if _, err := cls.Call(nil, nil); !errors.Is(err, ErrNotCallable) {
		t.Errorf("err = %v, want ErrNotCallable", err)
	}
}

func TestCallWithoutBody(t *testing.T) {
	for _, fn := range []*Object{NewMethod("m", nil), NewFunction("f", nil)} {
		v, err := fn.Call(nil, []Value{1, 2})
		if err != nil {
			t.Fatalf("%s: Call: %v", fn.Name(), err)
		}
		if !IsUndefined(v) {
			t.Errorf("%s: Call = %v, want undefined", fn.Name(), v)
		}
	}
}

func TestFunctionOwnsName(t *testing.T) {
	for _, fn := range []*Object{NewClass("Person", nil), NewFunction("Animal", nil), NewMethod("sub", nil)} {
		if has, _ := fn.HasField(NameKey); !has {
			t.Errorf("%s: has name = false", fn.Name())
		}
		if v, _ := fn.GetField(NameKey, fn); v != fn.Name() {
			t.Errorf("%s: name = %v", fn.Name(), v)
		}
		if ok, _ := fn.SetField(NameKey, "other", fn); ok {
			t.Errorf("%s: name should be read-only", fn.Name())
		}
		if ok, _ := fn.DeleteField(NameKey); ok {
			t.Errorf("%s: name should be permanent", fn.Name())
		}
		for _, k := range fn.Keys() {
			if k == NameKey {
				t.Errorf("%s: name should be hidden from Keys", fn.Name())
			}
		}
	}
}

func TestMethodIsNotConstructible(t *testing.T) {
	m := NewMethod("sub", nil)
	if _, err := m.Construct(nil, nil); !errors.Is(err, ErrNotConstructible) {
		t.Errorf("err = %v, want ErrNotConstructible", err)
	}
}

func TestConstructLinksPrototype(t *testing.T) {
	animal := NewFunction("Animal", func(this Value, args []Value) (Value, error) {
		self := this.(Target)
		self.SetField("type", args[0], self)
		self.SetField("color", args[1], self)
		return nil, nil
	})

	dog, err := animal.Construct([]Value{"dog", "white"}, nil)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	proto, _ := dog.Prototype()
	if proto != Target(animal.PrototypeObject()) {
		t.Error("instance type-link should be Animal.prototype")
	}
	if got := Format(dog); got != "Animal { type: 'dog', color: 'white' }" {
		t.Errorf("Format(dog) = %q", got)
	}
}

func TestConstructHonoursNewTarget(t *testing.T) {
	base := NewClass("Base", nil)
	derived := NewClass("Derived", nil)

	inst, err := base.Construct(nil, derived)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if proto, _ := inst.Prototype(); proto != Target(derived.PrototypeObject()) {
		t.Error("type-link should come from newTarget.prototype")
	}
}

func TestConstructReturnsBodyObject(t *testing.T) {
	replacement := New(nil).Put("replaced", true)
	f := NewFunction("Factory", func(Value, []Value) (Value, error) {
		return replacement, nil
	})
	got, _ := f.Construct(nil, nil)
	if got != Target(replacement) {
		t.Error("a returned object should replace the allocated instance")
	}
}

func TestInheritedMethod(t *testing.T) {
	cls := NewClass("Counter", nil).Method("hello", func(Value, []Value) (Value, error) {
		return "hi", nil
	})
	inst, _ := cls.Construct(nil, nil)
	m, _ := inst.GetField("hello", inst)
	fn, ok := AsTarget(m)
	if !ok || !fn.Callable() {
		t.Fatalf("hello = %v, want callable", m)
	}
	if v, _ := fn.Call(inst, nil); v != "hi" {
		t.Errorf("hello() = %v, want hi", v)
	}
}
