package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/intercede/object"
	"github.com/chazu/intercede/proxy"
	"github.com/chazu/intercede/reflection"
)

// =============================================================================
// TOUR COMMAND - replays the proxy and reflection walkthrough
// =============================================================================

var tourCmd = &cobra.Command{
	Use:   "tour [demo...]",
	Short: "Replay the proxy and reflection walkthrough",
	Long: `Runs each demonstration in order and prints what the handlers observe.
Name demos to run a subset; "intercede tour --list" shows the names.`,
	RunE: runTour,
}

var tourList bool

func init() {
	tourCmd.Flags().BoolVar(&tourList, "list", false, "List demo names and exit")
}

type demo struct {
	name  string
	title string
	run   func(c *console) error
}

var demos = []demo{
	{"logging", "get and set handlers that log", demoLogging},
	{"empty-target", "handlers over an empty target", demoEmptyTarget},
	{"empty-handlers", "an empty handler table is transparent", demoEmptyHandlers},
	{"get", "get handler on a class instance", demoGet},
	{"private", "get handler guarding private fields", demoPrivate},
	{"validate", "set handler validating a score", demoValidate},
	{"apply", "apply handler on a function", demoApply},
	{"has", "has handler on a class", demoHas},
	{"construct", "construct handler on a class", demoConstruct},
	{"reflect-get", "reflection get with a receiver", demoReflectGet},
	{"reflect-set", "reflection set with a receiver", demoReflectSet},
	{"reflect-has", "reflection has and deleteField", demoReflectHasDelete},
	{"reflect-construct", "reflection construct and getPrototype", demoReflectConstruct},
	{"reflect-setprototype", "reflection setPrototype", demoReflectSetPrototype},
	{"reflect-apply", "reflection apply with an explicit this", demoReflectApply},
}

func runTour(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if tourList {
		for _, d := range demos {
			fmt.Fprintf(out, "%-22s %s\n", d.name, d.title)
		}
		return nil
	}
	selected, err := selectDemos(args)
	if err != nil {
		return err
	}
	return playTour(out, selected)
}

func selectDemos(names []string) ([]demo, error) {
	if len(names) == 0 {
		return demos, nil
	}
	var selected []demo
	for _, name := range names {
		found := false
		for _, d := range demos {
			if d.name == name {
				selected = append(selected, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown demo %q", name)
		}
	}
	return selected, nil
}

func playTour(w io.Writer, selected []demo) error {
	c := &console{w: w}
	for i, d := range selected {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s: %s ==\n", d.name, d.title)
		if err := d.run(c); err != nil {
			return fmt.Errorf("demo %s: %w", d.name, err)
		}
	}
	return nil
}

// console prints values the way the walkthrough expects to see them.
type console struct {
	w io.Writer
}

func (c *console) log(values ...object.Value) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = object.Format(v)
	}
	fmt.Fprintln(c.w, strings.Join(parts, " "))
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func newStudentClass() *object.Object {
	return object.NewClass("Student", func(this object.Value, args []object.Value) (object.Value, error) {
		self := this.(object.Target)
		for i, k := range []string{"name", "grade", "subject", "_score"} {
			var v object.Value = object.Undefined
			if i < len(args) {
				v = args[i]
			}
			if _, err := reflection.Set(self, k, v); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
}

func newPersonClass() *object.Object {
	return object.NewClass("Person", func(this object.Value, args []object.Value) (object.Value, error) {
		self := this.(object.Target)
		for i, k := range []string{"name", "age"} {
			if i < len(args) {
				if _, err := reflection.Set(self, k, args[i]); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
}

func loggingHandlers(c *console) proxy.Handlers {
	return proxy.Handlers{
		Get: func(target object.Target, key string, receiver object.Target) (object.Value, error) {
			c.log("getting", key)
			return reflection.Get(target, key)
		},
		Set: func(target object.Target, key string, value object.Value, receiver object.Target) (bool, error) {
			c.log("setting", key, value)
			return reflection.Set(target, key, value)
		},
	}
}

func numbers(args []object.Value, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i := range out {
		f, ok := object.ToNumber(args[i])
		if !ok {
			return nil, fmt.Errorf("argument %d is not a number: %s", i, object.Format(args[i]))
		}
		out[i] = f
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Proxy demos
// ---------------------------------------------------------------------------

func demoLogging(c *console) error {
	target := object.New(nil).Put("name", "zhangsan").Put("age", 20)
	p, err := proxy.New(target, loggingHandlers(c))
	if err != nil {
		return err
	}
	name, err := reflection.Get(p, "name")
	if err != nil {
		return err
	}
	c.log(name)
	if _, err := reflection.Set(p, "age", 30); err != nil {
		return err
	}
	c.log(p)
	return nil
}

func demoEmptyTarget(c *console) error {
	p, err := proxy.New(object.New(nil), loggingHandlers(c))
	if err != nil {
		return err
	}
	name, err := reflection.Get(p, "name")
	if err != nil {
		return err
	}
	c.log(name)
	if _, err := reflection.Set(p, "name", "lisi"); err != nil {
		return err
	}
	c.log(p)
	return nil
}

func demoEmptyHandlers(c *console) error {
	target := object.New(nil).Put("name", "zhangsan").Put("age", 20)
	p, err := proxy.New(target, proxy.Handlers{})
	if err != nil {
		return err
	}
	name, err := reflection.Get(p, "name")
	if err != nil {
		return err
	}
	c.log(name)
	if _, err := reflection.Set(p, "age", 30); err != nil {
		return err
	}
	c.log(p)
	return nil
}

func demoGet(c *console) error {
	stu, err := reflection.Construct(newStudentClass(), []object.Value{"zhangsan", "一年级", "语文", 95})
	if err != nil {
		return err
	}
	p, err := proxy.New(stu, proxy.Handlers{
		Get: func(target object.Target, key string, receiver object.Target) (object.Value, error) {
			c.log("Getting", key)
			return reflection.Get(target, key)
		},
	})
	if err != nil {
		return err
	}
	name, err := reflection.Get(p, "name")
	if err != nil {
		return err
	}
	c.log(name)
	return nil
}

func demoPrivate(c *console) error {
	stu, err := reflection.Construct(newStudentClass(), []object.Value{"zhangsan", "一年级", "语文", 95})
	if err != nil {
		return err
	}
	p, err := proxy.New(stu, proxy.Handlers{
		Get: func(target object.Target, key string, receiver object.Target) (object.Value, error) {
			if strings.HasPrefix(key, "_") {
				return nil, object.Reject("get", key, "cannot access private field %s", key)
			}
			c.log("Getting", key)
			return reflection.Get(target, key)
		},
	})
	if err != nil {
		return err
	}
	name, err := reflection.Get(p, "name")
	if err != nil {
		return err
	}
	c.log(name)
	if _, err := reflection.Get(p, "_score"); err != nil {
		c.log("rejected:", err.Error())
	}
	return nil
}

func demoValidate(c *console) error {
	stu, err := reflection.Construct(newStudentClass(), []object.Value{"zhangsan", "一年级", "语文", 95})
	if err != nil {
		return err
	}
	p, err := proxy.New(stu, proxy.Handlers{
		Set: func(target object.Target, key string, value object.Value, receiver object.Target) (bool, error) {
			if key == "_score" {
				if n, ok := object.ToNumber(value); ok && n > 150 {
					return false, object.Reject("set", key, "score cannot exceed 150")
				}
			}
			c.log("Setting", key, value)
			return reflection.Set(target, key, value)
		},
	})
	if err != nil {
		return err
	}
	if _, err := reflection.Set(p, "_score", 180); err != nil {
		c.log("rejected:", err.Error())
	}
	if _, err := reflection.Set(p, "_score", 140); err != nil {
		return err
	}
	c.log(stu)
	return nil
}

func demoApply(c *console) error {
	sub := object.NewFunction("sub", func(this object.Value, args []object.Value) (object.Value, error) {
		n, err := numbers(args, 2)
		if err != nil {
			return nil, err
		}
		return n[0] - n[1], nil
	})
	p, err := proxy.New(sub, proxy.Handlers{
		Apply: func(target object.Target, this object.Value, args []object.Value) (object.Value, error) {
			c.log("apply handler called")
			return reflection.Apply(target, this, args)
		},
	})
	if err != nil {
		return err
	}
	v, err := reflection.Apply(p, nil, []object.Value{10, 5})
	if err != nil {
		return err
	}
	c.log(v)
	return nil
}

func demoHas(c *console) error {
	person := newPersonClass()
	p, err := proxy.New(person, proxy.Handlers{
		Has: func(target object.Target, key string) (bool, error) {
			c.log(fmt.Sprintf("has handler called, does the Person class hold %s", key))
			return reflection.Has(target, key)
		},
	})
	if err != nil {
		return err
	}
	for _, key := range []string{"name", "prototype"} {
		has, err := reflection.Has(p, key)
		if err != nil {
			return err
		}
		c.log(has)
	}
	return nil
}

func demoConstruct(c *console) error {
	p, err := proxy.New(newStudentClass(), proxy.Handlers{
		Construct: func(target object.Target, args []object.Value, newTarget object.Target) (object.Target, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = object.Format(a)
			}
			c.log("construction intercepted, arguments: " + strings.Join(parts, ","))
			return reflection.ConstructWith(target, args, newTarget)
		},
	})
	if err != nil {
		return err
	}
	stu, err := reflection.Construct(p, []object.Value{"lisi", "二年级", "数学", 98})
	if err != nil {
		return err
	}
	c.log(stu)
	return nil
}

// ---------------------------------------------------------------------------
// Reflection demos
// ---------------------------------------------------------------------------

func newTourPerson() *object.Object {
	return object.New(nil).
		Put("name", "Tom").
		Put("age", 24).
		DefineAccessor("info",
			func(this object.Target) (object.Value, error) {
				name, err := reflection.Get(this, "name")
				if err != nil {
					return nil, err
				}
				age, err := reflection.Get(this, "age")
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("name: %s, age: %s", object.Format(name), object.Format(age)), nil
			},
			func(this object.Target, v object.Value) error {
				_, err := reflection.Set(this, "age", v)
				return err
			})
}

func demoReflectGet(c *console) error {
	person := newTourPerson()
	name, err := reflection.Get(person, "name")
	if err != nil {
		return err
	}
	c.log(name)
	receiver := object.New(nil).Put("name", "Jerry").Put("age", 98)
	info, err := reflection.GetWith(person, "info", receiver)
	if err != nil {
		return err
	}
	c.log(info)
	return nil
}

func demoReflectSet(c *console) error {
	person := newTourPerson()
	receiver := object.New(nil).Put("age", 50)
	ok, err := reflection.SetWith(person, "info", 1, receiver)
	if err != nil {
		return err
	}
	c.log("update succeeded?", ok)
	age, err := reflection.Get(receiver, "age")
	if err != nil {
		return err
	}
	c.log(age)
	return nil
}

func demoReflectHasDelete(c *console) error {
	person := newTourPerson()
	has, err := reflection.Has(person, "age")
	if err != nil {
		return err
	}
	c.log(has)
	deleted, err := reflection.DeleteField(person, "age")
	if err != nil {
		return err
	}
	c.log(deleted)
	c.log(person)
	return nil
}

func newAnimal() *object.Object {
	return object.NewFunction("Animal", func(this object.Value, args []object.Value) (object.Value, error) {
		self, ok := object.AsTarget(this)
		if !ok {
			return object.Undefined, nil
		}
		for i, k := range []string{"type", "color"} {
			if i < len(args) {
				if _, err := reflection.Set(self, k, args[i]); err != nil {
					return nil, err
				}
			}
		}
		return object.Undefined, nil
	})
}

func demoReflectConstruct(c *console) error {
	animal := newAnimal()
	dog, err := reflection.Construct(animal, []object.Value{"dog", "white"})
	if err != nil {
		return err
	}
	c.log(dog)
	proto, err := reflection.GetPrototype(dog)
	if err != nil {
		return err
	}
	c.log(proto == object.Target(animal.PrototypeObject()))
	return nil
}

func demoReflectSetPrototype(c *console) error {
	cat := object.New(nil)
	list := object.NewClass("List", nil)
	ok, err := reflection.SetPrototype(cat, list.PrototypeObject())
	if err != nil {
		return err
	}
	c.log("setPrototype(cat, List.prototype)", ok)
	c.log(cat)
	return nil
}

func demoReflectApply(c *console) error {
	add := object.NewFunction("add", func(this object.Value, args []object.Value) (object.Value, error) {
		n, err := numbers(args, 2)
		if err != nil {
			return nil, err
		}
		return n[0] + n[1], nil
	})
	sum, err := reflection.Apply(add, nil, []object.Value{10, 20})
	if err != nil {
		return err
	}
	c.log(sum)

	calculator := object.New(nil).Put("factor", 2)
	calculator.Put("multiply", object.NewMethod("multiply", func(this object.Value, args []object.Value) (object.Value, error) {
		self, ok := object.AsTarget(this)
		if !ok {
			return nil, fmt.Errorf("multiply: this is not an object")
		}
		factor, err := reflection.Get(self, "factor")
		if err != nil {
			return nil, err
		}
		n, err := numbers(append([]object.Value{factor}, args...), 2)
		if err != nil {
			return nil, err
		}
		return n[0] * n[1], nil
	}))
	multiply, err := reflection.Get(calculator, "multiply")
	if err != nil {
		return err
	}
	product, err := reflection.Apply(multiply, calculator, []object.Value{5})
	if err != nil {
		return err
	}
	c.log(product)
	return nil
}
