package object

// Target is the structural contract shared by ordinary objects and proxies.
//
// Receivers are explicit: accessor fields run with their context bound to
// the receiver passed to GetField/SetField, never to the object that owns
// the field. A nil receiver means the target itself.
type Target interface {
	// GetField returns the value at key, walking the type-link chain.
	// Missing keys yield Undefined.
	GetField(key string, receiver Target) (Value, error)

	// SetField assigns key. Data writes land on receiver; setters run
	// with receiver as their context.
	SetField(key string, value Value, receiver Target) (bool, error)

	// HasField reports existence, including inherited fields.
	HasField(key string) (bool, error)

	// DeleteField removes an own field. Absent keys succeed.
	DeleteField(key string) (bool, error)

	// DefineField creates or updates an own data field. It refuses
	// accessor and read-only fields.
	DefineField(key string, value Value) (bool, error)

	// Prototype returns the type-link, nil when it is null.
	Prototype() (Target, error)

	// SetPrototype replaces the type-link. Cycles are refused with false.
	SetPrototype(proto Target) (bool, error)

	// Call invokes the callable contract with an explicit this.
	Call(this Value, args []Value) (Value, error)

	// Construct invokes the construction contract. The new instance's
	// type-link comes from newTarget's "prototype" field.
	Construct(args []Value, newTarget Target) (Target, error)

	Callable() bool
	Constructible() bool
}

// Unwrapper is implemented by targets that stand in front of another
// target. Formatting and snapshots look through it; dispatch never does.
type Unwrapper interface {
	Unwrap() Target
}
