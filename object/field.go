package object

// Getter computes a field's value with its context bound to this.
type Getter func(this Target) (Value, error)

// Setter stores a field's value with its context bound to this.
type Setter func(this Target, value Value) error

// Field is either a stored value or a (Get, Set) accessor pair.
type Field struct {
	Value Value
	Get   Getter
	Set   Setter

	ReadOnly  bool // writes return false
	Permanent bool // deletes return false
	Hidden    bool // skipped by Keys, formatting and snapshots
}

// IsAccessor reports whether the field is computed rather than stored.
func (f *Field) IsAccessor() bool {
	return f.Get != nil || f.Set != nil
}

// Accessor builds an accessor field from a getter and setter, either of
// which may be nil.
func Accessor(get Getter, set Setter) Field {
	return Field{Get: get, Set: set}
}
