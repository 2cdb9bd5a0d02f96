package object

import "testing"

func TestFormat(t *testing.T) {
	student := NewClass("Student", nil)
	inst, _ := student.Construct(nil, nil)
	inst.SetField("name", "lisi", inst)
	inst.SetField("_score", 98, inst)

	nested := New(nil).Put("inner", New(nil).Put("deep", New(nil).Put("deeper", New(nil).Put("x", 1))))

	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"string top level", "zhangsan", "zhangsan"},
		{"null", nil, "null"},
		{"undefined", Undefined, "undefined"},
		{"int", 30, "30"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"empty object", New(nil), "{}"},
		{"record", New(nil).Put("name", "zhangsan").Put("age", 30), "{ name: 'zhangsan', age: 30 }"},
		{"quoted key", New(nil).Put("a-b", 1), "{ 'a-b': 1 }"},
		{"accessor", personWithInfo(), "{ name: 'Tom', age: 24, info: [Getter/Setter] }"},
		{"class instance", inst, "Student { name: 'lisi', _score: 98 }"},
		{"function", NewFunction("sub", nil), "[Function: sub]"},
		{"class", student, "[class Student]"},
		{"array", []Value{1, "a"}, "[ 1, 'a' ]"},
		{"depth limit", nested, "{ inner: { deep: { deeper: [Object] } } }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCircular(t *testing.T) {
	o := New(nil)
	o.Put("self", o)
	if got := Format(o); got != "{ self: [Circular] }" {
		t.Errorf("Format() = %q", got)
	}
}
