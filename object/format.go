package object

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFormatDepth bounds nested object rendering; deeper objects print as
// [Object].
const MaxFormatDepth = 2

// Format renders v the way a console prints it: strings bare at top level,
// quoted inside containers, objects as "Class { key: value }".
func Format(v Value) string {
	if s, ok := v.(string); ok {
		return s
	}
	var b strings.Builder
	f := formatter{b: &b, seen: make(map[*Object]bool)}
	f.value(v, 0)
	return b.String()
}

type formatter struct {
	b    *strings.Builder
	seen map[*Object]bool
}

func (f *formatter) value(v Value, depth int) {
	switch x := v.(type) {
	case nil:
		f.b.WriteString("null")
	case undefined:
		f.b.WriteString("undefined")
	case bool:
		f.b.WriteString(strconv.FormatBool(x))
	case string:
		f.b.WriteString(quote(x))
	case float32:
		f.b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		f.b.WriteString(strconv.FormatFloat(x, 'f', -1, 64))
	case []Value:
		f.array(x, depth)
	case *Object:
		f.object(x, depth)
	case Unwrapper:
		inner := x.Unwrap()
		if IsNil(inner) {
			f.b.WriteString("<revoked proxy>")
			return
		}
		f.value(inner, depth)
	default:
		fmt.Fprint(f.b, x)
	}
}

func (f *formatter) array(items []Value, depth int) {
	if len(items) == 0 {
		f.b.WriteString("[]")
		return
	}
	f.b.WriteString("[ ")
	for i, item := range items {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.value(item, depth+1)
	}
	f.b.WriteString(" ]")
}

func (f *formatter) object(o *Object, depth int) {
	if o == nil {
		f.b.WriteString("null")
		return
	}
	if o.fn != nil {
		if o.fn.class {
			fmt.Fprintf(f.b, "[class %s]", o.fn.name)
		} else {
			fmt.Fprintf(f.b, "[Function: %s]", o.fn.name)
		}
		return
	}
	if f.seen[o] {
		f.b.WriteString("[Circular]")
		return
	}
	if name := ClassName(o); name != "" {
		f.b.WriteString(name)
		f.b.WriteByte(' ')
	}
	keys := o.Keys()
	if len(keys) == 0 {
		f.b.WriteString("{}")
		return
	}
	if depth > MaxFormatDepth {
		f.b.WriteString("[Object]")
		return
	}
	f.seen[o] = true
	defer delete(f.seen, o)

	f.b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			f.b.WriteString(", ")
		}
		f.b.WriteString(formatKey(k))
		f.b.WriteString(": ")
		field := o.fields[k]
		switch {
		case field.Get != nil && field.Set != nil:
			f.b.WriteString("[Getter/Setter]")
		case field.Get != nil:
			f.b.WriteString("[Getter]")
		case field.Set != nil:
			f.b.WriteString("[Setter]")
		default:
			f.value(field.Value, depth+1)
		}
	}
	f.b.WriteString(" }")
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

// formatKey leaves identifier-like keys bare and quotes the rest.
func formatKey(k string) string {
	if k == "" {
		return "''"
	}
	for i, r := range k {
		ok := r == '_' || r == '$' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(i > 0 && r >= '0' && r <= '9')
		if !ok {
			return quote(k)
		}
	}
	return k
}
