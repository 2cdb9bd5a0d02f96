// Package snapshot captures object graphs as canonical CBOR so two values
// can be compared by structure rather than identity.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/intercede/object"
)

// Node types.
const (
	TypeNull      = "null"
	TypeUndefined = "undefined"
	TypeBool      = "bool"
	TypeNumber    = "number"
	TypeString    = "string"
	TypeArray     = "array"
	TypeObject    = "object"
	TypeFunction  = "function"
	TypeCircular  = "circular"
	TypeRevoked   = "revoked"
	TypeOpaque    = "opaque"
)

// Node is the captured form of a single value.
type Node struct {
	Type   string  `cbor:"1,keyasint"`
	Bool   bool    `cbor:"2,keyasint,omitempty"`
	Number float64 `cbor:"3,keyasint,omitempty"`
	String string  `cbor:"4,keyasint,omitempty"`
	Items  []Node  `cbor:"5,keyasint,omitempty"`
	Class  string  `cbor:"6,keyasint,omitempty"`
	Fields []Entry `cbor:"7,keyasint,omitempty"`
}

// Entry is one visible own field of a captured object. Accessors are
// recorded without running them.
type Entry struct {
	Key      string `cbor:"1,keyasint"`
	Accessor string `cbor:"2,keyasint,omitempty"` // "get", "set" or "get/set"
	Value    *Node  `cbor:"3,keyasint,omitempty"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Capture walks v and returns its structural form. Proxies are looked
// through, so a proxy and its target capture identically.
func Capture(v object.Value) Node {
	c := capturer{seen: make(map[*object.Object]bool)}
	return c.node(v)
}

type capturer struct {
	seen map[*object.Object]bool
}

func (c *capturer) node(v object.Value) Node {
	if object.IsUndefined(v) {
		return Node{Type: TypeUndefined}
	}
	if n, ok := object.ToNumber(v); ok {
		return Node{Type: TypeNumber, Number: n}
	}
	switch x := v.(type) {
	case nil:
		return Node{Type: TypeNull}
	case bool:
		return Node{Type: TypeBool, Bool: x}
	case string:
		return Node{Type: TypeString, String: x}
	case float64: // NaN
		return Node{Type: TypeNumber, Number: x}
	case []object.Value:
		items := make([]Node, len(x))
		for i, item := range x {
			items[i] = c.node(item)
		}
		return Node{Type: TypeArray, Items: items}
	case *object.Object:
		return c.object(x)
	case object.Unwrapper:
		inner := x.Unwrap()
		if object.IsNil(inner) {
			return Node{Type: TypeRevoked}
		}
		return c.node(inner)
	}
	return Node{Type: TypeOpaque, String: fmt.Sprintf("%T", v)}
}

func (c *capturer) object(o *object.Object) Node {
	if o == nil {
		return Node{Type: TypeNull}
	}
	if o.IsFunction() {
		return Node{Type: TypeFunction, String: o.Name()}
	}
	if c.seen[o] {
		return Node{Type: TypeCircular}
	}
	c.seen[o] = true
	defer delete(c.seen, o)

	n := Node{Type: TypeObject, Class: object.ClassName(o)}
	for _, k := range o.Keys() {
		f, _ := o.Own(k)
		e := Entry{Key: k}
		switch {
		case f.Get != nil && f.Set != nil:
			e.Accessor = "get/set"
		case f.Get != nil:
			e.Accessor = "get"
		case f.Set != nil:
			e.Accessor = "set"
		default:
			child := c.node(f.Value)
			e.Value = &child
		}
		n.Fields = append(n.Fields, e)
	}
	return n
}

// Marshal captures v and encodes it as canonical CBOR.
func Marshal(v object.Value) ([]byte, error) {
	n := Capture(v)
	return encMode.Marshal(&n)
}

// Unmarshal decodes a snapshot produced by Marshal.
func Unmarshal(data []byte) (*Node, error) {
	var n Node
	if err := cbor.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return &n, nil
}

// Digest returns the SHA-256 of v's canonical encoding.
func Digest(v object.Value) ([32]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Equal reports whether a and b have the same structure.
func Equal(a, b object.Value) (bool, error) {
	da, err := Marshal(a)
	if err != nil {
		return false, err
	}
	db, err := Marshal(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

// Unordered returns a copy of n with object fields sorted by key, for
// comparisons that ignore insertion order.
func Unordered(n Node) Node {
	out := n
	if len(n.Items) > 0 {
		out.Items = make([]Node, len(n.Items))
		for i, item := range n.Items {
			out.Items[i] = Unordered(item)
		}
	}
	if len(n.Fields) > 0 {
		out.Fields = make([]Entry, len(n.Fields))
		for i, e := range n.Fields {
			if e.Value != nil {
				child := Unordered(*e.Value)
				e.Value = &child
			}
			out.Fields[i] = e
		}
		sort.Slice(out.Fields, func(i, j int) bool {
			return out.Fields[i].Key < out.Fields[j].Key
		})
	}
	return out
}
