package tp

import (
	"fmt"
	"strings"
)

type (
	// Type is a native representation a backend can lay out.
	Type interface {
		Size() int
		String() string
	}

	Void struct{}

	Int struct {
		Bits   int16
		Signed bool
	}

	Float struct {
		Bits int16
	}

	// Ptr is an opaque pointer. X is the pointee when known.
	Ptr struct {
		X Type
	}

	Array struct {
		X   Type
		Len int
	}

	Func struct {
		In       []Type
		Out      Type
		Variadic bool
	}

	Category int8
)

const (
	Invalid Category = iota
	Integral
	Floating
	Logical
	Pointer
)

var (
	I1     = Int{Bits: 1}
	I8     = Int{Bits: 8, Signed: true}
	I32    = Int{Bits: 32, Signed: true}
	Double = Float{Bits: 64}
	Bytes  = Ptr{X: I8}
)

func (x Void) Size() int { return 0 }

func (x Int) Size() int {
	return (int(x.Bits) + 7) / 8
}

func (x Float) Size() int {
	return int(x.Bits) / 8
}

func (x Ptr) Size() int {
	return 8
}

func (x Array) Size() int {
	return x.X.Size() * x.Len
}

func (x Func) Size() int {
	return 8
}

func (x Void) String() string { return "void" }

func (x Int) String() string { return fmt.Sprintf("i%d", x.Bits) }

func (x Float) String() string {
	if x.Bits == 32 {
		return "float"
	}

	return "double"
}

func (x Ptr) String() string { return "ptr" }

func (x Array) String() string { return fmt.Sprintf("[%d x %v]", x.Len, x.X) }

func (x Func) String() string {
	var b strings.Builder

	out := x.Out
	if out == nil {
		out = Void{}
	}

	fmt.Fprintf(&b, "%v (", out)

	for i, t := range x.In {
		if i != 0 {
			b.WriteString(", ")
		}

		b.WriteString(t.String())
	}

	if x.Variadic {
		if len(x.In) != 0 {
			b.WriteString(", ")
		}

		b.WriteString("...")
	}

	b.WriteString(")")

	return b.String()
}

// CategoryOf returns the coarse class that drives operator selection.
func CategoryOf(t Type) Category {
	switch t := t.(type) {
	case Int:
		if t.Bits == 1 {
			return Logical
		}

		return Integral
	case Float:
		return Floating
	case Ptr:
		return Pointer
	default:
		return Invalid
	}
}

func (c Category) String() string {
	switch c {
	case Integral:
		return "integer"
	case Floating:
		return "floating"
	case Logical:
		return "boolean"
	case Pointer:
		return "pointer"
	default:
		return "invalid"
	}
}

// Equal reports whether a and b are the same native type.
func Equal(a, b Type) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case Void:
		_, ok := b.(Void)
		return ok
	case Int:
		b, ok := b.(Int)
		return ok && a == b
	case Float:
		b, ok := b.(Float)
		return ok && a == b
	case Ptr:
		_, ok := b.(Ptr)
		return ok
	case Array:
		b, ok := b.(Array)
		return ok && a.Len == b.Len && Equal(a.X, b.X)
	case Func:
		b, ok := b.(Func)
		if !ok || a.Variadic != b.Variadic || len(a.In) != len(b.In) || !Equal(a.Out, b.Out) {
			return false
		}

		for i := range a.In {
			if !Equal(a.In[i], b.In[i]) {
				return false
			}
		}

		return true
	default:
		return false
	}
}

// Elem returns the element type of arrays and the type itself otherwise.
func Elem(t Type) Type {
	if a, ok := t.(Array); ok {
		return a.X
	}

	return t
}

// Format returns the printf conversion for a value of type t.
func Format(t Type) (string, bool) {
	switch CategoryOf(t) {
	case Integral:
		if t.(Int).Bits == 8 {
			return "%c", true
		}

		return "%d", true
	case Logical:
		return "%d", true
	case Floating:
		return "%f", true
	case Pointer:
		return "%s", true
	}

	return "", false
}

// ScanFormat returns the scanf conversion for a target of type t.
// Characters skip leading whitespace.
func ScanFormat(t Type) (string, bool) {
	f, ok := Format(t)
	if f == "%c" {
		f = " %c"
	}

	return f, ok
}
