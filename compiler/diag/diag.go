// Package diag defines the error kinds reported by the compiler.
//
// Semantic errors accumulate in a List while analysis continues.
// Code generation errors are returned up the call chain.
package diag

import (
	"fmt"
	"strings"
)

type (
	Kind int

	Error struct {
		Kind Kind
		Pos  int

		Name string

		Expected string
		Found    string

		Msg string
	}

	List []error
)

const (
	_ Kind = iota
	UnknownType
	UndeclaredIdentifier
	DuplicateDeclaration
	InvalidArrayBounds
	TypeMismatch
	UnknownOperator
	ArityMismatch
	UnknownFunction
	MissingReturn
	MalformedArrayAccess
	UnsupportedNode
)

var (
	ErrUnknownType          = &Error{Kind: UnknownType}
	ErrUndeclaredIdentifier = &Error{Kind: UndeclaredIdentifier}
	ErrDuplicateDeclaration = &Error{Kind: DuplicateDeclaration}
	ErrInvalidArrayBounds   = &Error{Kind: InvalidArrayBounds}
	ErrTypeMismatch         = &Error{Kind: TypeMismatch}
	ErrUnknownOperator      = &Error{Kind: UnknownOperator}
	ErrArityMismatch        = &Error{Kind: ArityMismatch}
	ErrUnknownFunction      = &Error{Kind: UnknownFunction}
	ErrMissingReturn        = &Error{Kind: MissingReturn}
	ErrMalformedArrayAccess = &Error{Kind: MalformedArrayAccess}
	ErrUnsupportedNode      = &Error{Kind: UnsupportedNode}
)

func New(k Kind, name string) *Error {
	return &Error{Kind: k, Name: name}
}

func Mismatch(name, expected, found string) *Error {
	return &Error{Kind: TypeMismatch, Name: name, Expected: expected, Found: found}
}

func Arity(name string, expected, found int) *Error {
	return &Error{Kind: ArityMismatch, Name: name, Expected: fmt.Sprint(expected), Found: fmt.Sprint(found)}
}

func Operator(op, found string) *Error {
	return &Error{Kind: UnknownOperator, Name: op, Found: found}
}

func Bounds(name string, start, end int) *Error {
	return &Error{Kind: InvalidArrayBounds, Name: name, Msg: fmt.Sprintf("[%d..%d]", start, end)}
}

// At returns a copy of e positioned at pos.
func (e *Error) At(pos int) *Error {
	c := *e
	c.Pos = pos

	return &c
}

// Is matches by Kind, so wrapped errors compare against the Err* values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.Kind == e.Kind
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Pos > 0 {
		fmt.Fprintf(&b, "pos %d: ", e.Pos)
	}

	b.WriteString(e.Kind.String())

	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}

	switch {
	case e.Kind == UnknownOperator && e.Found != "":
		fmt.Fprintf(&b, " for %v", e.Found)
	case e.Expected != "" || e.Found != "":
		fmt.Fprintf(&b, ": expected %v, found %v", e.Expected, e.Found)
	}

	if e.Msg != "" {
		fmt.Fprintf(&b, ": %v", e.Msg)
	}

	return b.String()
}

func (k Kind) String() string {
	switch k {
	case UnknownType:
		return "unknown type"
	case UndeclaredIdentifier:
		return "undeclared identifier"
	case DuplicateDeclaration:
		return "duplicate declaration"
	case InvalidArrayBounds:
		return "invalid array bounds"
	case TypeMismatch:
		return "type mismatch"
	case UnknownOperator:
		return "unknown operator"
	case ArityMismatch:
		return "arity mismatch"
	case UnknownFunction:
		return "unknown function"
	case MissingReturn:
		return "missing return"
	case MalformedArrayAccess:
		return "malformed array access"
	case UnsupportedNode:
		return "unsupported node"
	default:
		return fmt.Sprintf("error(%d)", int(k))
	}
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%d errors:", len(l))

	for _, e := range l {
		b.WriteString("\n\t")
		b.WriteString(e.Error())
	}

	return b.String()
}

// Unwrap lets errors.Is and errors.As look into every element.
func (l List) Unwrap() []error { return l }

// Err returns nil for an empty list.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}

	return l
}
