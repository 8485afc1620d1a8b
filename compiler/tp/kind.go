package tp

import (
	"strings"

	"github.com/slowlang/pasir/compiler/diag"
)

type (
	// Kind is a source language scalar type.
	Kind int8
)

const (
	None Kind = iota
	Integer
	Real
	Boolean
	Char
	String
	Date
)

var registry = map[string]Kind{
	"int":     Integer,
	"integer": Integer,
	"real":    Real,
	"boolean": Boolean,
	"char":    Char,
	"string":  String,
	"date":    Date,
}

// Resolve maps a type name to its Kind. Names are case insensitive.
func Resolve(name string) (Kind, error) {
	k, ok := registry[strings.ToLower(name)]
	if !ok {
		return None, diag.New(diag.UnknownType, name)
	}

	return k, nil
}

// Native returns the storage representation of the kind.
func (k Kind) Native() Type {
	switch k {
	case Integer:
		return I32
	case Real:
		return Double
	case Boolean:
		return I1
	case Char:
		return I8
	case String, Date:
		return Bytes
	default:
		return Void{}
	}
}

func (k Kind) Category() Category {
	return CategoryOf(k.Native())
}

// Format is the printf conversion used by Output.
func (k Kind) Format() string {
	f, _ := Format(k.Native())
	return f
}

func (k Kind) String() string {
	switch k {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Boolean:
		return "BOOLEAN"
	case Char:
		return "CHAR"
	case String:
		return "STRING"
	case Date:
		return "DATE"
	default:
		return "NONE"
	}
}
