// Package symtab keeps lexical scopes of variables, arrays and callables.
//
// Storage is materialized lazily: a symbol is Declared with no Slot,
// becomes Allocated on first Allocate, and is Discarded with its scope.
package symtab

import (
	"tlog.app/go/errors"
	"tlog.app/go/loc"

	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

type (
	// Emitter is the narrow part of a backend the table needs
	// to reserve storage and compute element addresses.
	Emitter interface {
		Allocate(name string, t tp.Type) ir.Slot
		Bin(op ir.Op, l, r ir.Value) ir.Value
		ElemAddr(base, idx ir.Value) ir.Value
	}

	Table struct {
		scopes []*Scope
	}

	Scope struct {
		syms  map[string]*Symbol
		depth int

		from loc.PC
	}

	// Symbol is a named entity. Kind selects which fields are meaningful.
	Symbol struct {
		Name string
		Kind SymKind

		// Type is the variable type, the array element type
		// or the function return type (None for procedures).
		Type tp.Kind

		Start, End int

		Params []tp.Kind

		Func *ir.Func

		slot      ir.Slot
		allocated bool
	}

	Bounds struct {
		Start, End int
	}

	SymKind int8
)

const (
	Variable SymKind = iota
	Array
	Function

	// Struct and Class are reserved for aggregate types.
	Struct
	Class
)

func New() *Table {
	return &Table{}
}

func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, &Scope{
		syms:  map[string]*Symbol{},
		depth: len(t.scopes),
		from:  loc.Caller(1),
	})
}

// ExitScope pops the innermost scope. Popping an empty table does nothing.
func (t *Table) ExitScope() {
	if len(t.scopes) == 0 {
		return
	}

	t.scopes[len(t.scopes)-1] = nil
	t.scopes = t.scopes[:len(t.scopes)-1]
}

func (t *Table) Depth() int { return len(t.scopes) }

// Current is the innermost scope or nil.
func (t *Table) Current() *Scope {
	if len(t.scopes) == 0 {
		return nil
	}

	return t.scopes[len(t.scopes)-1]
}

// DeclareSymbol adds a variable or an array to the current scope.
func (t *Table) DeclareSymbol(name string, typ tp.Kind, isArray bool, b Bounds) (*Symbol, error) {
	sym := &Symbol{
		Name: name,
		Kind: Variable,
		Type: typ,
	}

	if isArray {
		if b.End < b.Start {
			return nil, diag.Bounds(name, b.Start, b.End)
		}

		sym.Kind = Array
		sym.Start = b.Start
		sym.End = b.End
	}

	err := t.declare(sym)
	if err != nil {
		return nil, err
	}

	return sym, nil
}

// DeclareFunc adds a callable to the current scope. ret is None for procedures.
func (t *Table) DeclareFunc(name string, params []tp.Kind, ret tp.Kind) (*Symbol, error) {
	sym := &Symbol{
		Name:   name,
		Kind:   Function,
		Type:   ret,
		Params: params,
	}

	err := t.declare(sym)
	if err != nil {
		return nil, err
	}

	return sym, nil
}

func (t *Table) declare(sym *Symbol) error {
	s := t.Current()
	if s == nil {
		return errors.New("declare %v: no scope", sym.Name)
	}

	if _, ok := s.syms[sym.Name]; ok {
		return diag.New(diag.DuplicateDeclaration, sym.Name)
	}

	s.syms[sym.Name] = sym

	return nil
}

// Find searches scopes innermost to outermost.
func (t *Table) Find(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].syms[name]; ok {
			return sym, true
		}
	}

	return nil, false
}

// CheckDeclaration reports whether name is bound in any active scope.
func (t *Table) CheckDeclaration(name string) bool {
	_, ok := t.Find(name)
	return ok
}

// Declared reports whether name is bound in the current scope.
func (t *Table) Declared(name string) bool {
	s := t.Current()
	if s == nil {
		return false
	}

	_, ok := s.syms[name]

	return ok
}

// SymbolType returns the native type of name.
// Arrays return the composite array type.
func (t *Table) SymbolType(name string) (tp.Type, error) {
	sym, ok := t.Find(name)
	if !ok {
		return nil, diag.New(diag.UndeclaredIdentifier, name)
	}

	return sym.NativeType(), nil
}

// Allocate materializes storage for name on first use.
// Later calls return the same slot.
func (t *Table) Allocate(e Emitter, name string) (ir.Slot, error) {
	sym, ok := t.Find(name)
	if !ok {
		return ir.Slot{}, diag.New(diag.UndeclaredIdentifier, name)
	}

	if sym.Kind == Function {
		return ir.Slot{}, errors.New("allocate %v: callable has no storage", name)
	}

	if !sym.allocated {
		sym.Bind(e.Allocate(name, sym.NativeType()))
	}

	return sym.slot, nil
}

// LookupSymbol returns the storage of name. With a non-nil index
// it returns the address of element index of an array. The index
// is not checked against the bounds.
func (t *Table) LookupSymbol(e Emitter, name string, index ir.Value) (ir.Value, error) {
	sym, ok := t.Find(name)
	if !ok {
		return nil, diag.New(diag.UndeclaredIdentifier, name)
	}

	slot, err := t.Allocate(e, name)
	if err != nil {
		return nil, err
	}

	if index == nil {
		return slot, nil
	}

	if sym.Kind != Array {
		return nil, diag.New(diag.MalformedArrayAccess, name)
	}

	if sym.Start != 0 {
		index = e.Bin(ir.Sub, index, ir.ConstInt(tp.I32, int64(sym.Start)))
	}

	return e.ElemAddr(slot, index), nil
}

// Len is the element count of an array symbol.
func (s *Symbol) Len() int {
	return s.End - s.Start + 1
}

func (s *Symbol) NativeType() tp.Type {
	switch s.Kind {
	case Array:
		return tp.Array{X: s.Type.Native(), Len: s.Len()}
	case Function:
		ft := tp.Func{Out: s.Type.Native()}

		for _, p := range s.Params {
			ft.In = append(ft.In, p.Native())
		}

		return ft
	default:
		return s.Type.Native()
	}
}

// Bind attaches storage that was created outside the table.
func (s *Symbol) Bind(slot ir.Slot) {
	s.slot = slot
	s.allocated = true
}

func (s *Symbol) Slot() (ir.Slot, bool) {
	return s.slot, s.allocated
}

func (s *Scope) Depth() int { return s.depth }

func (s *Scope) From() loc.PC { return s.from }

func (k SymKind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Array:
		return "array"
	case Function:
		return "function"
	case Struct:
		return "struct"
	case Class:
		return "class"
	default:
		return "symbol?"
	}
}
