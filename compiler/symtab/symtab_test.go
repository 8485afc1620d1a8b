package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

type stackEmitter struct {
	*ir.Builder

	allocs int
}

func newEmitter() *stackEmitter {
	b := ir.NewBuilder(ir.NewModule("test"))
	b.Define("main", tp.Func{Out: tp.I32}, nil)

	return &stackEmitter{Builder: b}
}

func (e *stackEmitter) Allocate(name string, t tp.Type) ir.Slot {
	e.allocs++
	return e.Alloca(name, t)
}

func TestScopeShadowing(t *testing.T) {
	st := New()
	st.EnterScope()

	x, err := st.DeclareSymbol("x", tp.Integer, false, Bounds{})
	require.NoError(t, err)

	_, err = st.DeclareSymbol("x", tp.Real, false, Bounds{})
	require.ErrorIs(t, err, diag.ErrDuplicateDeclaration)

	st.EnterScope()

	inner, err := st.DeclareSymbol("x", tp.Real, false, Bounds{})
	require.NoError(t, err)

	sym, ok := st.Find("x")
	require.True(t, ok)
	assert.Same(t, inner, sym)
	assert.True(t, st.Declared("x"))

	typ, err := st.SymbolType("x")
	require.NoError(t, err)
	assert.Equal(t, tp.Type(tp.Double), typ)

	st.ExitScope()

	sym, ok = st.Find("x")
	require.True(t, ok)
	assert.Same(t, x, sym)
	assert.Equal(t, tp.Integer, sym.Type)

	st.ExitScope()
	assert.False(t, st.CheckDeclaration("x"))

	st.ExitScope() // empty pop is fine
	assert.Equal(t, 0, st.Depth())

	_, err = st.DeclareSymbol("y", tp.Integer, false, Bounds{})
	assert.Error(t, err)
}

func TestArrayBounds(t *testing.T) {
	st := New()
	st.EnterScope()

	_, err := st.DeclareSymbol("a", tp.Integer, true, Bounds{Start: 5, End: 4})
	require.ErrorIs(t, err, diag.ErrInvalidArrayBounds)
	assert.False(t, st.CheckDeclaration("a"))

	a, err := st.DeclareSymbol("a", tp.Integer, true, Bounds{Start: 1, End: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())

	typ, err := st.SymbolType("a")
	require.NoError(t, err)
	assert.Equal(t, tp.Type(tp.Array{X: tp.I32, Len: 1}), typ)
}

func TestAllocateMemoized(t *testing.T) {
	st := New()
	st.EnterScope()

	e := newEmitter()

	sym, err := st.DeclareSymbol("x", tp.Char, false, Bounds{})
	require.NoError(t, err)

	_, ok := sym.Slot()
	assert.False(t, ok)

	s1, err := st.Allocate(e, "x")
	require.NoError(t, err)

	s2, err := st.Allocate(e, "x")
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, 1, e.allocs)
	assert.Equal(t, tp.Type(tp.I8), s1.T)

	_, err = st.Allocate(e, "nope")
	require.ErrorIs(t, err, diag.ErrUndeclaredIdentifier)
}

func TestLookupElement(t *testing.T) {
	st := New()
	st.EnterScope()

	e := newEmitter()

	_, err := st.DeclareSymbol("a", tp.Integer, true, Bounds{Start: 3, End: 7})
	require.NoError(t, err)

	_, err = st.DeclareSymbol("z", tp.Integer, true, Bounds{Start: 0, End: 7})
	require.NoError(t, err)

	_, err = st.DeclareSymbol("v", tp.Integer, false, Bounds{})
	require.NoError(t, err)

	addr, err := st.LookupSymbol(e, "a", ir.ConstInt(tp.I32, 4))
	require.NoError(t, err)
	assert.Equal(t, tp.Type(tp.Ptr{X: tp.I32}), addr.Type())

	code := e.Block().Code
	require.Len(t, code, 3) // alloca, sub, elemaddr

	sub, ok := code[1].(ir.BinOp)
	require.True(t, ok)
	assert.Equal(t, ir.Sub, sub.Op)
	assert.Equal(t, ir.Value(ir.ConstInt(tp.I32, 3)), sub.R)

	ea, ok := code[2].(ir.ElemAddr)
	require.True(t, ok)
	assert.Equal(t, sub.Out, ea.Index)

	// zero-based arrays skip the offset
	_, err = st.LookupSymbol(e, "z", ir.ConstInt(tp.I32, 4))
	require.NoError(t, err)
	assert.Len(t, e.Block().Code, 5)

	_, err = st.LookupSymbol(e, "v", ir.ConstInt(tp.I32, 0))
	require.ErrorIs(t, err, diag.ErrMalformedArrayAccess)

	v, err := st.LookupSymbol(e, "v", nil)
	require.NoError(t, err)
	assert.IsType(t, ir.Slot{}, v)
}

func TestDeclareFunc(t *testing.T) {
	st := New()
	st.EnterScope()

	f, err := st.DeclareFunc("sq", []tp.Kind{tp.Real}, tp.Real)
	require.NoError(t, err)
	assert.Equal(t, Function, f.Kind)
	assert.Equal(t, tp.Type(tp.Func{In: []tp.Type{tp.Double}, Out: tp.Double}), f.NativeType())

	_, err = st.Allocate(newEmitter(), "sq")
	assert.Error(t, err)

	_, err = st.DeclareFunc("sq", nil, tp.None)
	require.ErrorIs(t, err, diag.ErrDuplicateDeclaration)
}
