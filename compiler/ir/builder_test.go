package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/tp"
)

func TestBuilderBlocks(t *testing.T) {
	m := NewModule("test")
	b := NewBuilder(m)

	f := b.Define("main", tp.Func{Out: tp.I32}, nil)
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, "entry", f.Blocks[0].Name)

	then := b.NewBlock("if.then")
	then2 := b.NewBlock("if.then")
	assert.Equal(t, "if.then", then.Name)
	assert.Equal(t, "if.then1", then2.Name)
	assert.Equal(t, 2, then2.ID)

	b.CondBr(Bool(true), then, then2)
	assert.True(t, f.Blocks[0].Terminated())
	assert.Equal(t, []*Block{then, then2}, f.Blocks[0].Succs())

	b.SetInsertPoint(f, then)
	b.Ret(ConstInt(tp.I32, 0))
	assert.Empty(t, then.Succs())

	// emitting after a terminator opens an unreachable block
	b.Store(Null{}, Null{})
	require.Len(t, f.Blocks, 4)
	assert.Equal(t, "dead", b.Block().Name)
	assert.Len(t, then.Code, 1)
}

func TestBuilderValues(t *testing.T) {
	m := NewModule("test")
	b := NewBuilder(m)

	b.Define("f", tp.Func{In: []tp.Type{tp.Double}, Out: tp.Double}, []string{"x"})

	s := b.Alloca("a", tp.Array{X: tp.I32, Len: 3})
	assert.Equal(t, Stack, s.Class)
	assert.Equal(t, tp.Type(tp.Ptr{X: tp.Array{X: tp.I32, Len: 3}}), s.Type())

	p := b.ElemAddr(s, ConstInt(tp.I32, 1))
	assert.Equal(t, tp.Type(tp.Ptr{X: tp.I32}), p.Type())

	v := b.Load(p)
	assert.Equal(t, tp.Type(tp.I32), v.Type())

	arg := b.Arg(0)
	assert.Equal(t, Param, arg.Class)
	assert.Equal(t, tp.Type(tp.Double), arg.Type())

	c := b.Cmp(SLT, v, ConstInt(tp.I32, 3))
	assert.Equal(t, tp.Type(tp.I1), c.Type())

	g := b.GlobalVar("g", tp.Double)
	assert.Equal(t, Global, g.Class)
	require.Len(t, m.Vars, 1)

	d1 := b.String(".str", "hi")
	d2 := b.String(".str", "hi")
	assert.NotEqual(t, d1, d2)
	assert.Len(t, m.Data, 2)

	printf := b.Declare("printf", tp.Func{In: []tp.Type{tp.Bytes}, Out: tp.I32, Variadic: true})
	assert.Same(t, printf, b.Declare("printf", tp.Func{}))
	assert.NotNil(t, b.Call(printf, d1))

	proc := &Func{Name: "p", T: tp.Func{Out: tp.Void{}}}
	assert.Nil(t, b.Call(proc))
}

func TestZero(t *testing.T) {
	assert.Equal(t, Value(Int{T: tp.I32}), Zero(tp.I32))
	assert.Equal(t, Value(Float{}), Zero(tp.Double))
	assert.Equal(t, Value(Null{}), Zero(tp.Bytes))
	assert.Nil(t, Zero(tp.Void{}))
}

func TestBuilderGlobalNames(t *testing.T) {
	m := NewModule("test")
	b := NewBuilder(m)

	b.Define("main", tp.Func{Out: tp.I32}, nil)

	x := b.GlobalVar("helper", tp.I32)
	assert.Equal(t, "helper", m.Vars[x.ID].Name)

	h1 := b.Define("helper", tp.Func{}, nil)
	h2 := b.Define("helper", tp.Func{}, nil)
	assert.Equal(t, "helper.1", h1.Name)
	assert.Equal(t, "helper.2", h2.Name)

	p := b.Declare("printf", tp.Func{In: []tp.Type{tp.Bytes}, Out: tp.I32, Variadic: true})
	assert.Equal(t, "printf", p.Name)
	assert.Same(t, p, b.Declare("printf", p.T))
}
