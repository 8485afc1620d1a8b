package format

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

func TestFormatModule(t *testing.T) {
	m := ir.NewModule("hello")
	b := ir.NewBuilder(m)

	printf := b.Declare("printf", tp.Func{In: []tp.Type{tp.Bytes}, Out: tp.I32, Variadic: true})

	b.Define("main", tp.Func{Out: tp.I32}, nil)

	x := b.GlobalVar("x", tp.I32)
	b.Store(x, ir.ConstInt(tp.I32, 5))
	v := b.Load(x)
	s := b.Bin(ir.Add, v, ir.ConstInt(tp.I32, 1))

	f := b.String(".fmt", "%d\n")
	b.Call(printf, f, s)
	b.Ret(ir.ConstInt(tp.I32, 0))

	text, err := Format(context.Background(), nil, m)
	require.NoError(t, err)

	t.Logf("module\n%s", text)

	for _, line := range []string{
		`@.fmt.0 = private constant [4 x i8] c"%d\0A\00"`,
		`@x = global i32 0`,
		`declare i32 @printf(ptr, ...)`,
		`define i32 @main() {`,
		"\tstore i32 5, ptr @x\n",
		"\t%t0 = load i32, ptr @x\n",
		"\t%t1 = add i32 %t0, 1\n",
		"\t%t2 = call i32 (ptr, ...) @printf(ptr @.fmt.0, i32 %t1)\n",
		"\tret i32 0\n",
	} {
		assert.Contains(t, string(text), line)
	}
}

func TestFormatUnsupported(t *testing.T) {
	_, err := Format(context.Background(), nil, 3)
	assert.Error(t, err)
}

func TestFormatNames(t *testing.T) {
	m := ir.NewModule("names")
	b := ir.NewBuilder(m)

	b.Define("main", tp.Func{Out: tp.I32}, nil)
	b.GlobalVar("g", tp.I32)

	b.Define("g", tp.Func{In: []tp.Type{tp.I32}, Out: tp.I32}, []string{"t0"})
	slot := b.Alloca("t0", tp.I32)
	b.Store(slot, b.Arg(0))
	b.Ret(b.Load(slot))

	text, err := Format(context.Background(), nil, m)
	require.NoError(t, err)

	for _, line := range []string{
		"@g = global i32 0\n",
		"define i32 @g.1(i32 %t0.arg) {\n",
		"\t%t0.addr0 = alloca i32\n",
		"\tstore i32 %t0.arg, ptr %t0.addr0\n",
		"\t%t0 = load i32, ptr %t0.addr0\n",
		"\tret i32 %t0\n",
	} {
		assert.Contains(t, string(text), line)
	}
}
