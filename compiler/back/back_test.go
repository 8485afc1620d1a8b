package back

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/front"
)

func run(t *testing.T, stdin string, prog ...ast.Node) string {
	t.Helper()

	ctx := context.Background()

	m, err := front.New(t.Name()).Compile(ctx, prog)
	require.NoError(t, err)

	var out bytes.Buffer

	code, err := Run(ctx, m, Options{
		Stdin:    strings.NewReader(stdin),
		Stdout:   &out,
		MaxSteps: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	return out.String()
}

func id(n string) *ast.Identifier { return &ast.Identifier{Name: n} }

func num(v int32) *ast.Integer { return &ast.Integer{Value: v} }

func decl(n, typ string) *ast.Declaration { return &ast.Declaration{Name: n, Type: typ} }

func set(n string, v ast.Node) *ast.Assignment { return &ast.Assignment{Name: n, Value: v} }

func bin(op ast.Op, l, r ast.Node) *ast.BinaryOp { return &ast.BinaryOp{Op: op, Left: l, Right: r} }

func cmp(op ast.Op, l, r ast.Node) *ast.Comparison { return &ast.Comparison{Op: op, Left: l, Right: r} }

func out(args ...ast.Node) *ast.Output { return &ast.Output{Args: args} }

func TestForSum(t *testing.T) {
	res := run(t, "",
		decl("sum", "INTEGER"),
		decl("i", "INTEGER"),
		&ast.For{
			Init: set("i", num(1)),
			Cond: cmp(ast.Le, id("i"), num(3)),
			Step: set("i", bin(ast.Add, id("i"), num(1))),
			Body: []ast.Node{set("sum", bin(ast.Add, id("sum"), id("i")))},
		},
		out(id("sum")),
	)

	assert.Equal(t, "6\n", res)
}

func TestRepeatRunsOnce(t *testing.T) {
	res := run(t, "",
		decl("n", "INTEGER"),
		&ast.Repeat{
			Body: []ast.Node{
				set("n", bin(ast.Add, id("n"), num(1))),
				out(id("n")),
			},
			Cond: &ast.Boolean{Value: true},
		},
	)

	assert.Equal(t, "1\n", res)
}

func TestWhile(t *testing.T) {
	res := run(t, "",
		decl("n", "INTEGER"),
		&ast.While{
			Cond: cmp(ast.Lt, id("n"), num(3)),
			Body: []ast.Node{
				out(id("n")),
				set("n", bin(ast.Add, id("n"), num(1))),
			},
		},
	)

	assert.Equal(t, "0\n1\n2\n", res)
}

func TestPostfix(t *testing.T) {
	res := run(t, "",
		decl("i", "INTEGER"),
		decl("old", "INTEGER"),
		decl("r", "REAL"),
		&ast.While{
			Cond: cmp(ast.Lt, id("i"), num(3)),
			Body: []ast.Node{
				set("old", &ast.BinaryOp{Op: ast.Add, Left: id("i")}),
				out(id("old"), &ast.String{Value: " "}, id("i")),
			},
		},
		&ast.BinaryOp{Op: ast.Sub, Left: id("r")},
		out(id("r")),
	)

	assert.Equal(t, "0 1\n1 2\n2 3\n-1.000000\n", res)
}

func TestNestedHelpers(t *testing.T) {
	outer := func(name string) *ast.Procedure {
		return &ast.Procedure{
			Name: name,
			Body: []ast.Node{
				&ast.Procedure{Name: "helper", Body: []ast.Node{out(&ast.String{Value: name})}},
				&ast.FuncCall{Name: "helper"},
			},
		}
	}

	res := run(t, "",
		outer("a"),
		outer("b"),
		&ast.FuncCall{Name: "b"},
		&ast.FuncCall{Name: "a"},
	)

	assert.Equal(t, "b\na\n", res)
}

func TestZeroValues(t *testing.T) {
	res := run(t, "",
		decl("x", "INTEGER"),
		decl("r", "REAL"),
		decl("b", "BOOLEAN"),
		decl("c", "CHAR"),
		&ast.Procedure{
			Name: "p",
			Body: []ast.Node{
				decl("y", "INTEGER"),
				&ast.ArrayDeclaration{Name: "a", Type: "REAL", Start: 1, End: 2},
				out(id("y"), &ast.ArrayAccess{Name: "a", Index: num(2)}),
			},
		},
		out(id("x")),
		out(id("r")),
		out(id("b")),
		out(id("c")),
		&ast.FuncCall{Name: "p"},
	)

	assert.Equal(t, "0\n0.000000\n0\n\x00\n00.000000\n", res)
}

func TestRoundTrip(t *testing.T) {
	res := run(t, "",
		decl("x", "INTEGER"),
		decl("r", "REAL"),
		decl("c", "CHAR"),
		decl("s", "STRING"),
		decl("d", "DATE"),
		decl("b", "BOOLEAN"),
		set("x", num(42)),
		set("r", &ast.Real{Value: 2.5}),
		set("c", &ast.Char{Value: 'z'}),
		set("s", &ast.String{Value: "hey"}),
		set("d", &ast.Date{Value: "2024-02-29"}),
		set("b", &ast.Boolean{Value: true}),
		out(id("x"), id("r"), id("c"), id("s"), id("d"), id("b")),
	)

	assert.Equal(t, "422.500000zhey2024-02-291\n", res)
}

func TestFunctions(t *testing.T) {
	fact := &ast.Function{
		Name:   "fact",
		Params: []ast.Param{{Name: "n", Type: "INTEGER"}},
		Ret:    "INTEGER",
		Body: []ast.Node{
			&ast.If{
				Cond: cmp(ast.Le, id("n"), num(1)),
				Then: []ast.Node{&ast.Return{Value: num(1)}},
				Else: []ast.Node{
					&ast.Return{Value: bin(ast.Mul, id("n"), &ast.FuncCall{Name: "fact", Args: []ast.Node{bin(ast.Sub, id("n"), num(1))}})},
				},
			},
		},
	}

	// parameters are copies
	bump := &ast.Procedure{
		Name:   "bump",
		Params: []ast.Param{{Name: "v", Type: "INTEGER"}},
		Body: []ast.Node{
			set("v", bin(ast.Add, id("v"), num(100))),
			out(id("v")),
		},
	}

	res := run(t, "",
		fact,
		bump,
		decl("x", "INTEGER"),
		set("x", num(5)),
		&ast.FuncCall{Name: "bump", Args: []ast.Node{id("x")}},
		out(&ast.FuncCall{Name: "fact", Args: []ast.Node{id("x")}}),
	)

	assert.Equal(t, "105\n120\n", res)
}

func TestOperators(t *testing.T) {
	res := run(t, "",
		decl("r", "REAL"),
		set("r", bin(ast.Div, &ast.Real{Value: 7}, &ast.Real{Value: 2})),
		out(
			bin(ast.IDiv, num(7), num(2)),
			&ast.String{Value: " "},
			bin(ast.Mod, num(7), num(2)),
			&ast.String{Value: " "},
			id("r"),
			&ast.String{Value: " "},
			&ast.UnaryOp{Op: ast.Sub, X: num(4)},
			&ast.String{Value: " "},
			&ast.LogicalOp{Op: ast.Or, Left: &ast.Boolean{Value: false}, Right: cmp(ast.Ne, num(1), num(2))},
			&ast.String{Value: " "},
			&ast.LogicalOp{Op: ast.Not, Right: &ast.Boolean{Value: true}},
		),
	)

	assert.Equal(t, "3 1 3.500000 -4 1 0\n", res)
}

func TestArrays(t *testing.T) {
	res := run(t, "",
		&ast.ArrayDeclaration{Name: "a", Type: "INTEGER", Start: 1, End: 3},
		decl("i", "INTEGER"),
		&ast.For{
			Init: set("i", num(1)),
			Cond: cmp(ast.Le, id("i"), num(3)),
			Step: set("i", bin(ast.Add, id("i"), num(1))),
			Body: []ast.Node{
				&ast.ArrayAssignment{Name: "a", Index: id("i"), Value: bin(ast.Mul, id("i"), id("i"))},
			},
		},
		out(bin(ast.Add, &ast.ArrayAccess{Name: "a", Index: num(2)}, &ast.ArrayAccess{Name: "a", Index: num(3)})),
	)

	assert.Equal(t, "13\n", res)
}

func TestInput(t *testing.T) {
	res := run(t, "5\n  x 1.25 word",
		decl("n", "INTEGER"),
		decl("c", "CHAR"),
		decl("r", "REAL"),
		decl("s", "STRING"),
		&ast.Input{Target: id("n")},
		&ast.Input{Target: id("c")},
		&ast.Input{Target: id("r")},
		&ast.Input{Target: id("s")},
		out(bin(ast.Mul, id("n"), num(2)), id("c"), id("r"), id("s")),
	)

	assert.Equal(t, "10x1.250000word\n", res)
}

func TestStepLimit(t *testing.T) {
	ctx := context.Background()

	m, err := front.New("loop").Compile(ctx, []ast.Node{
		&ast.While{Cond: &ast.Boolean{Value: true}},
	})
	require.NoError(t, err)

	_, err = Run(ctx, m, Options{Stdout: &bytes.Buffer{}, MaxSteps: 1000})
	require.ErrorIs(t, err, ErrStepLimit)
}

func TestRuntimeErrors(t *testing.T) {
	ctx := context.Background()

	m, err := front.New("div").Compile(ctx, []ast.Node{
		decl("z", "INTEGER"),
		out(bin(ast.IDiv, num(1), id("z"))),
	})
	require.NoError(t, err)

	_, err = Run(ctx, m, Options{Stdout: &bytes.Buffer{}})
	assert.Error(t, err)
}
