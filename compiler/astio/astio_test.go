package astio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/ast"
)

const program = `
- declare: {name: x, type: INTEGER}
- array: {name: a, type: CHAR, start: 1, end: 3}
- assign:
    name: a
    index: {int: 2}
    value: {char: z}
- for:
    init: {assign: {name: x, value: {int: 1}}}
    cond: {compare: {op: "<=", left: {ident: x}, right: {int: 3}}}
    step: {assign: {name: x, value: {binary: {op: "+", left: {ident: x}, right: {int: 1}}}}}
    body:
      - output: [{ident: x}, {str: " "}, {elem: {name: a, index: {ident: x}}}]
- function:
    name: half
    params: [{name: v, type: REAL}]
    ret: REAL
    body:
      - return: {binary: {op: "/", left: {ident: v}, right: {real: 2}}}
- procedure:
    name: hello
    body:
      - output: [{date: "2024-01-01"}]
      - return:
- call: hello
- if:
    cond: {logical: {op: not, right: {bool: false}}}
    then:
      - input: {ident: x}
- repeat:
    body: [{block: [{output: [{unary: {op: "-", x: {ident: x}}}]}]}]
    until: {bool: true}
- while:
    cond: {bool: false}
`

func TestDecode(t *testing.T) {
	prog, err := Decode([]byte(program))
	require.NoError(t, err)
	require.Len(t, prog, 10)

	assert.Equal(t, &ast.Declaration{Base: ast.Base{Pos: 2}, Name: "x", Type: "INTEGER"}, prog[0])
	assert.Equal(t, &ast.ArrayDeclaration{Base: ast.Base{Pos: 3}, Name: "a", Type: "CHAR", Start: 1, End: 3}, prog[1])

	aa, ok := prog[2].(*ast.ArrayAssignment)
	require.True(t, ok, "%T", prog[2])
	assert.Equal(t, "a", aa.Name)
	assert.Equal(t, int32(2), aa.Index.(*ast.Integer).Value)
	assert.Equal(t, byte('z'), aa.Value.(*ast.Char).Value)

	loop, ok := prog[3].(*ast.For)
	require.True(t, ok, "%T", prog[3])
	assert.IsType(t, &ast.Assignment{}, loop.Init)
	assert.Equal(t, ast.Le, loop.Cond.(*ast.Comparison).Op)
	require.Len(t, loop.Body, 1)
	assert.Len(t, loop.Body[0].(*ast.Output).Args, 3)

	fn, ok := prog[4].(*ast.Function)
	require.True(t, ok, "%T", prog[4])
	assert.Equal(t, []ast.Param{{Name: "v", Type: "REAL"}}, fn.Params)
	assert.Equal(t, "REAL", fn.Ret)

	proc := prog[5].(*ast.Procedure)
	require.Len(t, proc.Body, 2)
	assert.Nil(t, proc.Body[1].(*ast.Return).Value)

	assert.Equal(t, "hello", prog[6].(*ast.FuncCall).Name)

	cond := prog[7].(*ast.If).Cond.(*ast.LogicalOp)
	assert.Equal(t, ast.Not, cond.Op)
	assert.Nil(t, cond.Left)

	rep := prog[8].(*ast.Repeat)
	assert.IsType(t, &ast.StatementBlock{}, rep.Body[0])

	assert.Empty(t, prog[9].(*ast.While).Body)
}

func TestDecodeErrors(t *testing.T) {
	for _, tc := range []string{
		`{declare: {name: x, type: INTEGER}}`,
		`- nope: 1`,
		`- declare: {name: x}`,
		`- char: ab`,
		`- assign: {name: x}`,
		`- declare: {name: x, type: INTEGER}
  assign: {name: x, value: {int: 1}}`,
	} {
		_, err := Decode([]byte(tc))
		assert.Error(t, err, "%s", tc)
	}
}

func TestDecodeEmpty(t *testing.T) {
	prog, err := Decode(nil)
	require.NoError(t, err)
	assert.Empty(t, prog)
}

func TestDecodePostfix(t *testing.T) {
	prog, err := Decode([]byte(`
- postfix: {op: "+", x: {ident: i}}
- assign: {name: j, value: {postfix: {op: "-", x: {ident: j}}}}
`))
	require.NoError(t, err)
	require.Len(t, prog, 2)

	assert.Equal(t, &ast.BinaryOp{Base: ast.Base{Pos: 2}, Op: ast.Add, Left: &ast.Identifier{Base: ast.Base{Pos: 2}, Name: "i"}}, prog[0])

	dec := prog[1].(*ast.Assignment).Value.(*ast.BinaryOp)
	assert.Equal(t, ast.Sub, dec.Op)
	assert.Nil(t, dec.Right)
}
