package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/pasir/compiler/back"
	"github.com/slowlang/pasir/compiler/diag"
)

const sumProgram = `
- declare: {name: sum, type: INTEGER}
- declare: {name: n, type: INTEGER}
- input: {ident: n}
- function:
    name: add
    params: [{name: a, type: INTEGER}, {name: b, type: INTEGER}]
    ret: INTEGER
    body:
      - return: {binary: {op: "+", left: {ident: a}, right: {ident: b}}}
- for:
    init: {declare: {name: i, type: INTEGER}}
    cond: {compare: {op: "<", left: {ident: i}, right: {ident: n}}}
    step: {assign: {name: i, value: {binary: {op: "+", left: {ident: i}, right: {int: 1}}}}}
    body:
      - assign: {name: sum, value: {call: {name: add, args: [{ident: sum}, {binary: {op: "+", left: {ident: i}, right: {int: 1}}}]}}}
- output: [{str: "sum="}, {ident: sum}]
`

func write(t *testing.T, text string) string {
	t.Helper()

	name := filepath.Join(t.TempDir(), "prog.yaml")

	err := os.WriteFile(name, []byte(text), 0o644)
	require.NoError(t, err)

	return name
}

func TestRunFile(t *testing.T) {
	name := write(t, sumProgram)

	var out bytes.Buffer

	code, err := RunFile(context.Background(), name, back.Options{
		Stdin:    strings.NewReader("4\n"),
		Stdout:   &out,
		MaxSteps: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "sum=10\n", out.String())
}

func TestCompileFile(t *testing.T) {
	name := write(t, sumProgram)

	obj, err := CompileFile(context.Background(), name)
	require.NoError(t, err)

	text := string(obj)

	assert.Contains(t, text, "define i32 @main() {")
	assert.Contains(t, text, "define i32 @add(i32 %a.arg, i32 %b.arg) {")
	assert.Contains(t, text, "declare i32 @printf(ptr, ...)")
	assert.Contains(t, text, "declare i32 @scanf(ptr, ...)")
	assert.Contains(t, text, "@sum = global i32 0")
}

func TestCheckFile(t *testing.T) {
	name := write(t, `
- declare: {name: x, type: INTEGER}
- declare: {name: x, type: REAL}
- assign: {name: y, value: {int: 1}}
`)

	err := CheckFile(context.Background(), name)
	require.Error(t, err)
	assert.ErrorIs(t, err, diag.ErrDuplicateDeclaration)
	assert.ErrorIs(t, err, diag.ErrUndeclaredIdentifier)

	_, err = CompileFile(context.Background(), name)
	assert.ErrorIs(t, err, diag.ErrDuplicateDeclaration)
}

func TestMissingFile(t *testing.T) {
	_, err := CompileFile(context.Background(), filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
