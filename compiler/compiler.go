package compiler

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/astio"
	"github.com/slowlang/pasir/compiler/back"
	"github.com/slowlang/pasir/compiler/format"
	"github.com/slowlang/pasir/compiler/front"
	"github.com/slowlang/pasir/compiler/ir"
)

// Check runs semantic analysis only.
func Check(ctx context.Context, name string, prog []ast.Node) error {
	return front.New(name).Analyze(ctx, prog)
}

// Compile analyzes prog and lowers it to an IR module.
func Compile(ctx context.Context, name string, prog []ast.Node) (m *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name)
	defer tr.Finish("err", &err)

	m, err = front.New(name).Compile(ctx, prog)
	if err != nil {
		return nil, err
	}

	if tr.If("dump_ir") {
		text, err := format.Format(ctx, nil, m)
		if err != nil {
			return nil, errors.Wrap(err, "format")
		}

		tr.Printw("ir", "text", text)
	}

	return m, nil
}

func ReadFile(ctx context.Context, name string) ([]ast.Node, error) {
	prog, err := astio.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	tlog.SpanFromContext(ctx).Printw("read file", "name", name, "nodes", len(prog))

	return prog, nil
}

func CheckFile(ctx context.Context, name string) error {
	prog, err := ReadFile(ctx, name)
	if err != nil {
		return err
	}

	return Check(ctx, name, prog)
}

// CompileFile compiles a YAML syntax tree and returns the IR text.
func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	prog, err := ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	m, err := Compile(ctx, name, prog)
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}

	obj, err = format.Format(ctx, nil, m)
	if err != nil {
		return nil, errors.Wrap(err, "format")
	}

	return obj, nil
}

// RunFile compiles and executes a YAML syntax tree.
func RunFile(ctx context.Context, name string, opts back.Options) (code int, err error) {
	prog, err := ReadFile(ctx, name)
	if err != nil {
		return 0, err
	}

	m, err := Compile(ctx, name, prog)
	if err != nil {
		return 0, errors.Wrap(err, "compile")
	}

	return back.Run(ctx, m, opts)
}
