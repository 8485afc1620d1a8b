// Package front checks an AST and lowers it to IR.
//
// A Front is one compilation session. It owns the module under
// construction, the insertion point and the symbol table.
// Sessions are independent of each other.
package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/symtab"
	"github.com/slowlang/pasir/compiler/tp"
)

type (
	Front struct {
		name string

		syms *symtab.Table

		errs diag.List

		m *ir.Module
		b *ir.Builder

		fn *funContext

		owner map[*symtab.Symbol]*ir.Func

		printf, scanf *ir.Func
	}

	funContext struct {
		*ir.Func

		// ret is the declared result; None for procedures.
		ret  tp.Kind
		main bool
	}

	// emitter gives the symbol table access to storage and address arithmetic.
	emitter Front
)

func New(name string) *Front {
	return &Front{
		name: name,
		syms: symtab.New(),
	}
}

// Symbols is the table of the last phase run.
func (f *Front) Symbols() *symtab.Table { return f.syms }

// Errors returns the semantic errors of the last Analyze.
func (f *Front) Errors() diag.List { return f.errs }

// Analyze validates prog and reports every semantic error found.
func (f *Front) Analyze(ctx context.Context, prog []ast.Node) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: analyze", "name", f.name, "stmts", len(prog))
	defer tr.Finish("err", &err)

	f.syms = symtab.New()
	f.errs = nil

	f.syms.EnterScope()

	ok := f.analyzeList(ctx, prog)

	f.syms.ExitScope()

	if !ok {
		if len(f.errs) == 0 {
			return errors.New("analysis failed")
		}

		return f.errs
	}

	return nil
}

// Compile analyzes prog and lowers it into a module with an i32 main.
// The symbol table is rebuilt from scratch while lowering.
func (f *Front) Compile(ctx context.Context, prog []ast.Node) (_ *ir.Module, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: compile", "name", f.name)
	defer tr.Finish("err", &err)

	err = f.Analyze(ctx, prog)
	if err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	f.syms = symtab.New()
	f.owner = map[*symtab.Symbol]*ir.Func{}
	f.printf, f.scanf = nil, nil

	f.m = ir.NewModule(f.name)
	f.b = ir.NewBuilder(f.m)

	main := f.b.Define("main", tp.Func{Out: tp.I32}, nil)

	f.fn = &funContext{
		Func: main,
		ret:  tp.Integer,
		main: true,
	}

	f.syms.EnterScope()
	defer f.syms.ExitScope()

	err = f.genList(ctx, prog)
	if err != nil {
		return nil, err
	}

	if !f.b.Block().Terminated() {
		f.b.Ret(ir.ConstInt(tp.I32, 0))
	}

	tr.Printw("module", "funcs", len(f.m.Funcs), "data", len(f.m.Data), "vars", len(f.m.Vars))

	return f.m, nil
}

func (f *Front) fail(ctx context.Context, x ast.Node, err error) bool {
	if d, ok := err.(*diag.Error); ok && d.Pos == 0 && x != nil {
		err = d.At(x.Position())
	}

	f.errs = append(f.errs, err)

	tlog.SpanFromContext(ctx).Printw("semantic error", "err", err)

	return false
}

// Allocate places program scope declarations of main in module globals
// and everything else on the stack of the current function.
func (e *emitter) Allocate(name string, t tp.Type) ir.Slot {
	f := (*Front)(e)

	if f.fn.main && f.syms.Depth() == 1 {
		return f.b.GlobalVar(name, t)
	}

	return f.b.Alloca(name, t)
}

func (e *emitter) Bin(op ir.Op, l, r ir.Value) ir.Value {
	return e.b.Bin(op, l, r)
}

func (e *emitter) ElemAddr(base, idx ir.Value) ir.Value {
	return e.b.ElemAddr(base, idx)
}

func (f *Front) st() *emitter { return (*emitter)(f) }
