package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/df"
	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/symtab"
	"github.com/slowlang/pasir/compiler/tp"
)

// reserved names are defined by the runtime or by Compile itself.
var reserved = map[string]struct{}{
	"main":   {},
	"printf": {},
	"scanf":  {},
}

func isReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// genFunc lowers a routine. Nested routines may reuse names of other
// scopes; the IR name is made unique by the builder.
func (f *Front) genFunc(ctx context.Context, name string, params []ast.Param, ret string, body []ast.Node) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile function", "name", name, "params", len(params))
	defer tr.Finish("err", &err)

	if isReserved(name) {
		return diag.New(diag.DuplicateDeclaration, name)
	}

	kinds := make([]tp.Kind, len(params))
	names := make([]string, len(params))

	for i, p := range params {
		kinds[i], err = tp.Resolve(p.Type)
		if err != nil {
			return errors.Wrap(err, "param %v", p.Name)
		}

		names[i] = p.Name
	}

	rk := tp.None

	if ret != "" {
		rk, err = tp.Resolve(ret)
		if err != nil {
			return errors.Wrap(err, "result")
		}
	}

	sym, err := f.syms.DeclareFunc(name, kinds, rk)
	if err != nil {
		return err
	}

	savedFn, savedBlock, saved := f.b.Func(), f.b.Block(), f.fn
	defer func() {
		f.b.SetInsertPoint(savedFn, savedBlock)
		f.fn = saved
	}()

	fn := f.b.Define(name, sym.NativeType().(tp.Func), names)
	sym.Func = fn

	f.fn = &funContext{
		Func: fn,
		ret:  rk,
	}

	f.syms.EnterScope()
	defer f.syms.ExitScope()

	// arguments are copied so assignments never reach the caller
	for i, p := range params {
		psym, err := f.syms.DeclareSymbol(p.Name, kinds[i], false, symtab.Bounds{})
		if err != nil {
			return errors.Wrap(err, "param %v", p.Name)
		}

		slot, err := f.syms.Allocate(f.st(), p.Name)
		if err != nil {
			return errors.Wrap(err, "param %v", p.Name)
		}

		f.owner[psym] = fn
		f.b.Store(slot, f.b.Arg(i))
	}

	err = f.genList(ctx, body)
	if err != nil {
		return errors.Wrap(err, "function %v", name)
	}

	if f.b.Block().Terminated() {
		return nil
	}

	if rk == tp.None {
		f.b.Ret(nil)
		return nil
	}

	// a reachable block without a terminator falls off the end
	if len(df.Open(fn)) != 0 {
		return diag.New(diag.MissingReturn, name)
	}

	f.b.Unreachable()

	return nil
}

func (f *Front) genCall(ctx context.Context, x *ast.FuncCall) (ir.Value, error) {
	sym, ok := f.syms.Find(x.Name)
	if !ok || sym.Kind != symtab.Function || sym.Func == nil {
		return nil, diag.New(diag.UnknownFunction, x.Name)
	}

	if len(x.Args) != len(sym.Params) {
		return nil, diag.Arity(x.Name, len(sym.Params), len(x.Args))
	}

	args := make([]ir.Value, len(x.Args))

	for i, a := range x.Args {
		v, err := f.expr(ctx, a)
		if err != nil {
			return nil, errors.Wrap(err, "arg %d", i)
		}

		if want := sym.Params[i].Native(); !tp.Equal(want, v.Type()) {
			return nil, diag.Mismatch(x.Name, want.String(), v.Type().String())
		}

		args[i] = v
	}

	// nil for procedures, which are statements
	return f.b.Call(sym.Func, args...), nil
}

func (f *Front) genReturn(ctx context.Context, x *ast.Return) error {
	if f.fn.ret == tp.None {
		if x.Value != nil {
			return diag.Mismatch("return", tp.None.String(), "value")
		}

		f.b.Ret(nil)

		return nil
	}

	if x.Value == nil {
		if f.fn.main {
			f.b.Ret(ir.ConstInt(tp.I32, 0))
			return nil
		}

		return diag.Mismatch("return", f.fn.ret.String(), tp.None.String())
	}

	v, err := f.expr(ctx, x.Value)
	if err != nil {
		return errors.Wrap(err, "return")
	}

	if want := f.fn.ret.Native(); !tp.Equal(want, v.Type()) {
		return diag.Mismatch("return", want.String(), v.Type().String())
	}

	f.b.Ret(v)

	return nil
}
