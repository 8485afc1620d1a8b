package front

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/symtab"
	"github.com/slowlang/pasir/compiler/tp"
)

// genOutput prints every argument with one printf call.
func (f *Front) genOutput(ctx context.Context, x *ast.Output) error {
	var b strings.Builder

	args := make([]ir.Value, 1, 1+len(x.Args))

	for i, a := range x.Args {
		v, err := f.expr(ctx, a)
		if err != nil {
			return errors.Wrap(err, "arg %d", i)
		}

		conv, ok := tp.Format(v.Type())
		if !ok {
			return diag.Mismatch(fmt.Sprintf("output arg %d", i), "printable", tp.CategoryOf(v.Type()).String())
		}

		b.WriteString(conv)
		args = append(args, f.promote(v))
	}

	b.WriteString("\n")

	args[0] = f.b.String(".fmt", b.String())

	f.b.Call(f.runtime("printf", &f.printf), args...)

	return nil
}

// genInput reads one value into a variable or an array element.
func (f *Front) genInput(ctx context.Context, x *ast.Input) error {
	var (
		ptr ir.Value
		sym *symtab.Symbol
		err error
	)

	switch t := x.Target.(type) {
	case *ast.Identifier:
		sym, ptr, err = f.storage(t.Name, nil)
		if err == nil && sym.Kind == symtab.Array {
			err = &diag.Error{Kind: diag.MalformedArrayAccess, Name: t.Name, Msg: "input into whole array"}
		}
	case *ast.ArrayAccess:
		var idx ir.Value

		idx, err = f.index(ctx, t.Index)
		if err != nil {
			return errors.Wrap(err, "index")
		}

		sym, ptr, err = f.storage(t.Name, idx)
	default:
		return unsupported(x.Target)
	}
	if err != nil {
		return err
	}

	conv, ok := tp.ScanFormat(sym.Type.Native())
	if !ok {
		return diag.Mismatch(sym.Name, "readable", sym.Type.String())
	}

	ft := f.b.String(".scan", conv)

	f.b.Call(f.runtime("scanf", &f.scanf), ft, ptr)

	return nil
}

// promote applies the default argument promotions of C variadics.
func (f *Front) promote(v ir.Value) ir.Value {
	t, ok := v.Type().(tp.Int)
	if !ok || t.Bits >= 32 {
		return v
	}

	if c, ok := v.(ir.Int); ok {
		return ir.ConstInt(tp.I32, c.V)
	}

	if t.Bits == 1 {
		return f.b.Conv(ir.ZExt, v, tp.I32)
	}

	return f.b.Conv(ir.SExt, v, tp.I32)
}

func (f *Front) runtime(name string, cache **ir.Func) *ir.Func {
	if *cache == nil {
		*cache = f.b.Declare(name, tp.Func{In: []tp.Type{tp.Bytes}, Out: tp.I32, Variadic: true})
	}

	return *cache
}
