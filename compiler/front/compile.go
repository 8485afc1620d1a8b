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

// gen lowers x at the insertion point. Statements return a nil Value.
func (f *Front) gen(ctx context.Context, x ast.Node) (v ir.Value, err error) {
	if x == nil {
		return nil, errors.New("nil node")
	}

	v, err = f.gen1(ctx, x)

	if d, ok := err.(*diag.Error); ok && d.Pos == 0 && x.Position() != 0 {
		err = d.At(x.Position())
	}

	return v, err
}

func (f *Front) gen1(ctx context.Context, x ast.Node) (ir.Value, error) {
	switch x := x.(type) {
	case *ast.Integer:
		return ir.ConstInt(tp.I32, int64(x.Value)), nil
	case *ast.Real:
		return ir.Float{V: x.Value}, nil
	case *ast.Char:
		return ir.ConstInt(tp.I8, int64(int8(x.Value))), nil
	case *ast.Boolean:
		return ir.Bool(x.Value), nil
	case *ast.String:
		return f.b.String(".str", x.Value), nil
	case *ast.Date:
		return f.b.String(".date", x.Value), nil
	case *ast.Identifier:
		return f.genIdent(x)
	case *ast.Declaration:
		return nil, f.genDecl(x.Name, x.Type, false, symtab.Bounds{})
	case *ast.ArrayDeclaration:
		return nil, f.genDecl(x.Name, x.Type, true, symtab.Bounds{Start: x.Start, End: x.End})
	case *ast.Assignment:
		return nil, f.genAssign(ctx, x.Name, nil, x.Value)
	case *ast.ArrayAssignment:
		return nil, f.genAssign(ctx, x.Name, x.Index, x.Value)
	case *ast.ArrayAccess:
		return f.genElem(ctx, x)
	case *ast.BinaryOp:
		return f.genBinary(ctx, x)
	case *ast.UnaryOp:
		return f.genUnary(ctx, x)
	case *ast.Comparison:
		return f.genCompare(ctx, x)
	case *ast.LogicalOp:
		return f.genLogical(ctx, x)
	case *ast.If:
		return nil, f.genIf(ctx, x)
	case *ast.For:
		return nil, f.genFor(ctx, x)
	case *ast.While:
		return nil, f.genWhile(ctx, x)
	case *ast.Repeat:
		return nil, f.genRepeat(ctx, x)
	case *ast.Procedure:
		return nil, f.genFunc(ctx, x.Name, x.Params, "", x.Body)
	case *ast.Function:
		return nil, f.genFunc(ctx, x.Name, x.Params, x.Ret, x.Body)
	case *ast.FuncCall:
		return f.genCall(ctx, x)
	case *ast.Return:
		return nil, f.genReturn(ctx, x)
	case *ast.Output:
		return nil, f.genOutput(ctx, x)
	case *ast.Input:
		return nil, f.genInput(ctx, x)
	case *ast.StatementBlock:
		return nil, f.genList(ctx, x.Stmts)
	default:
		return nil, unsupported(x)
	}
}

func (f *Front) genList(ctx context.Context, list []ast.Node) error {
	for _, x := range list {
		_, err := f.gen(ctx, x)
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *Front) genScope(ctx context.Context, list []ast.Node) error {
	f.syms.EnterScope()
	defer f.syms.ExitScope()

	tlog.SpanFromContext(ctx).V("scope").Printw("enter scope", "depth", f.syms.Depth(), "stmts", len(list))

	return f.genList(ctx, list)
}

// expr lowers an operand. Every operand must produce a value.
func (f *Front) expr(ctx context.Context, x ast.Node) (ir.Value, error) {
	if x == nil {
		return nil, errors.New("missing operand")
	}

	v, err := f.gen(ctx, x)
	if err != nil {
		return nil, err
	}

	if v == nil {
		return nil, errors.New("%T produced no value", x)
	}

	return v, nil
}

// storage resolves name to its slot, or to an element address when index is set.
func (f *Front) storage(name string, index ir.Value) (*symtab.Symbol, ir.Value, error) {
	sym, ok := f.syms.Find(name)
	if !ok {
		return nil, nil, diag.New(diag.UndeclaredIdentifier, name)
	}

	if sym.Kind == symtab.Function {
		return nil, nil, diag.Mismatch(name, "variable", "function")
	}

	if own, ok := f.owner[sym]; ok && own != f.fn.Func {
		return nil, nil, errors.New("%v: local of %v is not visible in %v", name, own.Name, f.fn.Name)
	}

	v, err := f.syms.LookupSymbol(f.st(), name, index)
	if err != nil {
		return nil, nil, err
	}

	return sym, v, nil
}

// read loads a scalar. Parameters are read directly.
func (f *Front) read(v ir.Value) ir.Value {
	if s, ok := v.(ir.Slot); ok {
		switch s.Class {
		case ir.Param:
			return s
		case ir.Stack, ir.Global:
			return f.b.Load(s)
		}
	}

	return f.b.Load(v)
}

func (f *Front) genIdent(x *ast.Identifier) (ir.Value, error) {
	sym, slot, err := f.storage(x.Name, nil)
	if err != nil {
		return nil, err
	}

	if sym.Kind == symtab.Array {
		return nil, &diag.Error{Kind: diag.MalformedArrayAccess, Name: x.Name, Msg: "array used without index"}
	}

	return f.read(slot), nil
}

func (f *Front) genDecl(name, typ string, isArray bool, b symtab.Bounds) error {
	if isReserved(name) {
		return diag.New(diag.DuplicateDeclaration, name)
	}

	k, err := tp.Resolve(typ)
	if err != nil {
		return err
	}

	sym, err := f.syms.DeclareSymbol(name, k, isArray, b)
	if err != nil {
		return err
	}

	slot, err := f.syms.Allocate(f.st(), name)
	if err != nil {
		return errors.Wrap(err, "allocate")
	}

	if slot.Class == ir.Global {
		return nil
	}

	f.owner[sym] = f.fn.Func
	f.b.Store(slot, ir.Zero(slot.T))

	return nil
}

func (f *Front) genAssign(ctx context.Context, name string, index, value ast.Node) error {
	var idx ir.Value

	if index != nil {
		v, err := f.index(ctx, index)
		if err != nil {
			return errors.Wrap(err, "index")
		}

		idx = v
	}

	sym, ptr, err := f.storage(name, idx)
	if err != nil {
		return err
	}

	if index == nil && sym.Kind == symtab.Array {
		return &diag.Error{Kind: diag.MalformedArrayAccess, Name: name, Msg: "assignment to whole array"}
	}

	v, err := f.expr(ctx, value)
	if err != nil {
		return err
	}

	v, err = f.fit(name, sym.Type.Native(), v)
	if err != nil {
		return err
	}

	f.b.Store(ptr, v)

	return nil
}

func (f *Front) genElem(ctx context.Context, x *ast.ArrayAccess) (ir.Value, error) {
	idx, err := f.index(ctx, x.Index)
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}

	_, ptr, err := f.storage(x.Name, idx)
	if err != nil {
		return nil, err
	}

	return f.b.Load(ptr), nil
}

// index lowers an array subscript to i32.
func (f *Front) index(ctx context.Context, x ast.Node) (ir.Value, error) {
	v, err := f.expr(ctx, x)
	if err != nil {
		return nil, err
	}

	if c := tp.CategoryOf(v.Type()); c != tp.Integral {
		return nil, diag.Mismatch("index", tp.Integral.String(), c.String())
	}

	return f.resize(v, tp.I32), nil
}

// fit checks v can be stored into t. Categories must match;
// integers of another width are truncated or sign extended.
func (f *Front) fit(name string, t tp.Type, v ir.Value) (ir.Value, error) {
	tc, vc := tp.CategoryOf(t), tp.CategoryOf(v.Type())

	if tc != vc {
		return nil, diag.Mismatch(name, tc.String(), vc.String())
	}

	if tc == tp.Integral {
		return f.resize(v, t.(tp.Int)), nil
	}

	return v, nil
}

func (f *Front) resize(v ir.Value, t tp.Int) ir.Value {
	from := v.Type().(tp.Int)

	if from.Bits == t.Bits {
		return v
	}

	if c, ok := v.(ir.Int); ok {
		return ir.ConstInt(t, wrap(c.V, t.Bits))
	}

	if from.Bits > t.Bits {
		return f.b.Conv(ir.Trunc, v, t)
	}

	return f.b.Conv(ir.SExt, v, t)
}

func wrap(v int64, bits int16) int64 {
	switch bits {
	case 1:
		return v & 1
	case 8:
		return int64(int8(v))
	case 16:
		return int64(int16(v))
	case 32:
		return int64(int32(v))
	}

	return v
}
