package front

import (
	"context"
	"fmt"

	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/symtab"
	"github.com/slowlang/pasir/compiler/tp"
)

var (
	intOps = map[ast.Op]ir.Op{
		ast.Add:  ir.Add,
		ast.Sub:  ir.Sub,
		ast.Mul:  ir.Mul,
		ast.Div:  ir.SDiv,
		ast.IDiv: ir.SDiv,
		ast.Mod:  ir.SRem,
	}

	floatOps = map[ast.Op]ir.Op{
		ast.Add: ir.FAdd,
		ast.Sub: ir.FSub,
		ast.Mul: ir.FMul,
		ast.Div: ir.FDiv,
		ast.Mod: ir.FRem,
	}

	intPreds = map[ast.Op]ir.Pred{
		ast.Eq: ir.EQ,
		ast.Ne: ir.NE,
		ast.Lt: ir.SLT,
		ast.Le: ir.SLE,
		ast.Gt: ir.SGT,
		ast.Ge: ir.SGE,
	}

	floatPreds = map[ast.Op]ir.Pred{
		ast.Eq: ir.FUEQ,
		ast.Ne: ir.FUNE,
		ast.Lt: ir.FULT,
		ast.Le: ir.FULE,
		ast.Gt: ir.FUGT,
		ast.Ge: ir.FUGE,
	}

	aliases = map[ast.Op]ast.Op{
		"==":  ast.Eq,
		"!=":  ast.Ne,
		"AND": ast.And,
		"OR":  ast.Or,
		"NOT": ast.Not,
		"DIV": ast.IDiv,
		"MOD": ast.Mod,
	}
)

func canon(op ast.Op) ast.Op {
	if a, ok := aliases[op]; ok {
		return a
	}

	return op
}

func (f *Front) operands(ctx context.Context, l, r ast.Node) (lv, rv ir.Value, err error) {
	lv, err = f.expr(ctx, l)
	if err != nil {
		return nil, nil, errors.Wrap(err, "left")
	}

	rv, err = f.expr(ctx, r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "right")
	}

	return lv, rv, nil
}

// unify requires both operands in one category.
// Integers are widened to the larger width.
func (f *Front) unify(op ast.Op, l, r ir.Value) (_, _ ir.Value, c tp.Category, err error) {
	lc, rc := tp.CategoryOf(l.Type()), tp.CategoryOf(r.Type())

	if lc != rc {
		return nil, nil, tp.Invalid, diag.Mismatch(string(op), lc.String(), rc.String())
	}

	if lc == tp.Integral {
		lt, rt := l.Type().(tp.Int), r.Type().(tp.Int)

		if lt.Bits < rt.Bits {
			l = f.resize(l, rt)
		} else if rt.Bits < lt.Bits {
			r = f.resize(r, lt)
		}
	}

	return l, r, lc, nil
}

func (f *Front) genBinary(ctx context.Context, x *ast.BinaryOp) (ir.Value, error) {
	if x.Right == nil {
		return f.genPostfix(x)
	}

	l, r, err := f.operands(ctx, x.Left, x.Right)
	if err != nil {
		return nil, err
	}

	op := canon(x.Op)

	l, r, c, err := f.unify(op, l, r)
	if err != nil {
		return nil, err
	}

	var table map[ast.Op]ir.Op

	switch c {
	case tp.Integral:
		table = intOps
	case tp.Floating:
		table = floatOps
	}

	iop, ok := table[op]
	if !ok {
		return nil, diag.Operator(string(x.Op), c.String())
	}

	return f.b.Bin(iop, l, r), nil
}

// genPostfix lowers x++ and x--, a BinaryOp without the right operand.
// The variable is updated and the old value is the result.
func (f *Front) genPostfix(x *ast.BinaryOp) (ir.Value, error) {
	v, ok := x.Left.(*ast.Identifier)
	if !ok {
		return nil, &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("postfix %v of %T", x.Op, x.Left)}
	}

	sym, ptr, err := f.storage(v.Name, nil)
	if err != nil {
		return nil, err
	}

	if sym.Kind == symtab.Array {
		return nil, &diag.Error{Kind: diag.MalformedArrayAccess, Name: v.Name, Msg: "postfix on whole array"}
	}

	old := f.read(ptr)
	c := tp.CategoryOf(old.Type())

	var table map[ast.Op]ir.Op
	var one ir.Value

	switch c {
	case tp.Integral:
		table, one = intOps, ir.ConstInt(old.Type().(tp.Int), 1)
	case tp.Floating:
		table, one = floatOps, ir.Float{V: 1}
	}

	op := canon(x.Op)

	iop, ok := table[op]
	if !ok || op != ast.Add && op != ast.Sub {
		return nil, diag.Operator(string(x.Op), c.String())
	}

	f.b.Store(ptr, f.b.Bin(iop, old, one))

	return old, nil
}

func (f *Front) genUnary(ctx context.Context, x *ast.UnaryOp) (ir.Value, error) {
	v, err := f.expr(ctx, x.X)
	if err != nil {
		return nil, err
	}

	c := tp.CategoryOf(v.Type())

	switch {
	case x.Op == ast.Add && (c == tp.Integral || c == tp.Floating):
		return v, nil
	case x.Op == ast.Sub && c == tp.Integral:
		return f.b.Bin(ir.Sub, ir.ConstInt(v.Type().(tp.Int), 0), v), nil
	case x.Op == ast.Sub && c == tp.Floating:
		return f.b.Bin(ir.FSub, ir.Float{}, v), nil
	case canon(x.Op) == ast.Not:
		return f.not(v)
	}

	return nil, diag.Operator(string(x.Op), c.String())
}

func (f *Front) genCompare(ctx context.Context, x *ast.Comparison) (ir.Value, error) {
	l, r, err := f.operands(ctx, x.Left, x.Right)
	if err != nil {
		return nil, err
	}

	op := canon(x.Op)

	l, r, c, err := f.unify(op, l, r)
	if err != nil {
		return nil, err
	}

	var table map[ast.Op]ir.Pred

	switch c {
	case tp.Integral:
		table = intPreds
	case tp.Floating:
		table = floatPreds
	case tp.Logical:
		if op == ast.Eq || op == ast.Ne {
			table = intPreds
		}
	}

	p, ok := table[op]
	if !ok {
		return nil, diag.Operator(string(x.Op), c.String())
	}

	return f.b.Cmp(p, l, r), nil
}

// genLogical evaluates both operands of and/or.
func (f *Front) genLogical(ctx context.Context, x *ast.LogicalOp) (ir.Value, error) {
	op := canon(x.Op)

	if op == ast.Not {
		v, err := f.expr(ctx, x.Right)
		if err != nil {
			return nil, err
		}

		return f.not(v)
	}

	l, r, err := f.operands(ctx, x.Left, x.Right)
	if err != nil {
		return nil, err
	}

	var iop ir.Op

	switch op {
	case ast.And:
		iop = ir.And
	case ast.Or:
		iop = ir.Or
	default:
		return nil, diag.Operator(string(x.Op), tp.Logical.String())
	}

	l, err = f.truth(l)
	if err != nil {
		return nil, err
	}

	r, err = f.truth(r)
	if err != nil {
		return nil, err
	}

	return f.b.Bin(iop, l, r), nil
}

func (f *Front) not(v ir.Value) (ir.Value, error) {
	v, err := f.truth(v)
	if err != nil {
		return nil, err
	}

	return f.b.Bin(ir.Xor, v, ir.Bool(true)), nil
}

// truth converts v to a boolean by testing it against zero.
func (f *Front) truth(v ir.Value) (ir.Value, error) {
	switch c := tp.CategoryOf(v.Type()); c {
	case tp.Logical:
		return v, nil
	case tp.Integral:
		return f.b.Cmp(ir.NE, v, ir.Zero(v.Type())), nil
	case tp.Floating:
		return f.b.Cmp(ir.FUNE, v, ir.Float{}), nil
	case tp.Pointer:
		return f.b.Cmp(ir.NE, v, ir.Null{}), nil
	default:
		return nil, diag.Mismatch("operand", tp.Logical.String(), c.String())
	}
}

// cond lowers a branch condition, which must be boolean.
func (f *Front) cond(ctx context.Context, x ast.Node) (ir.Value, error) {
	v, err := f.expr(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "condition")
	}

	if c := tp.CategoryOf(v.Type()); c != tp.Logical {
		return nil, diag.Mismatch("condition", tp.Logical.String(), c.String())
	}

	return v, nil
}
