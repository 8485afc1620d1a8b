package front

import (
	"context"
	"fmt"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/diag"
	"github.com/slowlang/pasir/compiler/symtab"
	"github.com/slowlang/pasir/compiler/tp"
)

// analyze checks children first, then x itself.
// It never stops early; the result is the AND of every check.
func (f *Front) analyze(ctx context.Context, x ast.Node) bool {
	switch x := x.(type) {
	case *ast.Integer, *ast.Real, *ast.Char, *ast.String, *ast.Date, *ast.Boolean:
		return true
	case *ast.Identifier:
		return f.analyzeRef(ctx, x, x.Name)
	case *ast.Declaration:
		return f.analyzeDecl(ctx, x, x.Name, x.Type, false, symtab.Bounds{})
	case *ast.ArrayDeclaration:
		return f.analyzeDecl(ctx, x, x.Name, x.Type, true, symtab.Bounds{Start: x.Start, End: x.End})
	case *ast.Assignment:
		ok := f.analyzeExpr(ctx, x, x.Value)

		return f.analyzeRef(ctx, x, x.Name) && ok
	case *ast.ArrayAssignment:
		ok := f.analyzeExpr(ctx, x, x.Index)
		ok = f.analyzeExpr(ctx, x, x.Value) && ok

		return f.analyzeRef(ctx, x, x.Name) && ok
	case *ast.ArrayAccess:
		ok := f.analyzeExpr(ctx, x, x.Index)

		return f.analyzeRef(ctx, x, x.Name) && ok
	case *ast.BinaryOp:
		if x.Right == nil {
			return f.analyzePostfix(ctx, x)
		}

		ok := f.analyzeExpr(ctx, x, x.Left)

		return f.analyzeExpr(ctx, x, x.Right) && ok
	case *ast.Comparison:
		ok := f.analyzeExpr(ctx, x, x.Left)

		return f.analyzeExpr(ctx, x, x.Right) && ok
	case *ast.LogicalOp:
		ok := true

		if canon(x.Op) != ast.Not {
			ok = f.analyzeExpr(ctx, x, x.Left)
		}

		return f.analyzeExpr(ctx, x, x.Right) && ok
	case *ast.UnaryOp:
		return f.analyzeExpr(ctx, x, x.X)
	case *ast.If:
		ok := f.analyzeExpr(ctx, x, x.Cond)
		ok = f.analyzeScope(ctx, x.Then) && ok

		return f.analyzeScope(ctx, x.Else) && ok
	case *ast.For:
		f.syms.EnterScope()
		defer f.syms.ExitScope()

		ok := f.analyzeExpr(ctx, x, x.Init)
		ok = f.analyzeExpr(ctx, x, x.Cond) && ok
		ok = f.analyzeExpr(ctx, x, x.Step) && ok

		return f.analyzeList(ctx, x.Body) && ok
	case *ast.While:
		ok := f.analyzeExpr(ctx, x, x.Cond)

		return f.analyzeScope(ctx, x.Body) && ok
	case *ast.Repeat:
		f.syms.EnterScope()
		defer f.syms.ExitScope()

		ok := f.analyzeList(ctx, x.Body)

		return f.analyzeExpr(ctx, x, x.Cond) && ok
	case *ast.Procedure:
		return f.analyzeFunc(ctx, x, x.Name, x.Params, "", x.Body)
	case *ast.Function:
		return f.analyzeFunc(ctx, x, x.Name, x.Params, x.Ret, x.Body)
	case *ast.FuncCall:
		ok := true

		for _, a := range x.Args {
			ok = f.analyzeExpr(ctx, x, a) && ok
		}

		if sym, found := f.syms.Find(x.Name); !found || sym.Kind != symtab.Function {
			return f.fail(ctx, x, diag.New(diag.UnknownFunction, x.Name))
		}

		return ok
	case *ast.Return:
		if x.Value == nil {
			return true
		}

		return f.analyze(ctx, x.Value)
	case *ast.Output:
		ok := true

		for _, a := range x.Args {
			ok = f.analyzeExpr(ctx, x, a) && ok
		}

		return ok
	case *ast.Input:
		switch x.Target.(type) {
		case *ast.Identifier, *ast.ArrayAccess:
			return f.analyze(ctx, x.Target)
		default:
			return f.fail(ctx, x, &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("input target %T", x.Target)})
		}
	case *ast.StatementBlock:
		return f.analyzeList(ctx, x.Stmts)
	default:
		return f.fail(ctx, nil, unsupported(x))
	}
}

func (f *Front) analyzeList(ctx context.Context, list []ast.Node) bool {
	ok := true

	for _, x := range list {
		ok = f.analyze(ctx, x) && ok
	}

	return ok
}

func (f *Front) analyzeScope(ctx context.Context, list []ast.Node) bool {
	f.syms.EnterScope()
	defer f.syms.ExitScope()

	return f.analyzeList(ctx, list)
}

// analyzeExpr analyzes a required child of parent.
func (f *Front) analyzeExpr(ctx context.Context, parent, x ast.Node) bool {
	if x == nil {
		return f.fail(ctx, parent, &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("%T: missing operand", parent)})
	}

	return f.analyze(ctx, x)
}

func (f *Front) analyzePostfix(ctx context.Context, x *ast.BinaryOp) bool {
	if op := canon(x.Op); op != ast.Add && op != ast.Sub {
		return f.fail(ctx, x, &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("%T: missing operand", x)})
	}

	v, ok := x.Left.(*ast.Identifier)
	if !ok {
		return f.fail(ctx, x, &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("postfix %v of %T", x.Op, x.Left)})
	}

	return f.analyzeRef(ctx, x, v.Name)
}

func (f *Front) analyzeRef(ctx context.Context, x ast.Node, name string) bool {
	if !f.syms.CheckDeclaration(name) {
		return f.fail(ctx, x, diag.New(diag.UndeclaredIdentifier, name))
	}

	return true
}

func (f *Front) analyzeDecl(ctx context.Context, x ast.Node, name, typ string, isArray bool, b symtab.Bounds) bool {
	ok := true

	k, err := tp.Resolve(typ)
	if err != nil {
		ok = f.fail(ctx, x, err)
	}

	if f.syms.Declared(name) || isReserved(name) {
		return f.fail(ctx, x, diag.New(diag.DuplicateDeclaration, name))
	}

	_, err = f.syms.DeclareSymbol(name, k, isArray, b)
	if err != nil {
		return f.fail(ctx, x, err)
	}

	return ok
}

func (f *Front) analyzeFunc(ctx context.Context, x ast.Node, name string, params []ast.Param, ret string, body []ast.Node) bool {
	ok := true

	kinds := make([]tp.Kind, len(params))

	for i, p := range params {
		k, err := tp.Resolve(p.Type)
		if err != nil {
			ok = f.fail(ctx, x, err)
		}

		kinds[i] = k
	}

	rk := tp.None

	if ret != "" {
		k, err := tp.Resolve(ret)
		if err != nil {
			ok = f.fail(ctx, x, err)
		}

		rk = k
	}

	if isReserved(name) {
		ok = f.fail(ctx, x, diag.New(diag.DuplicateDeclaration, name))
	}

	// declared before the body so it can call itself
	_, err := f.syms.DeclareFunc(name, kinds, rk)
	if err != nil {
		ok = f.fail(ctx, x, err)
	}

	f.syms.EnterScope()
	defer f.syms.ExitScope()

	for i, p := range params {
		_, err := f.syms.DeclareSymbol(p.Name, kinds[i], false, symtab.Bounds{})
		if err != nil {
			ok = f.fail(ctx, x, err)
		}
	}

	return f.analyzeList(ctx, body) && ok
}

func unsupported(x ast.Node) *diag.Error {
	return &diag.Error{Kind: diag.UnsupportedNode, Msg: fmt.Sprintf("%T", x)}
}
