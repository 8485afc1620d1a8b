package astio

import (
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ast"
)

func decodeInt(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.Integer{Base: base}
	return x, scalar(n, "value", &x.Value)
}

func decodeReal(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.Real{Base: base}
	return x, scalar(n, "value", &x.Value)
}

func decodeChar(n *yaml.Node, base ast.Base) (ast.Node, error) {
	var s string

	err := scalar(n, "value", &s)
	if err != nil {
		return nil, err
	}

	if len(s) != 1 {
		return nil, errors.New("line %d: char must be one byte, got %q", n.Line, s)
	}

	return &ast.Char{Base: base, Value: s[0]}, nil
}

func decodeString(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.String{Base: base}
	return x, scalar(n, "value", &x.Value)
}

func decodeDate(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.Date{Base: base}
	return x, scalar(n, "value", &x.Value)
}

func decodeBool(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.Boolean{Base: base}
	return x, scalar(n, "value", &x.Value)
}

func decodeIdent(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.Identifier{Base: base}
	return x, scalar(n, "name", &x.Name)
}

func decodeDecl(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.Declaration{Base: base}

	if err = scalar(f["name"], "name", &x.Name); err != nil {
		return nil, err
	}

	if err = scalar(f["type"], "type", &x.Type); err != nil {
		return nil, err
	}

	return x, nil
}

func decodeArray(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.ArrayDeclaration{Base: base}

	for _, s := range []struct {
		name string
		v    any
	}{
		{"name", &x.Name},
		{"type", &x.Type},
		{"start", &x.Start},
		{"end", &x.End},
	} {
		if err = scalar(f[s.name], s.name, s.v); err != nil {
			return nil, err
		}
	}

	return x, nil
}

// decodeAssign yields an ArrayAssignment when index is present.
func decodeAssign(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	var name string

	if err = scalar(f["name"], "name", &name); err != nil {
		return nil, err
	}

	val, err := required(f["value"], "value")
	if err != nil {
		return nil, err
	}

	idx, err := optional(f["index"])
	if err != nil {
		return nil, errors.Wrap(err, "index")
	}

	if idx != nil {
		return &ast.ArrayAssignment{Base: base, Name: name, Index: idx, Value: val}, nil
	}

	return &ast.Assignment{Base: base, Name: name, Value: val}, nil
}

func decodeElem(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.ArrayAccess{Base: base}

	if err = scalar(f["name"], "name", &x.Name); err != nil {
		return nil, err
	}

	x.Index, err = required(f["index"], "index")
	if err != nil {
		return nil, err
	}

	return x, nil
}

// operands decodes op, left and right. Left is optional for unary not.
func operands(n *yaml.Node, leftOptional bool) (op ast.Op, l, r ast.Node, err error) {
	f, err := fields(n)
	if err != nil {
		return "", nil, nil, err
	}

	var s string

	if err = scalar(f["op"], "op", &s); err != nil {
		return "", nil, nil, err
	}

	if leftOptional {
		l, err = optional(f["left"])
	} else {
		l, err = required(f["left"], "left")
	}
	if err != nil {
		return "", nil, nil, err
	}

	r, err = required(f["right"], "right")
	if err != nil {
		return "", nil, nil, err
	}

	return ast.Op(s), l, r, nil
}

func decodeBinary(n *yaml.Node, base ast.Base) (ast.Node, error) {
	op, l, r, err := operands(n, false)
	if err != nil {
		return nil, err
	}

	return &ast.BinaryOp{Base: base, Op: op, Left: l, Right: r}, nil
}

func decodeCompare(n *yaml.Node, base ast.Base) (ast.Node, error) {
	op, l, r, err := operands(n, false)
	if err != nil {
		return nil, err
	}

	return &ast.Comparison{Base: base, Op: op, Left: l, Right: r}, nil
}

func decodeLogical(n *yaml.Node, base ast.Base) (ast.Node, error) {
	op, l, r, err := operands(n, true)
	if err != nil {
		return nil, err
	}

	return &ast.LogicalOp{Base: base, Op: op, Left: l, Right: r}, nil
}

func decodeUnary(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	var op string

	if err = scalar(f["op"], "op", &op); err != nil {
		return nil, err
	}

	x, err := required(f["x"], "x")
	if err != nil {
		return nil, err
	}

	return &ast.UnaryOp{Base: base, Op: ast.Op(op), X: x}, nil
}

// decodePostfix builds x++ or x--: a BinaryOp with no right operand.
func decodePostfix(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x, err := decodeUnary(n, base)
	if err != nil {
		return nil, err
	}

	u := x.(*ast.UnaryOp)

	return &ast.BinaryOp{Base: base, Op: u.Op, Left: u.X}, nil
}

func decodeIf(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.If{Base: base}

	if x.Cond, err = required(f["cond"], "cond"); err != nil {
		return nil, err
	}

	if x.Then, err = list(f["then"]); err != nil {
		return nil, errors.Wrap(err, "then")
	}

	if x.Else, err = list(f["else"]); err != nil {
		return nil, errors.Wrap(err, "else")
	}

	return x, nil
}

func decodeFor(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.For{Base: base}

	if x.Init, err = required(f["init"], "init"); err != nil {
		return nil, err
	}

	if x.Cond, err = required(f["cond"], "cond"); err != nil {
		return nil, err
	}

	if x.Step, err = required(f["step"], "step"); err != nil {
		return nil, err
	}

	if x.Body, err = list(f["body"]); err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return x, nil
}

func decodeWhile(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.While{Base: base}

	if x.Cond, err = required(f["cond"], "cond"); err != nil {
		return nil, err
	}

	if x.Body, err = list(f["body"]); err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return x, nil
}

func decodeRepeat(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.Repeat{Base: base}

	if x.Body, err = list(f["body"]); err != nil {
		return nil, errors.Wrap(err, "body")
	}

	if x.Cond, err = required(f["until"], "until"); err != nil {
		return nil, err
	}

	return x, nil
}

func params(n *yaml.Node) (ps []ast.Param, err error) {
	if n == nil || isNull(n) {
		return nil, nil
	}

	err = n.Decode(&ps)
	if err != nil {
		return nil, errors.Wrap(err, "params")
	}

	return ps, nil
}

func decodeProcedure(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.Procedure{Base: base}

	if err = scalar(f["name"], "name", &x.Name); err != nil {
		return nil, err
	}

	if x.Params, err = params(f["params"]); err != nil {
		return nil, err
	}

	if x.Body, err = list(f["body"]); err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return x, nil
}

func decodeFunction(n *yaml.Node, base ast.Base) (ast.Node, error) {
	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	x := &ast.Function{Base: base}

	if err = scalar(f["name"], "name", &x.Name); err != nil {
		return nil, err
	}

	if err = scalar(f["ret"], "ret", &x.Ret); err != nil {
		return nil, err
	}

	if x.Params, err = params(f["params"]); err != nil {
		return nil, err
	}

	if x.Body, err = list(f["body"]); err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return x, nil
}

func decodeCall(n *yaml.Node, base ast.Base) (ast.Node, error) {
	x := &ast.FuncCall{Base: base}

	if n.Kind == yaml.ScalarNode {
		return x, scalar(n, "name", &x.Name)
	}

	f, err := fields(n)
	if err != nil {
		return nil, err
	}

	if err = scalar(f["name"], "name", &x.Name); err != nil {
		return nil, err
	}

	if x.Args, err = list(f["args"]); err != nil {
		return nil, errors.Wrap(err, "args")
	}

	return x, nil
}

func decodeReturn(n *yaml.Node, base ast.Base) (ast.Node, error) {
	v, err := optional(n)
	if err != nil {
		return nil, err
	}

	return &ast.Return{Base: base, Value: v}, nil
}

func decodeOutput(n *yaml.Node, base ast.Base) (ast.Node, error) {
	args, err := list(n)
	if err != nil {
		return nil, err
	}

	return &ast.Output{Base: base, Args: args}, nil
}

func decodeInput(n *yaml.Node, base ast.Base) (ast.Node, error) {
	t, err := required(n, "target")
	if err != nil {
		return nil, err
	}

	return &ast.Input{Base: base, Target: t}, nil
}

func decodeBlock(n *yaml.Node, base ast.Base) (ast.Node, error) {
	stmts, err := list(n)
	if err != nil {
		return nil, err
	}

	return &ast.StatementBlock{Base: base, Stmts: stmts}, nil
}
