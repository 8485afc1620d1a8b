// Package format prints IR modules as LLVM-like text.
package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

type printer struct {
	m *ir.Module
	f *ir.Func
}

func Format(ctx context.Context, b []byte, x any) ([]byte, error) {
	switch x := x.(type) {
	case *ir.Module:
		p := &printer{m: x}

		return p.module(ctx, b)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func (p *printer) module(ctx context.Context, b []byte) (_ []byte, err error) {
	b = hfmt.Appendf(b, "; module %s\n", p.m.Name)

	if len(p.m.Data) != 0 {
		b = append(b, '\n')
	}

	for i, d := range p.m.Data {
		b = hfmt.Appendf(b, "@%s.%d = private constant [%d x i8] c\"", d.Name, i, len(d.Bytes)+1)
		b = quote(b, d.Bytes)
		b = append(b, "\\00\"\n"...)
	}

	if len(p.m.Vars) != 0 {
		b = append(b, '\n')
	}

	for _, v := range p.m.Vars {
		b = hfmt.Appendf(b, "@%s = global %v %s\n", v.Name, v.T, zero(v.T))
	}

	for _, f := range p.m.Funcs {
		b = append(b, '\n')

		b, err = p.fun(ctx, b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func (p *printer) fun(ctx context.Context, b []byte, f *ir.Func) (_ []byte, err error) {
	p.f = f

	if f.External {
		b = hfmt.Appendf(b, "declare %v @%s(", out(f.T), f.Name)
	} else {
		b = hfmt.Appendf(b, "define %v @%s(", out(f.T), f.Name)
	}

	for i, t := range f.T.In {
		if i != 0 {
			b = append(b, ", "...)
		}

		b = hfmt.Appendf(b, "%v", t)

		if !f.External && i < len(f.Params) {
			b = hfmt.Appendf(b, " %s", p.param(i))
		}
	}

	if f.T.Variadic {
		if len(f.T.In) != 0 {
			b = append(b, ", "...)
		}

		b = append(b, "..."...)
	}

	b = append(b, ')')

	if f.External {
		return append(b, '\n'), nil
	}

	b = append(b, " {\n"...)

	for i, blk := range f.Blocks {
		if i != 0 {
			b = append(b, '\n')
		}

		b = hfmt.Appendf(b, "%s:\n", blk.Name)

		for j, x := range blk.Code {
			b, err = p.instr(b, x)
			if err != nil {
				return nil, errors.Wrap(err, "block %v: instr %d", blk.Name, j)
			}
		}
	}

	b = append(b, "}\n"...)

	return b, nil
}

func (p *printer) instr(b []byte, x ir.Instr) ([]byte, error) {
	b = append(b, '\t')

	switch x := x.(type) {
	case ir.Alloca:
		b = hfmt.Appendf(b, "%s = alloca %v", p.slot(x.Slot), x.Slot.T)
	case ir.Load:
		b = hfmt.Appendf(b, "%s = load %v, ptr %s", p.value(x.Out), x.Out.T, p.value(x.Ptr))
	case ir.Store:
		b = hfmt.Appendf(b, "store %v %s, ptr %s", x.Val.Type(), p.value(x.Val), p.value(x.Ptr))
	case ir.ElemAddr:
		var arr tp.Type = tp.Void{}

		if t, ok := x.Base.Type().(tp.Ptr); ok {
			arr = t.X
		}

		b = hfmt.Appendf(b, "%s = getelementptr %v, ptr %s, i32 0, %v %s", p.value(x.Out), arr, p.value(x.Base), x.Index.Type(), p.value(x.Index))
	case ir.BinOp:
		b = hfmt.Appendf(b, "%s = %s %v %s, %s", p.value(x.Out), opNames[x.Op], x.L.Type(), p.value(x.L), p.value(x.R))
	case ir.Cmp:
		inst := "icmp"
		if x.Pred >= ir.FUEQ {
			inst = "fcmp"
		}

		b = hfmt.Appendf(b, "%s = %s %s %v %s, %s", p.value(x.Out), inst, predNames[x.Pred], x.L.Type(), p.value(x.L), p.value(x.R))
	case ir.Conv:
		b = hfmt.Appendf(b, "%s = %s %v %s to %v", p.value(x.Out), castNames[x.Op], x.X.Type(), p.value(x.X), x.Out.T)
	case ir.Call:
		if x.Out.ID >= 0 {
			b = hfmt.Appendf(b, "%s = ", p.value(x.Out))
		}

		if x.Func.T.Variadic {
			b = hfmt.Appendf(b, "call %v @%s(", x.Func.T, x.Func.Name)
		} else {
			b = hfmt.Appendf(b, "call %v @%s(", out(x.Func.T), x.Func.Name)
		}

		for i, a := range x.Args {
			if i != 0 {
				b = append(b, ", "...)
			}

			b = hfmt.Appendf(b, "%v %s", a.Type(), p.value(a))
		}

		b = append(b, ')')
	case ir.Br:
		b = hfmt.Appendf(b, "br label %%%s", x.To.Name)
	case ir.CondBr:
		b = hfmt.Appendf(b, "br i1 %s, label %%%s, label %%%s", p.value(x.Cond), x.Then.Name, x.Else.Name)
	case ir.Ret:
		if x.Val == nil {
			b = append(b, "ret void"...)
		} else {
			b = hfmt.Appendf(b, "ret %v %s", x.Val.Type(), p.value(x.Val))
		}
	case ir.Unreachable:
		b = append(b, "unreachable"...)
	default:
		return nil, errors.New("unsupported instr: %T", x)
	}

	return append(b, '\n'), nil
}

func (p *printer) value(v ir.Value) string {
	switch v := v.(type) {
	case ir.Int:
		if v.T.Bits == 1 {
			if v.V != 0 {
				return "true"
			}

			return "false"
		}

		return string(hfmt.Appendf(nil, "%d", v.V))
	case ir.Float:
		return string(hfmt.Appendf(nil, "%e", v.V))
	case ir.Null:
		return "null"
	case ir.Zeroinit:
		return "zeroinitializer"
	case ir.Data:
		return string(hfmt.Appendf(nil, "@%s.%d", p.m.Data[v.ID].Name, v.ID))
	case ir.Slot:
		return p.slot(v)
	case ir.Reg:
		return string(hfmt.Appendf(nil, "%%t%d", v.ID))
	case *ir.Func:
		return "@" + v.Name
	default:
		return string(hfmt.Appendf(nil, "<%T>", v))
	}
}

func (p *printer) slot(s ir.Slot) string {
	switch s.Class {
	case ir.Global:
		return "@" + p.m.Vars[s.ID].Name
	case ir.Param:
		return p.param(s.ID)
	default:
		return string(hfmt.Appendf(nil, "%%%s.addr%d", p.f.Locals[s.ID].Name, s.ID))
	}
}

// param names never collide with registers or stack slots.
func (p *printer) param(i int) string {
	return "%" + p.f.Params[i] + ".arg"
}

func out(t tp.Func) tp.Type {
	if t.Out == nil {
		return tp.Void{}
	}

	return t.Out
}

func zero(t tp.Type) string {
	switch t := t.(type) {
	case tp.Int:
		if t.Bits == 1 {
			return "false"
		}

		return "0"
	case tp.Float:
		return "0.0"
	case tp.Ptr:
		return "null"
	default:
		return "zeroinitializer"
	}
}

func quote(b []byte, s string) []byte {
	const hex = "0123456789ABCDEF"

	for i := 0; i < len(s); i++ {
		c := s[i]

		if c >= ' ' && c < 0x7f && c != '"' && c != '\\' {
			b = append(b, c)
			continue
		}

		b = append(b, '\\', hex[c>>4], hex[c&0xf])
	}

	return b
}

var (
	opNames = map[ir.Op]string{
		ir.Add:  "add",
		ir.Sub:  "sub",
		ir.Mul:  "mul",
		ir.SDiv: "sdiv",
		ir.SRem: "srem",
		ir.FAdd: "fadd",
		ir.FSub: "fsub",
		ir.FMul: "fmul",
		ir.FDiv: "fdiv",
		ir.FRem: "frem",
		ir.And:  "and",
		ir.Or:   "or",
		ir.Xor:  "xor",
	}

	predNames = map[ir.Pred]string{
		ir.EQ:   "eq",
		ir.NE:   "ne",
		ir.SLT:  "slt",
		ir.SLE:  "sle",
		ir.SGT:  "sgt",
		ir.SGE:  "sge",
		ir.FUEQ: "ueq",
		ir.FUNE: "une",
		ir.FULT: "ult",
		ir.FULE: "ule",
		ir.FUGT: "ugt",
		ir.FUGE: "uge",
	}

	castNames = map[ir.Cast]string{
		ir.Trunc: "trunc",
		ir.SExt:  "sext",
		ir.ZExt:  "zext",
	}
)
