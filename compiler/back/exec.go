package back

import (
	"context"
	"math"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

func (mc *Machine) exec(ctx context.Context, fr *frame) (any, error) {
	if len(fr.Blocks) == 0 {
		return nil, errors.New("%v: no body", fr.Name)
	}

	tr := tlog.SpanFromContext(ctx)

	blk := fr.Blocks[0]

	for {
		var next *ir.Block

		for i, x := range blk.Code {
			err := mc.step(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "%v: %v: %d", fr.Name, blk.Name, i)
			}

			tr.V("trace_exec").Printw("exec", "func", fr.Name, "block", blk.Name, "i", i, "typ", tlog.NextAsType, x, "instr", x)

			switch x := x.(type) {
			case ir.Br:
				next = x.To
			case ir.CondBr:
				c, err := mc.ival(fr, x.Cond)
				if err != nil {
					return nil, errors.Wrap(err, "%v: %v: cond", fr.Name, blk.Name)
				}

				next = x.Else
				if c != 0 {
					next = x.Then
				}
			case ir.Ret:
				if x.Val == nil {
					return nil, nil
				}

				return mc.value(fr, x.Val)
			case ir.Unreachable:
				return nil, errors.New("%v: %v: reached unreachable", fr.Name, blk.Name)
			default:
				err = mc.instr(ctx, fr, x)
				if err != nil {
					return nil, errors.Wrap(err, "%v: %v: %d", fr.Name, blk.Name, i)
				}
			}
		}

		if next == nil {
			return nil, errors.New("%v: %v: fell off the block", fr.Name, blk.Name)
		}

		blk = next
	}
}

func (mc *Machine) step(ctx context.Context) error {
	mc.steps++

	if mc.maxSteps != 0 && mc.steps > mc.maxSteps {
		return ErrStepLimit
	}

	if mc.steps%1024 == 0 {
		return ctx.Err()
	}

	return nil
}

func (mc *Machine) instr(ctx context.Context, fr *frame, x ir.Instr) (err error) {
	switch x := x.(type) {
	case ir.Alloca:
		fr.locals[x.Slot.ID] = newMem(x.Slot.T)
	case ir.Load:
		a, err := mc.addr(fr, x.Ptr)
		if err != nil {
			return err
		}

		fr.regs[x.Out.ID] = a.m.v[a.off]
	case ir.Store:
		a, err := mc.addr(fr, x.Ptr)
		if err != nil {
			return err
		}

		if _, ok := x.Val.(ir.Zeroinit); ok {
			a.m.clear()
			return nil
		}

		v, err := mc.value(fr, x.Val)
		if err != nil {
			return err
		}

		a.m.v[a.off] = fit(a.m.t, v)
	case ir.ElemAddr:
		a, err := mc.addr(fr, x.Base)
		if err != nil {
			return err
		}

		i, err := mc.ival(fr, x.Index)
		if err != nil {
			return err
		}

		off := a.off + int(i)
		if off < 0 || off >= len(a.m.v) {
			return errors.New("index %d out of range [0:%d]", i, len(a.m.v))
		}

		fr.regs[x.Out.ID] = addr{m: a.m, off: off}
	case ir.BinOp:
		fr.regs[x.Out.ID], err = mc.binop(fr, x)
	case ir.Cmp:
		fr.regs[x.Out.ID], err = mc.cmp(fr, x)
	case ir.Conv:
		fr.regs[x.Out.ID], err = mc.conv(fr, x)
	case ir.Call:
		args := make([]any, len(x.Args))

		for i, a := range x.Args {
			args[i], err = mc.value(fr, a)
			if err != nil {
				return errors.Wrap(err, "arg %d", i)
			}
		}

		res, err := mc.Call(ctx, x.Func, args)
		if err != nil {
			return errors.Wrap(err, "call %v", x.Func.Name)
		}

		if x.Out.ID >= 0 {
			fr.regs[x.Out.ID] = fit(x.Out.T, res)
		}
	default:
		return errors.New("unsupported instr: %T", x)
	}

	return err
}

func (mc *Machine) value(fr *frame, v ir.Value) (any, error) {
	switch v := v.(type) {
	case ir.Int:
		return v.V, nil
	case ir.Float:
		return v.V, nil
	case ir.Null:
		return nil, nil
	case ir.Data:
		return mc.m.Data[v.ID].Bytes, nil
	case ir.Reg:
		return fr.regs[v.ID], nil
	case ir.Slot:
		switch v.Class {
		case ir.Param:
			return fr.args[v.ID], nil
		case ir.Global:
			return addr{m: mc.globals[v.ID]}, nil
		default:
			m := fr.locals[v.ID]
			if m == nil {
				return nil, errors.New("local %v used before alloca", fr.Locals[v.ID].Name)
			}

			return addr{m: m}, nil
		}
	case *ir.Func:
		return v, nil
	default:
		return nil, errors.New("unsupported value: %T", v)
	}
}

func (mc *Machine) addr(fr *frame, v ir.Value) (addr, error) {
	x, err := mc.value(fr, v)
	if err != nil {
		return addr{}, err
	}

	a, ok := x.(addr)
	if !ok {
		return addr{}, errors.New("not an address: %T", x)
	}

	return a, nil
}

func (mc *Machine) ival(fr *frame, v ir.Value) (int64, error) {
	x, err := mc.value(fr, v)
	if err != nil {
		return 0, err
	}

	i, ok := x.(int64)
	if !ok {
		return 0, errors.New("not an integer: %T", x)
	}

	return i, nil
}

func (mc *Machine) fval(fr *frame, v ir.Value) (float64, error) {
	x, err := mc.value(fr, v)
	if err != nil {
		return 0, err
	}

	f, ok := x.(float64)
	if !ok {
		return 0, errors.New("not a float: %T", x)
	}

	return f, nil
}

func (mc *Machine) binop(fr *frame, x ir.BinOp) (any, error) {
	if x.Op >= ir.FAdd && x.Op <= ir.FRem {
		l, err := mc.fval(fr, x.L)
		if err != nil {
			return nil, err
		}

		r, err := mc.fval(fr, x.R)
		if err != nil {
			return nil, err
		}

		switch x.Op {
		case ir.FAdd:
			return l + r, nil
		case ir.FSub:
			return l - r, nil
		case ir.FMul:
			return l * r, nil
		case ir.FDiv:
			return l / r, nil
		default:
			return math.Mod(l, r), nil
		}
	}

	l, err := mc.ival(fr, x.L)
	if err != nil {
		return nil, err
	}

	r, err := mc.ival(fr, x.R)
	if err != nil {
		return nil, err
	}

	var v int64

	switch x.Op {
	case ir.Add:
		v = l + r
	case ir.Sub:
		v = l - r
	case ir.Mul:
		v = l * r
	case ir.SDiv, ir.SRem:
		if r == 0 {
			return nil, errors.New("integer division by zero")
		}

		if x.Op == ir.SDiv {
			v = l / r
		} else {
			v = l % r
		}
	case ir.And:
		v = l & r
	case ir.Or:
		v = l | r
	case ir.Xor:
		v = l ^ r
	default:
		return nil, errors.New("unsupported op: %v", x.Op)
	}

	return fit(x.Out.T, v), nil
}

func (mc *Machine) cmp(fr *frame, x ir.Cmp) (any, error) {
	var res bool

	if x.Pred >= ir.FUEQ {
		l, err := mc.fval(fr, x.L)
		if err != nil {
			return nil, err
		}

		r, err := mc.fval(fr, x.R)
		if err != nil {
			return nil, err
		}

		// unordered predicates hold when either side is NaN
		nan := math.IsNaN(l) || math.IsNaN(r)

		switch x.Pred {
		case ir.FUEQ:
			res = nan || l == r
		case ir.FUNE:
			res = nan || l != r
		case ir.FULT:
			res = nan || l < r
		case ir.FULE:
			res = nan || l <= r
		case ir.FUGT:
			res = nan || l > r
		case ir.FUGE:
			res = nan || l >= r
		}

		return b2i(res), nil
	}

	if x.Pred == ir.EQ || x.Pred == ir.NE {
		l, err := mc.value(fr, x.L)
		if err != nil {
			return nil, err
		}

		r, err := mc.value(fr, x.R)
		if err != nil {
			return nil, err
		}

		return b2i((l == r) == (x.Pred == ir.EQ)), nil
	}

	l, err := mc.ival(fr, x.L)
	if err != nil {
		return nil, err
	}

	r, err := mc.ival(fr, x.R)
	if err != nil {
		return nil, err
	}

	switch x.Pred {
	case ir.SLT:
		res = l < r
	case ir.SLE:
		res = l <= r
	case ir.SGT:
		res = l > r
	case ir.SGE:
		res = l >= r
	}

	return b2i(res), nil
}

func (mc *Machine) conv(fr *frame, x ir.Conv) (any, error) {
	v, err := mc.ival(fr, x.X)
	if err != nil {
		return nil, err
	}

	switch x.Op {
	case ir.ZExt:
		if from, ok := x.X.Type().(tp.Int); ok && from.Bits < 64 {
			v &= 1<<from.Bits - 1
		}
	case ir.SExt:
	case ir.Trunc:
	default:
		return nil, errors.New("unsupported cast: %v", x.Op)
	}

	return fit(x.Out.T, v), nil
}

// fit wraps integers to the width of t.
func fit(t tp.Type, v any) any {
	i, ok := v.(int64)
	if !ok {
		return v
	}

	it, ok := t.(tp.Int)
	if !ok {
		return v
	}

	switch it.Bits {
	case 1:
		return i & 1
	case 8:
		return int64(int8(i))
	case 16:
		return int64(int16(i))
	case 32:
		return int64(int32(i))
	}

	return i
}

func b2i(b bool) int64 {
	if b {
		return 1
	}

	return 0
}
