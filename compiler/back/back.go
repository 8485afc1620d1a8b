// Package back executes IR modules.
//
// Memory is typed: every slot owns a cell array and pointers
// address one element of it. External calls are served by a small
// printf/scanf runtime.
package back

import (
	"bufio"
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler/ir"
	"github.com/slowlang/pasir/compiler/tp"
)

type (
	Options struct {
		Stdin  io.Reader
		Stdout io.Writer

		// MaxSteps stops runaway programs. Zero means no limit.
		MaxSteps int
	}

	Machine struct {
		m *ir.Module

		in  *bufio.Reader
		out io.Writer

		globals []*mem

		steps    int
		maxSteps int

		depth int
	}

	mem struct {
		t tp.Type // element type
		v []any
	}

	addr struct {
		m   *mem
		off int
	}

	frame struct {
		*ir.Func

		regs   []any
		locals []*mem
		args   []any
	}

	runtimeFunc func(ctx context.Context, m *Machine, args []any) (any, error)
)

var (
	ErrStepLimit = errors.New("step limit exceeded")
	ErrNoMain    = errors.New("no main function")
)

const maxDepth = 10000

var builtins = map[string]runtimeFunc{
	"printf": printf,
	"scanf":  scanf,
}

// Run executes main and returns its result as the exit code.
func Run(ctx context.Context, m *ir.Module, opts Options) (code int, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: run", "module", m.Name)
	defer tr.Finish("err", &err)

	mc := New(m, opts)

	main := m.Func("main")
	if main == nil || main.External {
		return 0, ErrNoMain
	}

	res, err := mc.Call(ctx, main, nil)
	if err != nil {
		return 0, errors.Wrap(err, "main")
	}

	tr.Printw("finished", "steps", mc.steps)

	if v, ok := res.(int64); ok {
		return int(v), nil
	}

	return 0, nil
}

func New(m *ir.Module, opts Options) *Machine {
	mc := &Machine{
		m:        m,
		in:       bufio.NewReader(or[io.Reader](opts.Stdin, os.Stdin)),
		out:      or[io.Writer](opts.Stdout, os.Stdout),
		maxSteps: opts.MaxSteps,
	}

	for _, v := range m.Vars {
		mc.globals = append(mc.globals, newMem(v.T))
	}

	return mc
}

// Steps is the number of instructions executed so far.
func (mc *Machine) Steps() int { return mc.steps }

// Call runs f with args and returns its result, nil for void.
func (mc *Machine) Call(ctx context.Context, f *ir.Func, args []any) (any, error) {
	if f.External {
		rt, ok := builtins[f.Name]
		if !ok {
			return nil, errors.New("unresolved external %v", f.Name)
		}

		return rt(ctx, mc, args)
	}

	if len(args) != len(f.T.In) {
		return nil, errors.New("%v: want %d args, got %d", f.Name, len(f.T.In), len(args))
	}

	if mc.depth >= maxDepth {
		return nil, errors.New("%v: call depth exceeded", f.Name)
	}

	mc.depth++
	defer func() { mc.depth-- }()

	fr := &frame{
		Func:   f,
		regs:   make([]any, f.Regs),
		locals: make([]*mem, len(f.Locals)),
		args:   args,
	}

	return mc.exec(ctx, fr)
}

func newMem(t tp.Type) *mem {
	if a, ok := t.(tp.Array); ok {
		m := &mem{t: a.X, v: make([]any, a.Len)}
		m.clear()

		return m
	}

	return &mem{t: t, v: []any{zero(t)}}
}

func (m *mem) clear() {
	for i := range m.v {
		m.v[i] = zero(m.t)
	}
}

func zero(t tp.Type) any {
	switch t.(type) {
	case tp.Int:
		return int64(0)
	case tp.Float:
		return float64(0)
	default:
		return nil
	}
}

func or[T comparable](v, def T) T {
	var z T

	if v == z {
		return def
	}

	return v
}
