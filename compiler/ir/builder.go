package ir

import (
	"fmt"

	"github.com/slowlang/pasir/compiler/tp"
)

type (
	// Builder appends instructions at an insertion point.
	//
	// Operands are not validated. Callers check categories first.
	Builder struct {
		M *Module

		f *Func
		b *Block
	}
)

func NewModule(name string) *Module {
	return &Module{Name: name}
}

func NewBuilder(m *Module) *Builder {
	return &Builder{M: m}
}

// Declare adds an external function, or returns the existing one.
func (b *Builder) Declare(name string, t tp.Func) *Func {
	if f := b.M.Func(name); f != nil {
		return f
	}

	f := &Func{
		Name:     b.M.unique(name),
		T:        t,
		External: true,
	}

	b.M.Funcs = append(b.M.Funcs, f)

	return f
}

// Define adds a function with an entry block and moves the insertion point there.
// A name already used by a function or a global gets a numeric suffix.
func (b *Builder) Define(name string, t tp.Func, params []string) *Func {
	f := &Func{
		Name:   b.M.unique(name),
		T:      t,
		Params: params,
		names:  map[string]int{},
	}

	b.M.Funcs = append(b.M.Funcs, f)

	b.f = f
	b.b = b.NewBlock("entry")

	return f
}

func (b *Builder) Func() *Func   { return b.f }
func (b *Builder) Block() *Block { return b.b }

// SetInsertPoint moves the builder to the end of blk, which belongs to f.
func (b *Builder) SetInsertPoint(f *Func, blk *Block) {
	b.f = f
	b.b = blk
}

// NewBlock appends an empty block to the current function.
// Names are made unique within the function.
func (b *Builder) NewBlock(name string) *Block {
	f := b.f

	if f.names == nil {
		f.names = map[string]int{}
	}

	n := f.names[name]
	f.names[name] = n + 1

	if n != 0 {
		name = fmt.Sprintf("%s%d", name, n)
	}

	blk := &Block{
		ID:   len(f.Blocks),
		Name: name,
	}

	f.Blocks = append(f.Blocks, blk)

	return blk
}

// String adds a private constant holding s with a trailing NUL.
// Every call adds a new datum.
func (b *Builder) String(name, s string) Data {
	b.M.Data = append(b.M.Data, Datum{
		Name:  name,
		Bytes: s,
	})

	return Data{ID: len(b.M.Data) - 1}
}

// GlobalVar adds a zero initialized module variable.
// It shares the namespace with functions.
func (b *Builder) GlobalVar(name string, t tp.Type) Slot {
	b.M.Vars = append(b.M.Vars, Var{Name: b.M.unique(name), T: t})

	return Slot{ID: len(b.M.Vars) - 1, Class: Global, T: t}
}

func (b *Builder) Alloca(name string, t tp.Type) Slot {
	f := b.f
	f.Locals = append(f.Locals, Local{Name: name, T: t})

	s := Slot{ID: len(f.Locals) - 1, Class: Stack, T: t}

	b.emit(Alloca{Slot: s})

	return s
}

// Arg is the i-th parameter of the current function.
func (b *Builder) Arg(i int) Slot {
	return Slot{ID: i, Class: Param, T: b.f.T.In[i]}
}

func (b *Builder) Load(ptr Value) Value {
	var t tp.Type

	if p, ok := ptr.Type().(tp.Ptr); ok {
		t = p.X
	}

	out := b.reg(t)
	b.emit(Load{Out: out, Ptr: ptr})

	return out
}

func (b *Builder) Store(ptr, v Value) {
	b.emit(Store{Ptr: ptr, Val: v})
}

func (b *Builder) ElemAddr(base, idx Value) Value {
	var t tp.Type

	if p, ok := base.Type().(tp.Ptr); ok {
		t = tp.Elem(p.X)
	}

	out := b.reg(tp.Ptr{X: t})
	b.emit(ElemAddr{Out: out, Base: base, Index: idx})

	return out
}

func (b *Builder) Bin(op Op, l, r Value) Value {
	out := b.reg(l.Type())
	b.emit(BinOp{Out: out, Op: op, L: l, R: r})

	return out
}

func (b *Builder) Cmp(p Pred, l, r Value) Value {
	out := b.reg(tp.I1)
	b.emit(Cmp{Out: out, Pred: p, L: l, R: r})

	return out
}

func (b *Builder) Conv(op Cast, x Value, t tp.Type) Value {
	out := b.reg(t)
	b.emit(Conv{Out: out, Op: op, X: x})

	return out
}

// Call returns nil for void callees.
func (b *Builder) Call(f *Func, args ...Value) Value {
	out := Reg{ID: -1}

	if f.T.Out != nil {
		if _, void := f.T.Out.(tp.Void); !void {
			out = b.reg(f.T.Out)
		}
	}

	b.emit(Call{Out: out, Func: f, Args: args})

	if out.ID < 0 {
		return nil
	}

	return out
}

func (b *Builder) Br(to *Block) {
	b.emit(Br{To: to})
}

func (b *Builder) CondBr(cond Value, then, els *Block) {
	b.emit(CondBr{Cond: cond, Then: then, Else: els})
}

// Ret with nil v returns void.
func (b *Builder) Ret(v Value) {
	b.emit(Ret{Val: v})
}

func (b *Builder) Unreachable() {
	b.emit(Unreachable{})
}

func (m *Module) unique(name string) string {
	if m.taken == nil {
		m.taken = map[string]struct{}{}
	}

	s := name

	for i := 1; ; i++ {
		if _, ok := m.taken[s]; !ok {
			break
		}

		s = fmt.Sprintf("%s.%d", name, i)
	}

	m.taken[s] = struct{}{}

	return s
}

func (b *Builder) reg(t tp.Type) Reg {
	r := Reg{ID: b.f.Regs, T: t}
	b.f.Regs++

	return r
}

// emit appends x to the current block. Code following a terminator
// goes to a fresh block that nothing branches to.
func (b *Builder) emit(x Instr) {
	if b.b.Terminated() {
		b.b = b.NewBlock("dead")
	}

	b.b.Code = append(b.b.Code, x)
}
