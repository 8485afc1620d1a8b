package ir

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/pasir/compiler/tp"
)

type (
	// Value is anything an instruction can take as an operand.
	Value interface {
		Type() tp.Type
	}

	Int struct {
		T tp.Int
		V int64
	}

	Float struct {
		V float64
	}

	Null struct{}

	// Zeroinit is the all-zero value of an aggregate.
	Zeroinit struct {
		T tp.Type
	}

	// Data points to Module.Data[ID].
	Data struct {
		ID int
	}

	// Slot is the storage behind a symbol.
	// Stack and Global slots evaluate to a pointer to T.
	// Param slots evaluate to the argument itself.
	Slot struct {
		ID    int
		Class Class
		T     tp.Type
	}

	Reg struct {
		ID int
		T  tp.Type
	}

	Class int8

	Op   int8
	Pred int8
	Cast int8

	Instr any

	Alloca struct {
		Slot Slot
	}

	Load struct {
		Out Reg
		Ptr Value
	}

	Store struct {
		Ptr Value
		Val Value
	}

	// ElemAddr is the address of element Index of the array at Base.
	ElemAddr struct {
		Out   Reg
		Base  Value
		Index Value
	}

	BinOp struct {
		Out Reg
		Op  Op
		L   Value
		R   Value
	}

	Cmp struct {
		Out  Reg
		Pred Pred
		L    Value
		R    Value
	}

	Conv struct {
		Out Reg
		Op  Cast
		X   Value
	}

	// Call has Out.ID < 0 for void callees.
	Call struct {
		Out  Reg
		Func *Func
		Args []Value
	}

	Br struct {
		To *Block
	}

	CondBr struct {
		Cond Value
		Then *Block
		Else *Block
	}

	Ret struct {
		Val Value
	}

	Unreachable struct{}

	Block struct {
		ID   int
		Name string

		Code []Instr
	}

	Local struct {
		Name string
		T    tp.Type
	}

	Func struct {
		Name   string
		T      tp.Func
		Params []string

		External bool

		Blocks []*Block
		Locals []Local
		Regs   int

		names map[string]int
	}

	Var struct {
		Name string
		T    tp.Type
	}

	Datum struct {
		Name  string
		Bytes string
	}

	Module struct {
		Name string

		Data  []Datum
		Vars  []Var
		Funcs []*Func

		// taken holds the names of globals and functions.
		taken map[string]struct{}
	}
)

const (
	Stack Class = iota
	Global
	Param
)

const (
	Add Op = iota
	Sub
	Mul
	SDiv
	SRem
	FAdd
	FSub
	FMul
	FDiv
	FRem
	And
	Or
	Xor
)

const (
	EQ Pred = iota
	NE
	SLT
	SLE
	SGT
	SGE
	FUEQ
	FUNE
	FULT
	FULE
	FUGT
	FUGE
)

const (
	Trunc Cast = iota
	SExt
	ZExt
)

func (x Int) Type() tp.Type      { return x.T }
func (x Float) Type() tp.Type    { return tp.Double }
func (x Null) Type() tp.Type     { return tp.Bytes }
func (x Zeroinit) Type() tp.Type { return x.T }
func (x Data) Type() tp.Type     { return tp.Bytes }
func (x Reg) Type() tp.Type      { return x.T }

func (x Slot) Type() tp.Type {
	if x.Class == Param {
		return x.T
	}

	return tp.Ptr{X: x.T}
}

func (f *Func) Type() tp.Type { return tp.Ptr{X: f.T} }

// Zero returns the default value of a scalar type.
func Zero(t tp.Type) Value {
	switch t := t.(type) {
	case tp.Int:
		return Int{T: t}
	case tp.Float:
		return Float{}
	case tp.Ptr:
		return Null{}
	case tp.Array:
		return Zeroinit{T: t}
	default:
		return nil
	}
}

func ConstInt(t tp.Int, v int64) Int { return Int{T: t, V: v} }

func Bool(v bool) Int {
	if v {
		return Int{T: tp.I1, V: 1}
	}

	return Int{T: tp.I1}
}

// Terminated reports whether the block ends with a branch, return or unreachable.
func (b *Block) Terminated() bool {
	if len(b.Code) == 0 {
		return false
	}

	switch b.Code[len(b.Code)-1].(type) {
	case Br, CondBr, Ret, Unreachable:
		return true
	}

	return false
}

// Succs returns the blocks the terminator may transfer control to.
func (b *Block) Succs() []*Block {
	if !b.Terminated() {
		return nil
	}

	switch x := b.Code[len(b.Code)-1].(type) {
	case Br:
		return []*Block{x.To}
	case CondBr:
		return []*Block{x.Then, x.Else}
	}

	return nil
}

func (m *Module) Func(name string) *Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}

	return nil
}

func (s Slot) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt64(b, "class", int64(s.Class))
	b = e.AppendKeyInt64(b, "id", int64(s.ID))

	return b
}

func (c Class) String() string {
	switch c {
	case Stack:
		return "stack"
	case Global:
		return "global"
	case Param:
		return "param"
	default:
		return "class?"
	}
}
