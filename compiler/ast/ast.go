package ast

type (
	// Node is one of the node kinds declared in this package.
	// The set is closed: only types here implement it.
	Node interface {
		Position() int
		node()
	}

	Base struct {
		Pos int
		End int
	}

	Op string

	Integer struct {
		Base `tlog:",embed"`

		Value int32
	}

	Real struct {
		Base `tlog:",embed"`

		Value float64
	}

	Char struct {
		Base `tlog:",embed"`

		Value byte
	}

	String struct {
		Base `tlog:",embed"`

		Value string
	}

	Date struct {
		Base `tlog:",embed"`

		Value string
	}

	Boolean struct {
		Base `tlog:",embed"`

		Value bool
	}

	Identifier struct {
		Base `tlog:",embed"`

		Name string
	}

	Declaration struct {
		Base `tlog:",embed"`

		Name string
		Type string
	}

	// ArrayDeclaration declares Name as array [Start..End] of Type.
	ArrayDeclaration struct {
		Base `tlog:",embed"`

		Name  string
		Type  string
		Start int
		End   int
	}

	Assignment struct {
		Base `tlog:",embed"`

		Name  string
		Value Node
	}

	ArrayAssignment struct {
		Base `tlog:",embed"`

		Name  string
		Index Node
		Value Node
	}

	ArrayAccess struct {
		Base `tlog:",embed"`

		Name  string
		Index Node
	}

	BinaryOp struct {
		Base `tlog:",embed"`

		Op    Op
		Left  Node
		Right Node
	}

	UnaryOp struct {
		Base `tlog:",embed"`

		Op Op
		X  Node
	}

	Comparison struct {
		Base `tlog:",embed"`

		Op    Op
		Left  Node
		Right Node
	}

	// LogicalOp is and, or, not. Not uses Right only.
	LogicalOp struct {
		Base `tlog:",embed"`

		Op    Op
		Left  Node
		Right Node
	}

	If struct {
		Base `tlog:",embed"`

		Cond Node
		Then []Node
		Else []Node
	}

	For struct {
		Base `tlog:",embed"`

		Init Node
		Cond Node
		Step Node
		Body []Node
	}

	While struct {
		Base `tlog:",embed"`

		Cond Node
		Body []Node
	}

	// Repeat runs Body until Cond holds.
	Repeat struct {
		Base `tlog:",embed"`

		Body []Node
		Cond Node
	}

	Param struct {
		Name string
		Type string
	}

	Procedure struct {
		Base `tlog:",embed"`

		Name   string
		Params []Param
		Body   []Node
	}

	Function struct {
		Base `tlog:",embed"`

		Name   string
		Params []Param
		Ret    string
		Body   []Node
	}

	FuncCall struct {
		Base `tlog:",embed"`

		Name string
		Args []Node
	}

	// Return carries no Value in procedures.
	Return struct {
		Base `tlog:",embed"`

		Value Node
	}

	Output struct {
		Base `tlog:",embed"`

		Args []Node
	}

	// Input reads one Identifier or ArrayAccess target.
	Input struct {
		Base `tlog:",embed"`

		Target Node
	}

	StatementBlock struct {
		Base `tlog:",embed"`

		Stmts []Node
	}
)

const (
	Add  Op = "+"
	Sub  Op = "-"
	Mul  Op = "*"
	Div  Op = "/"
	IDiv Op = "div"
	Mod  Op = "mod"

	Eq Op = "="
	Ne Op = "<>"
	Lt Op = "<"
	Le Op = "<="
	Gt Op = ">"
	Ge Op = ">="

	And Op = "and"
	Or  Op = "or"
	Not Op = "not"
)

func (b Base) Position() int { return b.Pos }

func (*Integer) node()          {}
func (*Real) node()             {}
func (*Char) node()             {}
func (*String) node()           {}
func (*Date) node()             {}
func (*Boolean) node()          {}
func (*Identifier) node()       {}
func (*Declaration) node()      {}
func (*ArrayDeclaration) node() {}
func (*Assignment) node()       {}
func (*ArrayAssignment) node()  {}
func (*ArrayAccess) node()      {}
func (*BinaryOp) node()         {}
func (*UnaryOp) node()          {}
func (*Comparison) node()       {}
func (*LogicalOp) node()        {}
func (*If) node()               {}
func (*For) node()              {}
func (*While) node()            {}
func (*Repeat) node()           {}
func (*Procedure) node()        {}
func (*Function) node()         {}
func (*FuncCall) node()         {}
func (*Return) node()           {}
func (*Output) node()           {}
func (*Input) node()            {}
func (*StatementBlock) node()   {}
