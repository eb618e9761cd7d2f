package ast

import "fmt"

type (
	Node interface {
		Position() int
	}

	Stmt interface {
		Node
		stmtNode()
	}

	Expr interface {
		Node
		exprNode()
	}

	Base struct {
		Pos int
	}

	Program struct {
		Base

		Decls []*VarDecl
		Stmts []Stmt
	}

	VarDecl struct {
		Base

		Type  Type
		Names []string
	}

	Assignment struct {
		Base

		Name  string
		Value Expr
	}

	While struct {
		Base

		Cond Expr
		Body []Stmt
	}

	If struct {
		Base

		Cond Expr
		Then []Stmt
		Else []Stmt
	}

	BinaryExpr struct {
		Base

		Op    Op
		Left  Expr
		Right Expr
	}

	Literal struct {
		Base

		Text string
	}

	Variable struct {
		Base

		Name string
	}

	Type uint8

	Op uint8
)

const (
	_ Type = iota
	TypeInt
	TypeReal
)

const (
	_ Op = iota

	Add
	Sub
	Mul
	Div
	Pow

	Lt
	Gt
	Le
	Ge
	Eq
	Ne

	numOps
)

var opSymbols = [numOps]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Pow: "^",
	Lt:  "<",
	Gt:  ">",
	Le:  "<=",
	Ge:  ">=",
	Eq:  "==",
	Ne:  "!=",
}

func (b Base) Position() int { return b.Pos }

func (*Assignment) stmtNode() {}
func (*While) stmtNode()      {}
func (*If) stmtNode()         {}

func (*BinaryExpr) exprNode() {}
func (*Literal) exprNode()    {}
func (*Variable) exprNode()   {}

// Valid reports whether op is one of the known operators.
func (op Op) Valid() bool {
	return op > 0 && op < numOps
}

func (op Op) Relational() bool {
	return op >= Lt && op <= Ne
}

// Prec is the binding strength: relational 1, additive 2, multiplicative and power 3.
func (op Op) Prec() int {
	switch {
	case op.Relational():
		return 1
	case op == Add || op == Sub:
		return 2
	case op.Valid():
		return 3
	}

	return 0
}

func (op Op) String() string {
	if op.Valid() {
		return opSymbols[op]
	}

	return fmt.Sprintf("Op(%d)", int(op))
}

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeReal:
		return "real"
	}

	return fmt.Sprintf("Type(%d)", int(t))
}
