package ir

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/tlog/tlwire"

	"github.com/slowlang/tac/compiler/ast"
)

type (
	// Instr is one line of three-address code.
	Instr interface {
		AppendTo(b []byte) []byte
	}

	// Operand is a Temp, a Var or a Lit.
	Operand interface {
		operand()
		String() string
	}

	Temp struct {
		ID   int
		Name string
	}

	Var string

	Lit string

	Label struct {
		ID   int
		Name string
	}

	Code []Instr

	Decl struct {
		Type ast.Type
		Name string
	}

	Copy struct {
		Dst Var
		Src Operand
	}

	BinOp struct {
		Dst   Temp
		Op    ast.Op
		Left  Operand
		Right Operand
	}

	// Mark places a label.
	Mark struct {
		Label Label
	}

	Goto struct {
		Label Label
	}

	// IfFalse jumps when Cond is zero.
	IfFalse struct {
		Cond  Operand
		Label Label
	}
)

func (Temp) operand() {}
func (Var) operand()  {}
func (Lit) operand()  {}

func (x Temp) String() string { return x.Name }
func (x Var) String() string  { return string(x) }
func (x Lit) String() string  { return string(x) }

func (x Decl) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "%v %s;", x.Type, x.Name)
}

func (x Copy) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "%s = %v;", x.Dst, x.Src)
}

func (x BinOp) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "%s = %v %v %v;", x.Dst.Name, x.Left, x.Op, x.Right)
}

func (x Mark) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "%s:", x.Label.Name)
}

func (x Goto) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "goto %s;", x.Label.Name)
}

func (x IfFalse) AppendTo(b []byte) []byte {
	return hfmt.Appendf(b, "if %v == 0 goto %s;", x.Cond, x.Label.Name)
}

// AppendTo renders the code one instruction per line.
func (c Code) AppendTo(b []byte) []byte {
	for _, x := range c {
		b = x.AppendTo(b)
		b = append(b, '\n')
	}

	return b
}

func (c Code) String() string {
	return string(c.AppendTo(nil))
}

func (c Code) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder
	var line []byte

	b = e.AppendTag(b, tlwire.Array, -1)

	for _, x := range c {
		line = x.AppendTo(line[:0])
		b = e.AppendString(b, string(line))
	}

	b = e.AppendBreak(b)

	return b
}
