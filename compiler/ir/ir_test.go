package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tac/compiler/ast"
)

var (
	t0 = Temp{ID: 0, Name: "t0"}
	t1 = Temp{ID: 1, Name: "t1"}
	l0 = Label{ID: 0, Name: "L0"}
	l1 = Label{ID: 1, Name: "L1"}
)

func TestCodeText(t *testing.T) {
	c := Code{
		Decl{Type: ast.TypeReal, Name: "x"},
		Mark{Label: l0},
		BinOp{Dst: t0, Op: ast.Le, Left: Var("x"), Right: Lit("10.5")},
		IfFalse{Cond: t0, Label: l1},
		BinOp{Dst: t1, Op: ast.Pow, Left: Var("x"), Right: Lit("2")},
		Copy{Dst: "x", Src: t1},
		Copy{Dst: "y", Src: Lit("0")},
		Goto{Label: l0},
		Mark{Label: l1},
	}

	exp := `real x;
L0:
t0 = x <= 10.5;
if t0 == 0 goto L1;
t1 = x ^ 2;
x = t1;
y = 0;
goto L0;
L1:
`

	assert.Equal(t, exp, c.String())
	assert.Equal(t, "pre\n"+exp, string(c.AppendTo([]byte("pre\n"))))

	assert.NoError(t, Verify(c))
}

func TestCodeEmpty(t *testing.T) {
	assert.Equal(t, "", Code(nil).String())
	assert.NoError(t, Verify(nil))
}

func TestVerifyErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		code Code
		msg  string
	}{
		{"read_before_assign", Code{
			Copy{Dst: "x", Src: t0},
		}, "temp t0 read before assignment"},
		{"assigned_twice", Code{
			BinOp{Dst: t0, Op: ast.Add, Left: Lit("1"), Right: Lit("2")},
			BinOp{Dst: t0, Op: ast.Add, Left: Lit("1"), Right: Lit("2")},
		}, "temp t0 assigned twice"},
		{"name_clash", Code{
			BinOp{Dst: t0, Op: ast.Add, Left: Lit("1"), Right: Lit("2")},
			BinOp{Dst: Temp{ID: 5, Name: "t0"}, Op: ast.Add, Left: Lit("1"), Right: Lit("2")},
		}, "name t0 already used at instr 0"},
		{"unknown_op", Code{
			BinOp{Dst: t0, Op: ast.Op(99), Left: Lit("1"), Right: Lit("2")},
		}, "unknown operator"},
		{"right_operand", Code{
			BinOp{Dst: t1, Op: ast.Sub, Left: Lit("1"), Right: t0},
		}, "temp t0 read before assignment"},
		{"cond", Code{
			IfFalse{Cond: t1, Label: l0},
			Mark{Label: l0},
		}, "temp t1 read before assignment"},
		{"label_twice", Code{
			Mark{Label: l0},
			Mark{Label: l0},
		}, "label L0 placed twice"},
		{"undefined_label", Code{
			Mark{Label: l0},
			Goto{Label: l1},
		}, "jump to undefined label L1"},
		{"unsupported", Code{
			nil,
		}, "unsupported instruction"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := Verify(tc.code)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
