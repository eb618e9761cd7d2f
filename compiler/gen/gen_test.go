package gen

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/parse"
)

const sample = `
var
	int cont, num;
	real cont2;

num = 0;
while (cont < 10) {
	cont2 = 3.1415 * cont ^ 2;
	if (cont < 5) {
		num = num + cont2;
	} else {
		cont = 0;
	}
	cont = cont + 1;
}
`

func compile(t *testing.T, src string, opts ...Option) ir.Code {
	t.Helper()

	ctx := context.Background()

	p, err := parse.ParseText(ctx, []byte(src))
	require.NoError(t, err)

	code, err := Generate(ctx, p, opts...)
	require.NoError(t, err)

	require.NoError(t, ir.Verify(code))

	return code
}

func TestSingleAssignment(t *testing.T) {
	code := compile(t, "x = 1 + 2;")

	assert.Equal(t, "t0 = 1 + 2;\nx = t0;\n", code.String())
}

func TestLeafAssignment(t *testing.T) {
	code := compile(t, "x = 5; y = x;")

	assert.Equal(t, "x = 5;\ny = x;\n", code.String())
}

func TestOperandOrder(t *testing.T) {
	code := compile(t, "x = a * b - c / d;")

	assert.Equal(t, `t0 = a * b;
t1 = c / d;
t2 = t0 - t1;
x = t2;
`, code.String())
}

func TestAllOperators(t *testing.T) {
	code := compile(t, `
x = a + b;
x = a - b;
x = a * b;
x = a / b;
x = a ^ b;
if (a < b) {} if (a > b) {} if (a <= b) {} if (a >= b) {} if (a == b) {} if (a != b) {}
`)

	var ops []string
	for _, x := range code {
		if b, ok := x.(ir.BinOp); ok {
			ops = append(ops, b.Op.String())
		}
	}

	assert.Equal(t, []string{"+", "-", "*", "/", "^", "<", ">", "<=", ">=", "==", "!="}, ops)
}

func TestWhile(t *testing.T) {
	code := compile(t, "while (cont < 10) { cont = cont + 1; }")

	assert.Equal(t, `L0:
t0 = cont < 10;
if t0 == 0 goto L1;
t1 = cont + 1;
cont = t1;
goto L0;
L1:
`, code.String())

	var labels, jumps int
	for _, x := range code {
		switch x.(type) {
		case ir.Mark:
			labels++
		case ir.Goto, ir.IfFalse:
			jumps++
		}
	}

	assert.Equal(t, 2, labels)
	assert.Equal(t, 2, jumps)
}

func TestIfElse(t *testing.T) {
	code := compile(t, "if (cont < 5) { num = num + cont2; } else { cont = 0; }")

	assert.Equal(t, `t0 = cont < 5;
if t0 == 0 goto L0;
t1 = num + cont2;
num = t1;
goto L1;
L0:
cont = 0;
L1:
`, code.String())
}

func TestIfWithoutElse(t *testing.T) {
	code := compile(t, "if (cont < 5) { num = num + cont2; }")

	assert.Equal(t, `t0 = cont < 5;
if t0 == 0 goto L0;
t1 = num + cont2;
num = t1;
goto L1;
L0:
L1:
`, code.String())
}

func TestEmptyProgram(t *testing.T) {
	code := compile(t, "")
	assert.Empty(t, code)

	code = compile(t, "var")
	assert.Empty(t, code)
}

func TestSample(t *testing.T) {
	code := compile(t, sample)

	assert.Equal(t, `int cont;
int num;
real cont2;
num = 0;
L0:
t0 = cont < 10;
if t0 == 0 goto L1;
t1 = 3.1415 * cont;
t2 = t1 ^ 2;
cont2 = t2;
t3 = cont < 5;
if t3 == 0 goto L2;
t4 = num + cont2;
num = t4;
goto L3;
L2:
cont = 0;
L3:
t5 = cont + 1;
cont = t5;
goto L0;
L1:
`, code.String())
}

func TestNamedLabels(t *testing.T) {
	code := compile(t, sample, WithNamedLabels(), WithTempPrefix("T"), WithoutDecls())

	assert.Equal(t, `num = 0;
WHILE1:
T0 = cont < 10;
if T0 == 0 goto END1;
T1 = 3.1415 * cont;
T2 = T1 ^ 2;
cont2 = T2;
T3 = cont < 5;
if T3 == 0 goto ELSE1;
T4 = num + cont2;
num = T4;
goto END2;
ELSE1:
cont = 0;
END2:
T5 = cont + 1;
cont = T5;
goto WHILE1;
END1:
`, code.String())
}

var (
	numRE   = regexp.MustCompile(`[0-9]+`)
	labelRE = regexp.MustCompile(`\b(WHILE|ELSE|END)[0-9]+\b`)
)

func TestIndependentRuns(t *testing.T) {
	ctx := context.Background()

	p, err := parse.ParseText(ctx, []byte(sample))
	require.NoError(t, err)

	g := New()

	a, err := g.Generate(ctx, p)
	require.NoError(t, err)

	b, err := g.Generate(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, a.String(), b.String(), "counters restart on every run")

	c, err := New(WithNamedLabels()).Generate(ctx, p)
	require.NoError(t, err)

	require.Len(t, c, len(a))

	for i := range a {
		assert.IsType(t, a[i], c[i])

		if x, ok := a[i].(ir.BinOp); ok {
			assert.Equal(t, x.Op, c[i].(ir.BinOp).Op)
		}
	}

	mask := func(code ir.Code) string {
		text := labelRE.ReplaceAllString(code.String(), "L0")

		return numRE.ReplaceAllString(text, "N")
	}

	assert.Equal(t, mask(a), mask(c), "same code up to label names")
	assert.NotEqual(t, a.String(), c.String())
}

func TestTempPrefixCollidesWithLabels(t *testing.T) {
	ctx := context.Background()

	p, err := parse.ParseText(ctx, []byte("while (a < 1) { a = a + 1; }"))
	require.NoError(t, err)

	for _, tc := range []struct {
		prefix string
		opts   []Option
	}{
		{"L", nil},
		{"L1", nil},
		{"", nil},
		{"END", []Option{WithNamedLabels()}},
		{"WHILE", []Option{WithNamedLabels()}},
		{"ELSE2", []Option{WithNamedLabels()}},
	} {
		_, err := Generate(ctx, p, append(tc.opts, WithTempPrefix(tc.prefix))...)
		assert.Error(t, err, "prefix %q", tc.prefix)
	}

	for _, tc := range []struct {
		prefix string
		opts   []Option
	}{
		{"T", nil},
		{"Lx", nil},
		{"L", []Option{WithNamedLabels()}},
		{"ENDx", []Option{WithNamedLabels()}},
	} {
		code, err := Generate(ctx, p, append(tc.opts, WithTempPrefix(tc.prefix))...)
		require.NoError(t, err, "prefix %q", tc.prefix)
		assert.NoError(t, ir.Verify(code), "prefix %q", tc.prefix)
	}
}

func TestTempsSkipProgramNames(t *testing.T) {
	code := compile(t, "a = t0 + 1; b = t0; c = t2 * (t0 + t1);")

	assert.Equal(t, `t3 = t0 + 1;
a = t3;
b = t0;
t4 = t0 + t1;
t5 = t2 * t4;
c = t5;
`, code.String())

	code = compile(t, "var int T0; x = 1 + 2;", WithTempPrefix("T"))

	assert.Equal(t, "int T0;\nT1 = 1 + 2;\nx = T1;\n", code.String())
}

func TestConcurrentRuns(t *testing.T) {
	ctx := context.Background()

	p, err := parse.ParseText(ctx, []byte(sample))
	require.NoError(t, err)

	g := New(WithNamedLabels())

	exp, err := g.Generate(ctx, p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	res := make([]string, 8)

	for i := range res {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			code, err := g.Generate(ctx, p)
			if err == nil {
				res[i] = code.String()
			}
		}(i)
	}

	wg.Wait()

	for _, r := range res {
		assert.Equal(t, exp.String(), r)
	}
}

func TestUnknownOperatorPanics(t *testing.T) {
	p := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.Assignment{
				Name: "x",
				Value: &ast.BinaryExpr{
					Op:    ast.Op(100),
					Left:  &ast.Literal{Text: "1"},
					Right: &ast.Literal{Text: "2"},
				},
			},
		},
	}

	assert.PanicsWithValue(t, UnknownOperatorError{Op: ast.Op(100)}, func() {
		_, _ = Generate(context.Background(), p)
	})

	assert.Equal(t, "unknown operator: Op(100)", UnknownOperatorError{Op: ast.Op(100)}.Error())
}

func TestUnknownNodePanics(t *testing.T) {
	p := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.Assignment{Name: "x"},
		},
	}

	assert.Panics(t, func() {
		_, _ = Generate(context.Background(), p)
	})
}
