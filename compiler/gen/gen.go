package gen

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/ir"
)

type (
	// Generator translates a Program into three-address code.
	// It holds configuration only, so one Generator may be used concurrently.
	Generator struct {
		tempPrefix  string
		namedLabels bool
		noDecls     bool
	}

	Option func(g *Generator)

	// UnknownOperatorError is the panic value for an operator outside the known set.
	// Such a tree can't come out of the parser.
	UnknownOperatorError struct {
		Op ast.Op
	}

	// UnknownNodeError is the panic value for a node type the generator doesn't know.
	UnknownNodeError struct {
		Node ast.Node
	}

	// run is the state of one Generate call.
	run struct {
		*Generator

		code ir.Code

		temps  int
		tnext  int
		labels int
		named  map[string]int

		idents map[string]struct{}
	}
)

// Label categories of the named scheme.
const (
	LabelWhile = "WHILE"
	LabelElse  = "ELSE"
	LabelEnd   = "END"
)

// WithTempPrefix names temps <p><N>.
// Generate fails if such names could be taken for labels of the scheme in use.
// Numbers already used by program identifiers are skipped,
// so with prefix "t" and a variable t0 the first temp is t1.
func WithTempPrefix(p string) Option {
	return func(g *Generator) { g.tempPrefix = p }
}

// WithNamedLabels names labels WHILE<N>, ELSE<N>, END<N> instead of L<N>.
func WithNamedLabels() Option {
	return func(g *Generator) { g.namedLabels = true }
}

// WithoutDecls omits declaration lines.
func WithoutDecls() Option {
	return func(g *Generator) { g.noDecls = true }
}

func New(opts ...Option) *Generator {
	g := &Generator{
		tempPrefix: "t",
	}

	for _, o := range opts {
		o(g)
	}

	return g
}

func Generate(ctx context.Context, p *ast.Program, opts ...Option) (ir.Code, error) {
	return New(opts...).Generate(ctx, p)
}

// Generate emits code for p. Counters start from scratch on every call.
func (g *Generator) Generate(ctx context.Context, p *ast.Program) (code ir.Code, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "generate", "decls", len(p.Decls), "stmts", len(p.Stmts))
	defer tr.Finish("err", &err)

	if err = g.checkTempPrefix(); err != nil {
		return nil, err
	}

	r := &run{
		Generator: g,
		idents:    idents(p),
	}

	if !g.noDecls {
		for _, d := range p.Decls {
			r.decl(d)
		}
	}

	r.stmts(ctx, p.Stmts)

	if tr.If("dump_code") {
		tr.Printw("code", "code", r.code)
	}

	tr.Printw("generated", "instrs", len(r.code), "temps", r.temps, "labels", r.labels)

	return r.code, nil
}

func (r *run) decl(d *ast.VarDecl) {
	for _, n := range d.Names {
		r.emit(ir.Decl{Type: d.Type, Name: n})
	}
}

func (r *run) stmts(ctx context.Context, l []ast.Stmt) {
	for _, s := range l {
		r.stmt(ctx, s)
	}
}

func (r *run) stmt(ctx context.Context, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Assignment:
		v := r.expr(ctx, s.Value)

		r.emit(ir.Copy{Dst: ir.Var(s.Name), Src: v})
	case *ast.While:
		start := r.label(LabelWhile)
		end := r.label(LabelEnd)

		r.emit(ir.Mark{Label: start})

		c := r.expr(ctx, s.Cond)
		r.emit(ir.IfFalse{Cond: c, Label: end})

		r.stmts(ctx, s.Body)

		r.emit(ir.Goto{Label: start})
		r.emit(ir.Mark{Label: end})
	case *ast.If:
		els := r.label(LabelElse)
		end := r.label(LabelEnd)

		c := r.expr(ctx, s.Cond)
		r.emit(ir.IfFalse{Cond: c, Label: els})

		r.stmts(ctx, s.Then)

		r.emit(ir.Goto{Label: end})
		r.emit(ir.Mark{Label: els})

		r.stmts(ctx, s.Else)

		r.emit(ir.Mark{Label: end})
	default:
		panic(UnknownNodeError{Node: s})
	}
}

// expr emits code computing x and returns the operand holding the result.
func (r *run) expr(ctx context.Context, x ast.Expr) ir.Operand {
	switch x := x.(type) {
	case *ast.Literal:
		return ir.Lit(x.Text)
	case *ast.Variable:
		return ir.Var(x.Name)
	case *ast.BinaryExpr:
		if !x.Op.Valid() {
			panic(UnknownOperatorError{Op: x.Op})
		}

		l := r.expr(ctx, x.Left)
		rr := r.expr(ctx, x.Right)

		t := r.temp()

		r.emit(ir.BinOp{Dst: t, Op: x.Op, Left: l, Right: rr})

		return t
	default:
		panic(UnknownNodeError{Node: x})
	}
}

func (r *run) emit(x ir.Instr) {
	r.code = append(r.code, x)
}

func (r *run) temp() ir.Temp {
	t := ir.Temp{ID: r.temps}

	r.temps++

	for {
		t.Name = r.tempPrefix + strconv.Itoa(r.tnext)
		r.tnext++

		if _, ok := r.idents[t.Name]; !ok {
			return t
		}
	}
}

// label allocates a fresh label. Plain names count from 0,
// named ones from 1 within their category.
func (r *run) label(cat string) ir.Label {
	l := ir.Label{ID: r.labels}

	r.labels++

	if !r.namedLabels {
		l.Name = "L" + strconv.Itoa(l.ID)

		return l
	}

	if r.named == nil {
		r.named = map[string]int{}
	}

	r.named[cat]++
	l.Name = cat + strconv.Itoa(r.named[cat])

	return l
}

// checkTempPrefix rejects prefixes producing names of the label scheme in use:
// the empty one and a label prefix followed by nothing but digits.
func (g *Generator) checkTempPrefix() error {
	if g.tempPrefix == "" {
		return errors.New("empty temp prefix")
	}

	cats := []string{"L"}
	if g.namedLabels {
		cats = []string{LabelWhile, LabelElse, LabelEnd}
	}

	for _, c := range cats {
		rest, ok := strings.CutPrefix(g.tempPrefix, c)
		if ok && strings.Trim(rest, "0123456789") == "" {
			return errors.New("temp prefix %q collides with label names %v<N>", g.tempPrefix, c)
		}
	}

	return nil
}

// idents collects the names the program declares, assigns or reads.
func idents(p *ast.Program) map[string]struct{} {
	m := map[string]struct{}{}

	for _, d := range p.Decls {
		for _, n := range d.Names {
			m[n] = struct{}{}
		}
	}

	var expr func(x ast.Expr)
	var stmts func(l []ast.Stmt)

	expr = func(x ast.Expr) {
		switch x := x.(type) {
		case *ast.Variable:
			m[x.Name] = struct{}{}
		case *ast.BinaryExpr:
			expr(x.Left)
			expr(x.Right)
		}
	}

	stmts = func(l []ast.Stmt) {
		for _, s := range l {
			switch s := s.(type) {
			case *ast.Assignment:
				m[s.Name] = struct{}{}
				expr(s.Value)
			case *ast.While:
				expr(s.Cond)
				stmts(s.Body)
			case *ast.If:
				expr(s.Cond)
				stmts(s.Then)
				stmts(s.Else)
			}
		}
	}

	stmts(p.Stmts)

	return m
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator: %v", e.Op)
}

func (e UnknownNodeError) Error() string {
	return fmt.Sprintf("unsupported node: %T", e.Node)
}
