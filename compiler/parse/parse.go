package parse

import (
	"context"
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/ast"
	"github.com/slowlang/tac/compiler/lex"
)

type (
	// SyntaxError is the first grammar violation found. Parsing stops at it.
	SyntaxError struct {
		Msg   string
		Token lex.Token

		From loc.PC
	}

	parser struct {
		toks []lex.Token
		i    int
	}
)

// ParseText tokenizes and parses text.
func ParseText(ctx context.Context, text []byte) (*ast.Program, error) {
	toks := lex.Tokenize(ctx, text)

	return Parse(ctx, toks)
}

// Parse builds the Program from tokens. On failure it returns a *SyntaxError and no tree.
func Parse(ctx context.Context, toks []lex.Token) (p *ast.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "tokens", len(toks))
	defer tr.Finish("err", &err)

	if len(toks) == 0 || toks[len(toks)-1].Kind != lex.EOF {
		toks = append(toks[:len(toks):len(toks)], lex.Token{Kind: lex.EOF})
	}

	ps := &parser{toks: toks}

	p, err = ps.program(ctx)
	if err != nil {
		if e, ok := err.(*SyntaxError); ok {
			tr.V("parse").Printw("syntax error", "msg", e.Msg, "tok", e.Token, "from", e.From)
		}

		return nil, err
	}

	tr.Printw("parsed", "decls", len(p.Decls), "stmts", len(p.Stmts))

	return p, nil
}

func (p *parser) program(ctx context.Context) (x *ast.Program, err error) {
	x = &ast.Program{
		Base: ast.Base{Pos: p.peek().Pos},
	}

	if p.match(lex.Var) {
		for p.at(lex.Int) || p.at(lex.Real) {
			d, err := p.varDecl(ctx)
			if err != nil {
				return nil, err
			}

			x.Decls = append(x.Decls, d)
		}
	}

	x.Stmts, err = p.stmtList(ctx)
	if err != nil {
		return nil, err
	}

	if !p.at(lex.EOF) {
		return nil, p.errorf("unexpected %v at top level", p.peek().Kind)
	}

	return x, nil
}

func (p *parser) varDecl(ctx context.Context) (d *ast.VarDecl, err error) {
	t := p.next()

	d = &ast.VarDecl{
		Base: ast.Base{Pos: t.Pos},
	}

	switch t.Kind {
	case lex.Int:
		d.Type = ast.TypeInt
	case lex.Real:
		d.Type = ast.TypeReal
	default:
		panic(t)
	}

	for {
		id, err := p.expect(lex.Ident, "identifier expected in %v declaration", d.Type)
		if err != nil {
			return nil, err
		}

		d.Names = append(d.Names, id.Text)

		if !p.match(lex.Comma) {
			break
		}
	}

	_, err = p.expect(lex.Semicolon, "';' expected after declaration")
	if err != nil {
		return nil, err
	}

	return d, nil
}

// stmtList parses statements up to '}' or EOF. The terminator is not consumed.
func (p *parser) stmtList(ctx context.Context) (l []ast.Stmt, err error) {
	for !p.at(lex.RBrace) && !p.at(lex.EOF) {
		s, err := p.stmt(ctx)
		if err != nil {
			return nil, err
		}

		l = append(l, s)
	}

	return l, nil
}

func (p *parser) stmt(ctx context.Context) (ast.Stmt, error) {
	switch p.peek().Kind {
	case lex.Ident:
		return p.assignment(ctx)
	case lex.While:
		return p.while(ctx)
	case lex.If:
		return p.ifStmt(ctx)
	}

	return nil, p.errorf("statement expected")
}

func (p *parser) assignment(ctx context.Context) (s *ast.Assignment, err error) {
	id := p.next()

	_, err = p.expect(lex.Assign, "'=' expected after %q", id.Text)
	if err != nil {
		return nil, err
	}

	val, err := p.expr(ctx)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lex.Semicolon, "';' expected after assignment")
	if err != nil {
		return nil, err
	}

	return &ast.Assignment{
		Base:  ast.Base{Pos: id.Pos},
		Name:  id.Text,
		Value: val,
	}, nil
}

func (p *parser) while(ctx context.Context) (s *ast.While, err error) {
	kw := p.next()

	cond, err := p.cond(ctx, "while")
	if err != nil {
		return nil, err
	}

	body, err := p.block(ctx, "while")
	if err != nil {
		return nil, err
	}

	return &ast.While{
		Base: ast.Base{Pos: kw.Pos},
		Cond: cond,
		Body: body,
	}, nil
}

func (p *parser) ifStmt(ctx context.Context) (s *ast.If, err error) {
	kw := p.next()

	cond, err := p.cond(ctx, "if")
	if err != nil {
		return nil, err
	}

	then, err := p.block(ctx, "if")
	if err != nil {
		return nil, err
	}

	s = &ast.If{
		Base: ast.Base{Pos: kw.Pos},
		Cond: cond,
		Then: then,
		Else: []ast.Stmt{},
	}

	if p.match(lex.Else) {
		s.Else, err = p.block(ctx, "else")
		if err != nil {
			return nil, err
		}

		if s.Else == nil {
			s.Else = []ast.Stmt{}
		}
	}

	return s, nil
}

// cond parses "(" RelExpr ")".
func (p *parser) cond(ctx context.Context, what string) (x ast.Expr, err error) {
	_, err = p.expect(lex.LParen, "'(' expected after '%s'", what)
	if err != nil {
		return nil, err
	}

	x, err = p.relExpr(ctx)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lex.RParen, "')' expected after %s condition", what)
	if err != nil {
		return nil, err
	}

	return x, nil
}

// block parses "{" StmtList "}".
func (p *parser) block(ctx context.Context, what string) (l []ast.Stmt, err error) {
	_, err = p.expect(lex.LBrace, "'{' expected before %s block", what)
	if err != nil {
		return nil, err
	}

	l, err = p.stmtList(ctx)
	if err != nil {
		return nil, err
	}

	_, err = p.expect(lex.RBrace, "'}' expected after %s block", what)
	if err != nil {
		return nil, err
	}

	return l, nil
}

// relExpr requires exactly one relational operator.
func (p *parser) relExpr(ctx context.Context) (x ast.Expr, err error) {
	l, err := p.expr(ctx)
	if err != nil {
		return nil, err
	}

	op, ok := relOps[p.peek().Kind]
	if !ok {
		return nil, p.errorf("relational operator expected in condition")
	}

	p.next()

	r, err := p.expr(ctx)
	if err != nil {
		return nil, err
	}

	return &ast.BinaryExpr{
		Base:  ast.Base{Pos: l.Position()},
		Op:    op,
		Left:  l,
		Right: r,
	}, nil
}

func (p *parser) expr(ctx context.Context) (x ast.Expr, err error) {
	return p.leftToRight(ctx, addOps, p.term)
}

func (p *parser) term(ctx context.Context) (x ast.Expr, err error) {
	return p.leftToRight(ctx, mulOps, p.factor)
}

// leftToRight folds arg {op arg} into a left-associative tree.
func (p *parser) leftToRight(ctx context.Context, ops map[lex.Kind]ast.Op, arg func(context.Context) (ast.Expr, error)) (x ast.Expr, err error) {
	x, err = arg(ctx)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := ops[p.peek().Kind]
		if !ok {
			return x, nil
		}

		p.next()

		r, err := arg(ctx)
		if err != nil {
			return nil, err
		}

		x = &ast.BinaryExpr{
			Base:  ast.Base{Pos: x.Position()},
			Op:    op,
			Left:  x,
			Right: r,
		}
	}
}

func (p *parser) factor(ctx context.Context) (x ast.Expr, err error) {
	t := p.peek()

	switch t.Kind {
	case lex.Ident:
		p.next()

		return &ast.Variable{Base: ast.Base{Pos: t.Pos}, Name: t.Text}, nil
	case lex.Number:
		p.next()

		return &ast.Literal{Base: ast.Base{Pos: t.Pos}, Text: t.Text}, nil
	case lex.LParen:
		p.next()

		x, err = p.expr(ctx)
		if err != nil {
			return nil, err
		}

		_, err = p.expect(lex.RParen, "')' expected after expression")
		if err != nil {
			return nil, err
		}

		return x, nil
	}

	return nil, p.errorf("expression expected")
}

var (
	addOps = map[lex.Kind]ast.Op{
		lex.Plus:  ast.Add,
		lex.Minus: ast.Sub,
	}

	// '^' shares the multiplicative layer and is left-associative.
	mulOps = map[lex.Kind]ast.Op{
		lex.Star:  ast.Mul,
		lex.Slash: ast.Div,
		lex.Caret: ast.Pow,
	}

	relOps = map[lex.Kind]ast.Op{
		lex.Less:      ast.Lt,
		lex.Greater:   ast.Gt,
		lex.LessEq:    ast.Le,
		lex.GreaterEq: ast.Ge,
		lex.Equal:     ast.Eq,
		lex.NotEqual:  ast.Ne,
	}
)

func (p *parser) peek() lex.Token {
	return p.toks[p.i]
}

func (p *parser) at(k lex.Kind) bool {
	return p.toks[p.i].Kind == k
}

// next consumes the current token. EOF is never consumed.
func (p *parser) next() lex.Token {
	t := p.toks[p.i]

	if t.Kind != lex.EOF {
		p.i++
	}

	return t
}

func (p *parser) match(k lex.Kind) bool {
	if !p.at(k) {
		return false
	}

	p.next()

	return true
}

func (p *parser) expect(k lex.Kind, msg string, args ...any) (lex.Token, error) {
	if p.at(k) {
		return p.next(), nil
	}

	e := p.errorf(msg, args...)
	e.From = loc.Caller(1)

	return lex.Token{}, e
}

func (p *parser) errorf(msg string, args ...any) *SyntaxError {
	return &SyntaxError{
		Msg:   fmt.Sprintf(msg, args...),
		Token: p.peek(),
		From:  loc.Caller(1),
	}
}

func (e *SyntaxError) Error() string {
	t := e.Token

	if t.Kind == lex.EOF {
		return fmt.Sprintf("%d:%d: %s, got end of input", t.Line, t.Col, e.Msg)
	}

	return fmt.Sprintf("%d:%d: %s, got %q", t.Line, t.Col, e.Msg, t.Text)
}

// Lexeme is the offending source text, empty at end of input.
func (e *SyntaxError) Lexeme() string {
	return e.Token.Text
}

// AsSyntaxError finds a *SyntaxError in the err chain.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var e *SyntaxError

	ok := errors.As(err, &e)

	return e, ok
}
