package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/tac/compiler/ast"
)

// Format appends the source form of p to b.
func Format(ctx context.Context, b []byte, p *ast.Program) (_ []byte, err error) {
	if len(p.Decls) != 0 {
		b = append(b, "var\n"...)

		for _, d := range p.Decls {
			b = app(b, 1, "%v ", d.Type)

			for i, n := range d.Names {
				if i != 0 {
					b = append(b, ", "...)
				}

				b = append(b, n...)
			}

			b = append(b, ";\n"...)
		}

		if len(p.Stmts) != 0 {
			b = append(b, '\n')
		}
	}

	b, err = formatBlock(ctx, b, p.Stmts, 0)
	if err != nil {
		return nil, errors.Wrap(err, "program")
	}

	return b, nil
}

func formatBlock(ctx context.Context, b []byte, l []ast.Stmt, d int) (_ []byte, err error) {
	for _, s := range l {
		switch s := s.(type) {
		case *ast.Assignment:
			b = app(b, d, "%s = ", s.Name)

			b, err = formatExpr(ctx, b, s.Value, 0)
			if err != nil {
				return nil, errors.Wrap(err, "assignment %v", s.Name)
			}

			b = append(b, ";\n"...)
		case *ast.While:
			b, err = formatCond(ctx, b, d, "while", s.Cond)
			if err != nil {
				return nil, err
			}

			b, err = formatBlock(ctx, b, s.Body, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "while body")
			}

			b = app(b, d, "}\n")
		case *ast.If:
			b, err = formatCond(ctx, b, d, "if", s.Cond)
			if err != nil {
				return nil, err
			}

			b, err = formatBlock(ctx, b, s.Then, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "then block")
			}

			if len(s.Else) == 0 {
				b = app(b, d, "}\n")
				break
			}

			b = app(b, d, "} else {\n")

			b, err = formatBlock(ctx, b, s.Else, d+1)
			if err != nil {
				return nil, errors.Wrap(err, "else block")
			}

			b = app(b, d, "}\n")
		default:
			return nil, errors.New("unsupported stmt: %T", s)
		}
	}

	return b, nil
}

func formatCond(ctx context.Context, b []byte, d int, kw string, x ast.Expr) (_ []byte, err error) {
	b = app(b, d, "%s (", kw)

	b, err = formatExpr(ctx, b, x, 0)
	if err != nil {
		return nil, errors.Wrap(err, "%s cond", kw)
	}

	b = append(b, ") {\n"...)

	return b, nil
}

// formatExpr adds parentheses only where the tree shape differs from
// what precedence and left associativity would give.
func formatExpr(ctx context.Context, b []byte, x ast.Expr, prec int) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.Variable:
		b = append(b, x.Name...)
	case *ast.Literal:
		b = append(b, x.Text...)
	case *ast.BinaryExpr:
		p := x.Op.Prec()
		if p == 0 {
			return nil, errors.New("unsupported operator: %v", x.Op)
		}

		paren := p < prec
		if paren {
			b = append(b, '(')
		}

		b, err = formatExpr(ctx, b, x.Left, p)
		if err != nil {
			return nil, errors.Wrap(err, "left")
		}

		b = hfmt.Appendf(b, " %v ", x.Op)

		b, err = formatExpr(ctx, b, x.Right, p+1)
		if err != nil {
			return nil, errors.Wrap(err, "right")
		}

		if paren {
			b = append(b, ')')
		}
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	for i := 0; i < d; i++ {
		b = append(b, '\t')
	}

	b = hfmt.Appendf(b, f, args...)

	return b
}
