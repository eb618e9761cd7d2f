package compiler

import (
	"context"
	"io"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler/gen"
	"github.com/slowlang/tac/compiler/ir"
	"github.com/slowlang/tac/compiler/lex"
	"github.com/slowlang/tac/compiler/parse"
)

type (
	Options struct {
		TempPrefix  string
		NamedLabels bool
		NoDecls     bool

		// Verify runs ir.Verify on the generated code.
		Verify bool
	}
)

func CompileFile(ctx context.Context, name string, opts Options) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, opts)
}

// CompileTo writes the code to w only if the whole compilation succeeded.
func CompileTo(ctx context.Context, w io.Writer, name string, text []byte, opts Options) error {
	obj, err := Compile(ctx, name, text, opts)
	if err != nil {
		return err
	}

	_, err = w.Write(obj)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

func Compile(ctx context.Context, name string, text []byte, opts Options) (obj []byte, err error) {
	code, err := CompileCode(ctx, name, text, opts)
	if err != nil {
		return nil, err
	}

	return code.AppendTo(nil), nil
}

// CompileCode runs the pipeline and returns instructions instead of text.
func CompileCode(ctx context.Context, name string, text []byte, opts Options) (code ir.Code, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "size", len(text))
	defer tr.Finish("err", &err)

	l := lex.New(text)
	toks := l.All(ctx)

	if len(l.Anomalies) != 0 {
		tr.Printw("unexpected characters skipped", "count", len(l.Anomalies), "first_line", l.Anomalies[0].Line, "first_col", l.Anomalies[0].Col)
	}

	prog, err := parse.Parse(ctx, toks)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	code, err = gen.Generate(ctx, prog, opts.genOptions()...)
	if err != nil {
		return nil, errors.Wrap(err, "generate")
	}

	if opts.Verify {
		err = ir.Verify(code)
		if err != nil {
			return nil, errors.Wrap(err, "verify")
		}
	}

	return code, nil
}

func (o Options) genOptions() (r []gen.Option) {
	if o.TempPrefix != "" {
		r = append(r, gen.WithTempPrefix(o.TempPrefix))
	}

	if o.NamedLabels {
		r = append(r, gen.WithNamedLabels())
	}

	if o.NoDecls {
		r = append(r, gen.WithoutDecls())
	}

	return r
}
