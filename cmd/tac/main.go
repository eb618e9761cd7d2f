package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/tac/compiler"
	"github.com/slowlang/tac/compiler/format"
	"github.com/slowlang/tac/compiler/lex"
	"github.com/slowlang/tac/compiler/parse"
)

func main() {
	tokensCmd := &cli.Command{
		Name:        "tokens",
		Description: "print tokens",
		Action:      tokensAct,
		Args:        cli.Args{},
	}

	parseCmd := &cli.Command{
		Name:        "parse,fmt",
		Description: "parse and print the program in canonical form",
		Action:      parseAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "compile to three-address code",
		Action:      compileAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("output,o", "-", "output file"),
			cli.NewFlag("temp-prefix", "t", "temporary name prefix"),
			cli.NewFlag("named-labels", false, "name labels WHILE<N>, ELSE<N>, END<N> instead of L<N>"),
			cli.NewFlag("no-decls", false, "omit declaration lines"),
			cli.NewFlag("verify", false, "check the generated code"),
		},
	}

	app := &cli.Command{
		Name:        "tac",
		Description: "tac translates programs into three-address code",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.NewFlag("quiet,q", false, "no logs"),
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			tokensCmd,
			parseCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	if c.Bool("quiet") {
		tlog.DefaultLogger = tlog.New(io.Discard)
	}

	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func tokensAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		for _, t := range lex.Tokenize(ctx, text) {
			fmt.Printf("%d:%d\t%v\n", t.Line, t.Col, t)
		}
	}

	return nil
}

func parseAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	var b []byte

	for _, a := range c.Args {
		text, err := os.ReadFile(a)
		if err != nil {
			return errors.Wrap(err, "read %v", a)
		}

		x, err := parse.ParseText(ctx, text)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		b, err = format.Format(ctx, b, x)
		if err != nil {
			return errors.Wrap(err, "format %v", a)
		}
	}

	_, err = os.Stdout.Write(b)

	return err
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := compiler.Options{
		TempPrefix:  c.String("temp-prefix"),
		NamedLabels: c.Bool("named-labels"),
		NoDecls:     c.Bool("no-decls"),
		Verify:      c.Bool("verify"),
	}

	var out []byte

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		out = append(out, obj...)
	}

	if o := c.String("output"); o != "-" && o != "" {
		return os.WriteFile(o, out, 0o644)
	}

	_, err = os.Stdout.Write(out)

	return err
}
