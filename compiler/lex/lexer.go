package lex

import (
	"context"
	"unicode/utf8"

	"tlog.app/go/tlog"
)

type (
	Lexer struct {
		b []byte
		i int

		line    int
		lineBeg int

		// Anomalies lists the characters that matched no token pattern.
		// They are skipped, scanning goes on.
		Anomalies []Anomaly
	}

	// Anomaly is a lexical anomaly: a character no token starts with.
	// Invalid UTF-8 is reported byte by byte as utf8.RuneError.
	Anomaly struct {
		Char rune
		Pos  int
		Line int
		Col  int
	}

	Spaces uint64
)

var Whitespace = NewSpaces(' ', '\t', '\r', '\n', '\f', '\v')

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Is(c byte) bool {
	return c < 64 && s&(1<<c) != 0
}

// Tokenize scans the whole text. The result always ends with exactly one EOF token.
func Tokenize(ctx context.Context, text []byte) []Token {
	return New(text).All(ctx)
}

func New(text []byte) *Lexer {
	return &Lexer{
		b:    text,
		line: 1,
	}
}

func (l *Lexer) All(ctx context.Context) (toks []Token) {
	for {
		t := l.Next(ctx)

		toks = append(toks, t)

		if t.Kind == EOF {
			break
		}
	}

	if tr := tlog.SpanFromContext(ctx); tr.If("dump_tokens") {
		for i, t := range toks {
			tr.Printw("token", "i", i, "tok", t)
		}
	}

	return toks
}

// Next returns the next token. Once the text is exhausted it keeps returning EOF.
func (l *Lexer) Next(ctx context.Context) Token {
	for {
		l.skipSpaces()

		if l.i == len(l.b) {
			return l.token(EOF, l.i)
		}

		st := l.i
		c := l.b[st]

		switch {
		case isLetter(c):
			l.i = l.skipWord(st + 1)

			return l.tokenText(Lookup(string(l.b[st:l.i])), st)
		case isDigit(c):
			l.i = l.skipNumber(st)

			return l.tokenText(Number, st)
		}

		if k, w := l.punct(st); w != 0 {
			l.i = st + w

			return l.tokenText(k, st)
		}

		r, w := utf8.DecodeRune(l.b[st:])

		a := Anomaly{
			Char: r,
			Pos:  st,
			Line: l.line,
			Col:  st - l.lineBeg + 1,
		}

		l.Anomalies = append(l.Anomalies, a)

		tlog.SpanFromContext(ctx).V("lex").Printw("unexpected char skipped", "char", string(r), "line", a.Line, "col", a.Col)

		l.i += w
	}
}

func (l *Lexer) punct(st int) (k Kind, w int) {
	c := l.b[st]

	var c2 byte
	if st+1 < len(l.b) {
		c2 = l.b[st+1]
	}

	if c2 == '=' {
		switch c {
		case '<':
			return LessEq, 2
		case '>':
			return GreaterEq, 2
		case '=':
			return Equal, 2
		case '!':
			return NotEqual, 2
		}
	}

	switch c {
	case ';':
		k = Semicolon
	case ',':
		k = Comma
	case '=':
		k = Assign
	case '+':
		k = Plus
	case '-':
		k = Minus
	case '*':
		k = Star
	case '/':
		k = Slash
	case '^':
		k = Caret
	case '<':
		k = Less
	case '>':
		k = Greater
	case '(':
		k = LParen
	case ')':
		k = RParen
	case '{':
		k = LBrace
	case '}':
		k = RBrace
	default:
		return EOF, 0
	}

	return k, 1
}

func (l *Lexer) skipSpaces() {
	for l.i < len(l.b) && Whitespace.Is(l.b[l.i]) {
		if l.b[l.i] == '\n' {
			l.line++
			l.lineBeg = l.i + 1
		}

		l.i++
	}
}

func (l *Lexer) skipWord(i int) int {
	for i < len(l.b) && (isLetter(l.b[i]) || isDigit(l.b[i])) {
		i++
	}

	return i
}

// skipNumber matches digit+ ('.' digit+)?.
func (l *Lexer) skipNumber(i int) int {
	for i < len(l.b) && isDigit(l.b[i]) {
		i++
	}

	if i+1 < len(l.b) && l.b[i] == '.' && isDigit(l.b[i+1]) {
		i++

		for i < len(l.b) && isDigit(l.b[i]) {
			i++
		}
	}

	return i
}

func (l *Lexer) token(k Kind, st int) Token {
	return Token{
		Kind: k,
		Pos:  st,
		Line: l.line,
		Col:  st - l.lineBeg + 1,
	}
}

func (l *Lexer) tokenText(k Kind, st int) Token {
	t := l.token(k, st)
	t.Text = string(l.b[st:l.i])

	return t
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
