package lex

import (
	"fmt"

	"tlog.app/go/tlog/tlwire"
)

type (
	Kind uint8

	Token struct {
		Kind Kind
		Text string

		Pos  int // byte offset
		Line int
		Col  int
	}
)

const (
	EOF Kind = iota

	Ident
	Number

	// keywords
	Var
	Int
	Real
	While
	If
	Else

	Semicolon
	Comma

	Assign
	Plus
	Minus
	Star
	Slash
	Caret

	Less
	Greater
	LessEq
	GreaterEq
	Equal
	NotEqual

	LParen
	RParen
	LBrace
	RBrace

	numKinds
)

var kindNames = [numKinds]string{
	EOF:    "EOF",
	Ident:  "identifier",
	Number: "number",

	Var:   "var",
	Int:   "int",
	Real:  "real",
	While: "while",
	If:    "if",
	Else:  "else",

	Semicolon: ";",
	Comma:     ",",

	Assign: "=",
	Plus:   "+",
	Minus:  "-",
	Star:   "*",
	Slash:  "/",
	Caret:  "^",

	Less:      "<",
	Greater:   ">",
	LessEq:    "<=",
	GreaterEq: ">=",
	Equal:     "==",
	NotEqual:  "!=",

	LParen: "(",
	RParen: ")",
	LBrace: "{",
	RBrace: "}",
}

var keywords = map[string]Kind{
	"var":   Var,
	"int":   Int,
	"real":  Real,
	"while": While,
	"if":    If,
	"else":  Else,
}

// Lookup classifies a whole word as a keyword or an identifier.
func Lookup(word string) Kind {
	if k, ok := keywords[word]; ok {
		return k
	}

	return Ident
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Keyword() bool {
	return k >= Var && k <= Else
}

func (t Token) String() string {
	return fmt.Sprintf("%v (%s)", t.Kind, t.Text)
}

func (t Token) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 3)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, t.Kind.String())
	b = e.AppendString(b, "text")
	b = e.AppendString(b, t.Text)
	b = e.AppendKeyInt(b, "pos", t.Pos)

	return b
}
