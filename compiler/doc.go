/*

Process of compilation

Program Text ->
	lex ->
Tokens (lex.Token) ->
	parse ->
Abstract Syntax Tree (ast) ->
	gen ->
Three-Address Code (ir.Code) ->
	ir.Code.AppendTo ->
Code Text

Program Text ->
	parse ->
Abstract Syntax Tree (ast) ->
	format ->
Program Text

*/
package compiler
