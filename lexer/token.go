// Package lexer provides tokenization for Latte templates: the template
// level scan that finds tags, comments, markup and text, and the expression
// level scan used inside tags.
package lexer

import (
	"fmt"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError

	// Template level
	TokenText       // run of text
	TokenWhitespace // run of whitespace between nodes
	TokenTagOpen    // {
	TokenPrintOpen  // {=
	TokenVarOpen    // {$
	TokenCloseOpen  // {/
	TokenComment    // {* ... *}
	TokenMarkup     // < or & handed to the markup scanner

	// Literals
	TokenVariable // $name
	TokenIdent    // identifier, optionally namespaced
	TokenString   // 'string' or "string"
	TokenNumber   // 12, 1.5, 1e3, 0x1F, 0b10, 0o17

	// Arithmetic
	TokenPlus   // +
	TokenMinus  // -
	TokenMul    // *
	TokenDiv    // /
	TokenMod    // %
	TokenPow    // **
	TokenConcat // .

	// Comparison
	TokenLt           // <
	TokenLe           // <=
	TokenGt           // >
	TokenGe           // >=
	TokenSpaceship    // <=>
	TokenEq           // ==
	TokenNe           // !=
	TokenIdentical    // ===
	TokenNotIdentical // !==
	TokenNeAlt        // <>

	// Logic
	TokenAndAnd   // &&
	TokenOrOr     // ||
	TokenCoalesce // ??
	TokenNot      // !

	// Punctuation
	TokenQuestion      // ?
	TokenColon         // :
	TokenDoubleColon   // ::
	TokenArrow         // ->
	TokenNullsafeArrow // ?->
	TokenDoubleArrow   // =>
	TokenParenOpen     // (
	TokenParenClose    // )
	TokenBracketOpen   // [
	TokenBracketClose  // ]
	TokenBraceOpen     // {
	TokenBraceClose    // }
	TokenComma         // ,
	TokenSemicolon     // ;
	TokenPipe          // |
	TokenAssign        // =
	TokenHash          // #
	TokenIncrement     // ++
	TokenDecrement     // --
)

// Token represents a single token. Value holds the raw source text of the
// token except for TokenVariable, where it is the name without `$`.
type Token struct {
	Type  TokenType
	Value string
	Span  syntax.Span
	// Kind is set on TokenError.
	Kind syntax.ErrorKind
}

// Span represents a location range in source code.
type Span = syntax.Span

// String returns a debug representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Is reports whether the token is an identifier with the given value.
func (t Token) Is(keyword string) bool {
	return t.Type == TokenIdent && t.Value == keyword
}

var tokenTypeNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenText:          "Text",
	TokenWhitespace:    "Whitespace",
	TokenTagOpen:       "TagOpen",
	TokenPrintOpen:     "PrintOpen",
	TokenVarOpen:       "VarOpen",
	TokenCloseOpen:     "CloseOpen",
	TokenComment:       "Comment",
	TokenMarkup:        "Markup",
	TokenVariable:      "Variable",
	TokenIdent:         "Ident",
	TokenString:        "String",
	TokenNumber:        "Number",
	TokenPlus:          "Plus",
	TokenMinus:         "Minus",
	TokenMul:           "Mul",
	TokenDiv:           "Div",
	TokenMod:           "Mod",
	TokenPow:           "Pow",
	TokenConcat:        "Concat",
	TokenLt:            "Lt",
	TokenLe:            "Le",
	TokenGt:            "Gt",
	TokenGe:            "Ge",
	TokenSpaceship:     "Spaceship",
	TokenEq:            "Eq",
	TokenNe:            "Ne",
	TokenIdentical:     "Identical",
	TokenNotIdentical:  "NotIdentical",
	TokenNeAlt:         "NeAlt",
	TokenAndAnd:        "AndAnd",
	TokenOrOr:          "OrOr",
	TokenCoalesce:      "Coalesce",
	TokenNot:           "Not",
	TokenQuestion:      "Question",
	TokenColon:         "Colon",
	TokenDoubleColon:   "DoubleColon",
	TokenArrow:         "Arrow",
	TokenNullsafeArrow: "NullsafeArrow",
	TokenDoubleArrow:   "DoubleArrow",
	TokenParenOpen:     "ParenOpen",
	TokenParenClose:    "ParenClose",
	TokenBracketOpen:   "BracketOpen",
	TokenBracketClose:  "BracketClose",
	TokenBraceOpen:     "BraceOpen",
	TokenBraceClose:    "BraceClose",
	TokenComma:         "Comma",
	TokenSemicolon:     "Semicolon",
	TokenPipe:          "Pipe",
	TokenAssign:        "Assign",
	TokenHash:          "Hash",
	TokenIncrement:     "Increment",
	TokenDecrement:     "Decrement",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

var operators = []struct {
	text string
	typ  TokenType
}{
	// longest first
	{"===", TokenIdentical},
	{"!==", TokenNotIdentical},
	{"<=>", TokenSpaceship},
	{"?->", TokenNullsafeArrow},
	{"**", TokenPow},
	{"<=", TokenLe},
	{">=", TokenGe},
	{"==", TokenEq},
	{"!=", TokenNe},
	{"<>", TokenNeAlt},
	{"&&", TokenAndAnd},
	{"||", TokenOrOr},
	{"??", TokenCoalesce},
	{"::", TokenDoubleColon},
	{"->", TokenArrow},
	{"=>", TokenDoubleArrow},
	{"++", TokenIncrement},
	{"--", TokenDecrement},
	{"+", TokenPlus},
	{"-", TokenMinus},
	{"*", TokenMul},
	{"/", TokenDiv},
	{"%", TokenMod},
	{".", TokenConcat},
	{"<", TokenLt},
	{">", TokenGt},
	{"!", TokenNot},
	{"?", TokenQuestion},
	{":", TokenColon},
	{"(", TokenParenOpen},
	{")", TokenParenClose},
	{"[", TokenBracketOpen},
	{"]", TokenBracketClose},
	{"{", TokenBraceOpen},
	{"}", TokenBraceClose},
	{",", TokenComma},
	{";", TokenSemicolon},
	{"|", TokenPipe},
	{"=", TokenAssign},
	{"#", TokenHash},
}
