package ast

import "github.com/josbeir/tree-sitter-latte/syntax"

// Expr is the interface implemented by all expression nodes.
type Expr interface {
	Spanned
	expr()
}

// AccessorKind identifies one link of an accessor chain.
type AccessorKind int

const (
	AccessProperty AccessorKind = iota
	AccessMethod
	AccessIndex
	AccessConstant
)

var accessorNames = [...]string{"property", "method", "index", "constant"}

func (k AccessorKind) String() string { return accessorNames[k] }

// Accessor is `->name`, `?->name`, `->name(args)`, `::name(args)`,
// `[index]` or `::NAME`.
type Accessor struct {
	Loc
	Access   AccessorKind
	Name     string
	NameSpan Span
	Nullsafe bool
	Static   bool
	Args     []Expr
	Index    Expr
}

// Variable is `$name` followed by its accessor chain.
type Variable struct {
	Loc
	Name      string
	Accessors []*Accessor
}

func (*Variable) expr() {}

// FunctionCall is `name(args)`.
type FunctionCall struct {
	Loc
	Name     string
	NameSpan Span
	Args     []Expr
}

func (*FunctionCall) expr() {}

// StaticCall is `Class::CONST` or `Class::method(args)`.
type StaticCall struct {
	Loc
	Class      string
	ClassSpan  Span
	Member     string
	MemberSpan Span
	Call       bool
	Args       []Expr
}

func (*StaticCall) expr() {}

// BinaryOp is a binary operation. Op is the operator as written.
type BinaryOp struct {
	Loc
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryOp) expr() {}

// UnaryOp is a prefix operation.
type UnaryOp struct {
	Loc
	Op      string
	Operand Expr
}

func (*UnaryOp) expr() {}

// Ternary is `cond ? then : else`. Then is nil for the short form `a ?: b`.
type Ternary struct {
	Loc
	Cond Expr
	Then Expr
	Else Expr
}

func (*Ternary) expr() {}

// LiteralKind identifies the type of a Literal.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBool
	LitNull
)

// Literal is a string, number, boolean or null constant. Value is the
// source text, quotes included.
type Literal struct {
	Loc
	Lit   LiteralKind
	Value string
}

func (*Literal) expr() {}

// ArrayElement is one `[key =>] value` entry of an array literal.
type ArrayElement struct {
	Loc
	Key   Expr
	Value Expr
}

// ArrayLiteral is `[a, 'k' => b]`.
type ArrayLiteral struct {
	Loc
	Elements []*ArrayElement
}

func (*ArrayLiteral) expr() {}

// Parenthesized is `(inner)`.
type Parenthesized struct {
	Loc
	Inner Expr
}

func (*Parenthesized) expr() {}

// Ident is a bare identifier: a constant, a block name or a keyword used
// as a value.
type Ident struct {
	Loc
	Name string
}

func (*Ident) expr() {}

// BadExpr stands in for an expression that failed to parse.
type BadExpr struct {
	Loc
	Err *syntax.Error
}

func (*BadExpr) expr() {}
