// Package ast defines the concrete syntax tree produced by the Latte parser.
package ast

import "github.com/josbeir/tree-sitter-latte/syntax"

// Span represents a location range in source code.
type Span = syntax.Span

// Loc is embedded in every tree element and carries its byte span.
type Loc struct {
	Range Span
}

// At returns a Loc for span.
func At(span Span) Loc {
	return Loc{Range: span}
}

// Span returns the byte range of the element.
func (l Loc) Span() Span { return l.Range }

// Spanned is implemented by every element of the tree: nodes, expressions
// and the auxiliary pieces (tags, filters, attributes) they own.
type Spanned interface {
	Span() Span
}

// Node is the interface implemented by all template-level nodes.
type Node interface {
	Spanned
	Kind() Kind
	node()
}

// Kind identifies the variant of a Node.
type Kind int

const (
	KindDocument Kind = iota
	KindText
	KindWhitespace
	KindComment
	KindError
	KindPrintTag
	KindVariableTag
	KindAssignment
	KindVarType
	KindTemplateType
	KindCapture
	KindFileTag
	KindEmbed
	KindSingleTag
	KindIf
	KindLoop
	KindSwitch
	KindPhp
	KindGenericBlock
	KindMacroCall
	KindExpressionTag
	KindDoctype
	KindEntity
	KindElement
	KindScriptElement
	KindStyleElement
	KindErroneousEndTag
)

var kindNames = [...]string{
	KindDocument:        "Document",
	KindText:            "Text",
	KindWhitespace:      "Whitespace",
	KindComment:         "Comment",
	KindError:           "Error",
	KindPrintTag:        "PrintTag",
	KindVariableTag:     "VariableTag",
	KindAssignment:      "Assignment",
	KindVarType:         "VarType",
	KindTemplateType:    "TemplateType",
	KindCapture:         "Capture",
	KindFileTag:         "FileTag",
	KindEmbed:           "Embed",
	KindSingleTag:       "SingleTag",
	KindIf:              "If",
	KindLoop:            "Loop",
	KindSwitch:          "Switch",
	KindPhp:             "Php",
	KindGenericBlock:    "GenericBlock",
	KindMacroCall:       "MacroCall",
	KindExpressionTag:   "ExpressionTag",
	KindDoctype:         "Doctype",
	KindEntity:          "Entity",
	KindElement:         "Element",
	KindScriptElement:   "ScriptElement",
	KindStyleElement:    "StyleElement",
	KindErroneousEndTag: "ErroneousEndTag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// --- Document and text ---

// Document is the root of a parsed template.
type Document struct {
	Loc
	Children []Node
}

func (*Document) node()      {}
func (*Document) Kind() Kind { return KindDocument }

// Text is a run of literal template text. It never starts or ends with
// whitespace.
type Text struct {
	Loc
	Value string
}

func (*Text) node()      {}
func (*Text) Kind() Kind { return KindText }

// Whitespace is trivia between nodes. It is kept so that sibling spans
// cover the source without gaps, and is hidden from the s-expression form.
type Whitespace struct {
	Loc
}

func (*Whitespace) node()      {}
func (*Whitespace) Kind() Kind { return KindWhitespace }

// Comment is a Latte `{* *}` or an HTML `<!-- -->` comment.
type Comment struct {
	Loc
	Value string
	HTML  bool
}

func (*Comment) node()      {}
func (*Comment) Kind() Kind { return KindComment }

// Error replaces a construct that could not be parsed. Raw keeps the
// offending source so tooling can underline it.
type Error struct {
	Loc
	Err *syntax.Error
	Raw string
}

func (*Error) node()      {}
func (*Error) Kind() Kind { return KindError }

// --- Tag pieces ---

// Tag is a delimited `{...}` token that opens, continues or closes a paired
// construct. Args is the raw text after the tag name.
type Tag struct {
	Loc
	Name     string
	Args     string
	ArgsSpan Span
}

// Filter is one `|name[:args]` step of a filter chain.
type Filter struct {
	Loc
	Name     string
	Args     string
	ArgsSpan Span
	HasArgs  bool
}

// Argument is a file tag argument: `name: expr`, `name => expr` or a
// positional expression (Name empty).
type Argument struct {
	Loc
	Name  string
	Value Expr
}

// TypeRef is a type annotation as written, e.g. `?App\Model\User[]`.
type TypeRef struct {
	Loc
	Name string
}

// --- Latte tags ---

// PrintTag is `{= expr|filters}`.
type PrintTag struct {
	Loc
	Expr    Expr
	Filters []*Filter
}

func (*PrintTag) node()      {}
func (*PrintTag) Kind() Kind { return KindPrintTag }

// VariableTag is the `{$name->acc|filters}` shorthand.
type VariableTag struct {
	Loc
	Var     *Variable
	Filters []*Filter
}

func (*VariableTag) node()      {}
func (*VariableTag) Kind() Kind { return KindVariableTag }

// AssignKind distinguishes `{var}` from `{default}`.
type AssignKind int

const (
	AssignVar AssignKind = iota
	AssignDefault
)

// Assignment is `{var $x = expr}` or `{default $x = expr}`, optionally
// typed as in `{var int $x = 1}`.
type Assignment struct {
	Loc
	Assign  AssignKind
	Type    *TypeRef
	Target  *Variable
	Value   Expr
	Filters []*Filter
}

func (*Assignment) node()      {}
func (*Assignment) Kind() Kind { return KindAssignment }

// VarTypeDecl is `{varType Type $var}`.
type VarTypeDecl struct {
	Loc
	Type *TypeRef
	Var  *Variable
}

func (*VarTypeDecl) node()      {}
func (*VarTypeDecl) Kind() Kind { return KindVarType }

// TemplateTypeDecl is `{templateType Type}`.
type TemplateTypeDecl struct {
	Loc
	Type *TypeRef
}

func (*TemplateTypeDecl) node()      {}
func (*TemplateTypeDecl) Kind() Kind { return KindTemplateType }

// FileKind enumerates the file reference tags.
type FileKind int

const (
	FileInclude FileKind = iota
	FileExtends
	FileLayout
	FileImport
	FileSandbox
)

var fileKindNames = [...]string{"include", "extends", "layout", "import", "sandbox"}

func (k FileKind) String() string { return fileKindNames[k] }

// FileTag is `{include|extends|layout|import|sandbox path, args}`.
type FileTag struct {
	Loc
	File    FileKind
	Path    Expr
	Args    []*Argument
	Filters []*Filter
}

func (*FileTag) node()      {}
func (*FileTag) Kind() Kind { return KindFileTag }

// SingleTag is a tag without body such as `{dump $x}` or `{rollback}`.
// Expr is set for tags taking an expression (`do`, `dump`, `debugbreak`);
// the others keep their raw Args.
type SingleTag struct {
	Loc
	Name     string
	Args     string
	ArgsSpan Span
	Expr     Expr
}

func (*SingleTag) node()      {}
func (*SingleTag) Kind() Kind { return KindSingleTag }

// PhpBlock is `{php ...}` with its interior kept verbatim.
type PhpBlock struct {
	Loc
	Raw     string
	RawSpan Span
}

func (*PhpBlock) node()      {}
func (*PhpBlock) Kind() Kind { return KindPhp }

// MacroCall is a bare `{name args}` tag invoking a user macro.
type MacroCall struct {
	Loc
	Name     string
	Args     string
	ArgsSpan Span
}

func (*MacroCall) node()      {}
func (*MacroCall) Kind() Kind { return KindMacroCall }

// ExpressionTag is the catch-all `{expr|filters}`.
type ExpressionTag struct {
	Loc
	Expr    Expr
	Filters []*Filter
}

func (*ExpressionTag) node()      {}
func (*ExpressionTag) Kind() Kind { return KindExpressionTag }

// --- Paired constructs ---
//
// Close is nil when the construct was never closed; Errs then holds the
// UnterminatedBlock diagnostic along with any other structural problem.

// Capture is `{capture $var}...{/capture}`.
type Capture struct {
	Loc
	Open    *Tag
	Var     *Variable
	Filters []*Filter
	Body    []Node
	Close   *Tag
	Errs    []*syntax.Error
}

func (*Capture) node()      {}
func (*Capture) Kind() Kind { return KindCapture }

// Embed is `{embed path, args}...{/embed}`.
type Embed struct {
	Loc
	Open  *Tag
	Path  Expr
	Args  []*Argument
	Body  []Node
	Close *Tag
	Errs  []*syntax.Error
}

func (*Embed) node()      {}
func (*Embed) Kind() Kind { return KindEmbed }

// IfBranch is the `{if}` or an `{elseif}` part of an IfBlock. The
// `ifset` and `elseifset` forms list their subjects in Isset instead of
// having a Cond.
type IfBranch struct {
	Loc
	Tag   *Tag
	Cond  Expr
	Isset []Expr
	Body  []Node
}

// ElseBranch is an `{else}` part.
type ElseBranch struct {
	Loc
	Tag  *Tag
	Body []Node
}

// IfBlock is `{if}`/`{ifset}`/`{ifchanged}` with its branches. The first
// branch is always the opening tag.
type IfBlock struct {
	Loc
	Branches []*IfBranch
	Else     *ElseBranch
	Close    *Tag
	Errs     []*syntax.Error
}

func (*IfBlock) node()      {}
func (*IfBlock) Kind() Kind { return KindIf }

// Open returns the opening tag.
func (b *IfBlock) Open() *Tag { return b.Branches[0].Tag }

// LoopKind enumerates the loop tags.
type LoopKind int

const (
	LoopForeach LoopKind = iota
	LoopFor
	LoopWhile
)

var loopKindNames = [...]string{"foreach", "for", "while"}

func (k LoopKind) String() string { return loopKindNames[k] }

// ForeachHeader is `iterable as [key =>] value`.
type ForeachHeader struct {
	Loc
	Iterable Expr
	Key      Expr
	Value    Expr
}

// LoopBlock is `{foreach}`, `{for}` or `{while}` with an optional `{else}`.
// Foreach loops carry a parsed Foreach header, while loops a Cond; `for`
// headers stay raw in Open.Args.
type LoopBlock struct {
	Loc
	Loop    LoopKind
	Open    *Tag
	Foreach *ForeachHeader
	Cond    Expr
	Body    []Node
	Else    *ElseBranch
	Close   *Tag
	Errs    []*syntax.Error
}

func (*LoopBlock) node()      {}
func (*LoopBlock) Kind() Kind { return KindLoop }

// SwitchCase is a `{case}` or `{default}` branch.
type SwitchCase struct {
	Loc
	Tag     *Tag
	Default bool
	Values  []Expr
	Body    []Node
}

// SwitchBlock is `{switch expr}` with its cases. Preamble holds whatever
// appears before the first case, normally only whitespace.
type SwitchBlock struct {
	Loc
	Open     *Tag
	Expr     Expr
	Preamble []Node
	Cases    []*SwitchCase
	Close    *Tag
	Errs     []*syntax.Error
}

func (*SwitchBlock) node()      {}
func (*SwitchBlock) Kind() Kind { return KindSwitch }

// GenericBlock is any other paired tag: `{block}`, `{define}`, `{snippet}`,
// `{macro}` and so on. Arguments stay raw in Open.Args. Only `{try}`
// accepts an `{else}` branch.
type GenericBlock struct {
	Loc
	Name  string
	Open  *Tag
	Body  []Node
	Else  *ElseBranch
	Close *Tag
	Errs  []*syntax.Error
}

func (*GenericBlock) node()      {}
func (*GenericBlock) Kind() Kind { return KindGenericBlock }

// --- HTML ---

// Doctype is `<!DOCTYPE ...>`.
type Doctype struct {
	Loc
	Raw string
}

func (*Doctype) node()      {}
func (*Doctype) Kind() Kind { return KindDoctype }

// Entity is a character reference such as `&amp;`. Value is the decoded
// text.
type Entity struct {
	Loc
	Raw   string
	Value string
}

func (*Entity) node()      {}
func (*Entity) Kind() Kind { return KindEntity }

// AttributePart is a literal run or a `{...}` Latte expression inside a
// quoted attribute value.
type AttributePart struct {
	Loc
	Text  string
	Latte bool
}

// AttributeValue is the value of an attribute. Quote is 0 for unquoted
// values.
type AttributeValue struct {
	Loc
	Quote byte
	Parts []*AttributePart
}

// Attribute is one attribute of a start tag.
type Attribute struct {
	Loc
	Name     string
	NameSpan Span
	Value    *AttributeValue
}

// StartTag is `<name attrs>` or `<name attrs/>`.
type StartTag struct {
	Loc
	Name        string
	Attrs       []*Attribute
	SelfClosing bool
}

// EndTag is `</name>`.
type EndTag struct {
	Loc
	Name string
}

// Element is an HTML element. End is nil for void elements, self-closing
// tags and elements closed implicitly.
type Element struct {
	Loc
	Start *StartTag
	Body  []Node
	End   *EndTag
}

func (*Element) node()      {}
func (*Element) Kind() Kind { return KindElement }

// RawElement is a `<script>` or `<style>` element whose content is not
// parsed.
type RawElement struct {
	Loc
	Start       *StartTag
	Content     string
	ContentSpan Span
	End         *EndTag
}

func (*RawElement) node() {}

// Kind returns KindStyleElement for style elements and KindScriptElement
// otherwise.
func (e *RawElement) Kind() Kind {
	if e.Start != nil && e.Start.Name == "style" {
		return KindStyleElement
	}
	return KindScriptElement
}

// ErroneousEndTag is an end tag with no matching open element.
type ErroneousEndTag struct {
	Loc
	Name string
}

func (*ErroneousEndTag) node()      {}
func (*ErroneousEndTag) Kind() Kind { return KindErroneousEndTag }
