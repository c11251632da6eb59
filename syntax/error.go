package syntax

import "fmt"

// ErrorKind describes the type of a syntax error.
type ErrorKind int

const (
	UnterminatedLiteral ErrorKind = iota + 1
	UnterminatedBlock
	UnexpectedToken
	UnbalancedParenthesis
	DepthExceeded
	UnknownTag
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedLiteral:
		return "unterminated literal"
	case UnterminatedBlock:
		return "unterminated block"
	case UnexpectedToken:
		return "unexpected token"
	case UnbalancedParenthesis:
		return "unbalanced parenthesis"
	case DepthExceeded:
		return "depth exceeded"
	case UnknownTag:
		return "unknown tag"
	default:
		return "syntax error"
	}
}

// Error is a single parse diagnostic. For UnterminatedBlock, Family names
// the construct (`if`, `foreach`, ...) and OpenedAt is the offset of its
// opening tag.
type Error struct {
	Kind     ErrorKind
	Message  string
	Span     Span
	Family   string
	OpenedAt int
}

// Sentinels for errors.Is.
var (
	ErrUnterminatedLiteral   = &Error{Kind: UnterminatedLiteral}
	ErrUnterminatedBlock     = &Error{Kind: UnterminatedBlock}
	ErrUnexpectedToken       = &Error{Kind: UnexpectedToken}
	ErrUnbalancedParenthesis = &Error{Kind: UnbalancedParenthesis}
	ErrDepthExceeded         = &Error{Kind: DepthExceeded}
	ErrUnknownTag            = &Error{Kind: UnknownTag}
)

// NewError creates an error of the given kind covering span.
func NewError(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another *Error of the same kind, so the package sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Shift returns a copy of the error moved by delta bytes.
func (e *Error) Shift(delta int) *Error {
	if e == nil || delta == 0 {
		return e
	}
	out := *e
	out.Span = out.Span.Shift(delta)
	if out.Kind == UnterminatedBlock {
		out.OpenedAt += delta
	}
	return &out
}

// Located pairs an error with its resolved start position.
type Located struct {
	*Error
	Pos Position
}

// Locate resolves the start position of err within the indexed source.
func (li *LineIndex) Locate(err *Error) Located {
	return Located{Error: err, Pos: li.Position(err.Span.Start)}
}

func (l Located) String() string {
	return fmt.Sprintf("%s: %s", l.Pos, l.Error.Error())
}
