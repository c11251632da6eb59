package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/josbeir/tree-sitter-latte/syntax"
)

func types(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t.Type)
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		{"$a->b?->c", []TokenType{TokenVariable, TokenArrow, TokenIdent, TokenNullsafeArrow, TokenIdent, TokenEOF}},
		{"1 + 2.5 * 0x1F", []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenMul, TokenNumber, TokenEOF}},
		{"$a === $b !== $c", []TokenType{TokenVariable, TokenIdentical, TokenVariable, TokenNotIdentical, TokenVariable, TokenEOF}},
		{"$a <=> $b <> $c", []TokenType{TokenVariable, TokenSpaceship, TokenVariable, TokenNeAlt, TokenVariable, TokenEOF}},
		{"$a ?? 'x' ?: \"y\"", []TokenType{TokenVariable, TokenCoalesce, TokenString, TokenQuestion, TokenColon, TokenString, TokenEOF}},
		{"Foo::BAR", []TokenType{TokenIdent, TokenDoubleColon, TokenIdent, TokenEOF}},
		{"\\App\\Model", []TokenType{TokenIdent, TokenEOF}},
		{"[1, 'a' => 2]", []TokenType{TokenBracketOpen, TokenNumber, TokenComma, TokenString, TokenDoubleArrow, TokenNumber, TokenBracketClose, TokenEOF}},
		{"++$i ** 2", []TokenType{TokenIncrement, TokenVariable, TokenPow, TokenNumber, TokenEOF}},
		{"#name|upper", []TokenType{TokenHash, TokenIdent, TokenPipe, TokenIdent, TokenEOF}},
		{"$ @", []TokenType{TokenError, TokenError, TokenEOF}},
		{"", []TokenType{TokenEOF}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := types(Tokenize(tt.src, 0, len(tt.src)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenValues(t *testing.T) {
	src := "{$name . 'it\\'s'}"
	tokens := Tokenize(src, 1, len(src)-1)
	if tokens[0].Value != "name" || tokens[0].Span != (Span{Start: 1, End: 6}) {
		t.Errorf("unexpected variable token %v %s", tokens[0], tokens[0].Span)
	}
	if tokens[1].Type != TokenConcat {
		t.Errorf("expected concat, got %s", tokens[1].Type)
	}
	if tokens[2].Type != TokenString || tokens[2].Value != `'it\'s'` {
		t.Errorf("unexpected string token %v", tokens[2])
	}
}

func TestNumbers(t *testing.T) {
	for _, src := range []string{"0", "42", "1.5", "1e10", "2.5E-3", "0x1f", "0b101", "0o17"} {
		tokens := Tokenize(src, 0, len(src))
		if len(tokens) != 2 || tokens[0].Type != TokenNumber || tokens[0].Value != src {
			t.Errorf("expected one number token for %q, got %v", src, tokens)
		}
	}
	// A trailing dot is concatenation, not part of the number.
	tokens := Tokenize("1.", 0, 2)
	if diff := cmp.Diff([]TokenType{TokenNumber, TokenConcat, TokenEOF}, types(tokens)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestUnterminatedString(t *testing.T) {
	src := "'abc"
	tokens := Tokenize(src, 0, len(src))
	if tokens[0].Type != TokenError || tokens[0].Kind != syntax.UnterminatedLiteral {
		t.Errorf("expected an unterminated literal, got %v", tokens[0])
	}
}

func scanAll(src string) []Token {
	var out []Token
	for pos := 0; pos < len(src); {
		tok := ScanTemplate(src, pos)
		out = append(out, tok)
		if tok.Span.End > pos {
			pos = tok.Span.End
		} else {
			pos++
		}
	}
	return out
}

func TestScanTemplate(t *testing.T) {
	tests := []struct {
		src  string
		want []TokenType
	}{
		{"Hello {$name}!", []TokenType{TokenText, TokenWhitespace, TokenVarOpen, TokenText}},
		{"{* c *} <b>", []TokenType{TokenComment, TokenWhitespace, TokenMarkup, TokenText, TokenText}},
		{"{=1}{/if}", []TokenType{TokenPrintOpen, TokenText, TokenCloseOpen, TokenText}},
		{"a { b } c", []TokenType{TokenText}},
		{"x &amp;", []TokenType{TokenText, TokenWhitespace, TokenMarkup, TokenText}},
		{"{* open", []TokenType{TokenError}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := types(scanAll(tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTextExcludesTrailingWhitespace(t *testing.T) {
	tok := ScanTemplate("abc  \n{$x}", 0)
	if tok.Type != TokenText || tok.Value != "abc" {
		t.Errorf("unexpected token %v", tok)
	}
}

func TestScanTagEnd(t *testing.T) {
	tests := []struct {
		src  string
		end  int
		kind syntax.ErrorKind
	}{
		{"{$a}", 4, 0},
		{"{='}' . $a} x", 11, 0},
		{"{=[1, {a: 2}]} x", 14, 0},
		{"{='abc} x", 7, syntax.UnterminatedLiteral},
		{"{$a x", 5, syntax.UnexpectedToken},
	}
	for _, tt := range tests {
		end, kind := ScanTagEnd(tt.src, 1)
		if end != tt.end || kind != tt.kind {
			t.Errorf("ScanTagEnd(%q) = %d, %v; want %d, %v", tt.src, end, kind, tt.end, tt.kind)
		}
	}
}

func TestScanRawEnd(t *testing.T) {
	src := `{php echo "\}"; } rest`
	end, ok := ScanRawEnd(src, 4)
	if !ok || src[:end] != `{php echo "\}"; }` {
		t.Errorf("unexpected end %d", end)
	}
	if _, ok := ScanRawEnd("{php", 4); ok {
		t.Errorf("expected no end")
	}
}

func TestScanRawArgs(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"20|upper", "20"},
		{"'a|b', 2|upper", "'a|b', 2"},
		{"fn($a|b)|upper", "fn($a|b)"},
		{"$a || $b|upper", "$a || $b"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		end := ScanRawArgs(tt.src, 0, len(tt.src))
		if got := tt.src[:end]; got != tt.want {
			t.Errorf("ScanRawArgs(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestIsTagStart(t *testing.T) {
	tests := map[string]bool{
		"{$a}": true,
		"{if}": true,
		"{ a}": false,
		"{}":   false,
		"{":    false,
		"{\n":  false,
	}
	for src, want := range tests {
		if got := IsTagStart(src, 0); got != want {
			t.Errorf("IsTagStart(%q) = %v, want %v", src, got, want)
		}
	}
}
