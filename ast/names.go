package ast

import (
	"strings"
	"unicode"
)

// Name returns the display name of n as used by the s-expression and
// export forms. Several Go types render under more than one name (a
// FileTag is `include_tag`, `extends_tag`, ...) and a few share one.
func Name(n Spanned) string {
	switch n := n.(type) {
	case *Document:
		return "document"
	case *Text:
		return "text"
	case *Whitespace:
		return "whitespace"
	case *Comment:
		return "comment"
	case *Error, *BadExpr:
		return "ERROR"
	case *PrintTag:
		return "latte_print_tag"
	case *VariableTag:
		return "latte_variable"
	case *Assignment:
		if n.Assign == AssignDefault {
			return "default_tag"
		}
		return "var_tag"
	case *VarTypeDecl:
		return "var_type_tag"
	case *TemplateTypeDecl:
		return "template_type_tag"
	case *Capture:
		return "capture_tag"
	case *FileTag:
		return n.File.String() + "_tag"
	case *Embed:
		return "embed_tag"
	case *SingleTag:
		return snake(n.Name) + "_tag"
	case *IfBlock:
		return "if_block"
	case *LoopBlock:
		return n.Loop.String() + "_block"
	case *SwitchBlock:
		return "switch_block"
	case *PhpBlock:
		return "php_block"
	case *GenericBlock:
		switch n.Name {
		case "block", "macro":
			return n.Name
		}
		return "pair_tag"
	case *MacroCall:
		return "macro_call"
	case *ExpressionTag:
		return "latte_expression_tag"
	case *Doctype:
		return "doctype"
	case *Entity:
		return "entity"
	case *Element:
		return "element"
	case *RawElement:
		if n.Kind() == KindStyleElement {
			return "style_element"
		}
		return "script_element"
	case *ErroneousEndTag:
		return "erroneous_end_tag"

	case *Filter:
		return "filter"
	case *Argument:
		return "argument"
	case *TypeRef:
		return "type"
	case *StartTag:
		if n.SelfClosing {
			return "self_closing_tag"
		}
		return "start_tag"
	case *EndTag:
		return "end_tag"
	case *Attribute:
		return "attribute"
	case *AttributeValue:
		if n.Quote != 0 {
			return "quoted_attribute_value"
		}
		return "attribute_value"
	case *AttributePart:
		if n.Latte {
			return "latte_expression"
		}
		return "attribute_value"
	case *ForeachHeader:
		return "foreach_header"
	case *IfBranch:
		return "elseif_block"
	case *ElseBranch:
		return "else_block"
	case *SwitchCase:
		if n.Default {
			return "default_case_block"
		}
		return "case_block"

	case *Variable:
		return "php_variable"
	case *Accessor:
		return accessorName(n)
	case *FunctionCall:
		return "function_call"
	case *StaticCall:
		return "static_call"
	case *BinaryOp:
		return "binary_expression"
	case *UnaryOp:
		return "unary_expression"
	case *Ternary:
		return "ternary_expression"
	case *Literal:
		switch n.Lit {
		case LitNumber:
			return "number_literal"
		case LitBool:
			return "boolean_literal"
		case LitNull:
			return "null_literal"
		}
		return "string_literal"
	case *ArrayLiteral:
		return "array_literal"
	case *ArrayElement:
		return "array_element"
	case *Parenthesized:
		return "parenthesized_expression"
	case *Ident:
		return "identifier"
	}
	return "unknown"
}

func accessorName(a *Accessor) string {
	prefix := ""
	if a.Nullsafe {
		prefix = "nullsafe_"
	}
	switch a.Access {
	case AccessMethod:
		if a.Static {
			return "static_method_call"
		}
		return prefix + "method_call"
	case AccessIndex:
		return "index_access"
	case AccessConstant:
		return "constant_access"
	}
	return prefix + "property_access"
}

// snake converts a camelCase tag name to snake_case.
func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
