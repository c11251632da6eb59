package ast

// Inspect traverses the tree rooted at n in depth-first source order. It
// calls f(n); if f returns true, Inspect visits each child of n. Nil
// children are skipped.
func Inspect(n Spanned, f func(Spanned) bool) {
	if isNil(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Children returns the direct children of n in source order.
func Children(n Spanned) []Spanned {
	var out []Spanned
	add := func(items ...Spanned) {
		for _, it := range items {
			if !isNil(it) {
				out = append(out, it)
			}
		}
	}
	addNodes := func(nodes []Node) {
		for _, c := range nodes {
			add(c)
		}
	}
	addExprs := func(exprs []Expr) {
		for _, e := range exprs {
			add(e)
		}
	}
	addFilters := func(fs []*Filter) {
		for _, f := range fs {
			add(f)
		}
	}
	addArgs := func(args []*Argument) {
		for _, a := range args {
			add(a)
		}
	}

	switch n := n.(type) {
	case *Document:
		addNodes(n.Children)
	case *PrintTag:
		add(n.Expr)
		addFilters(n.Filters)
	case *VariableTag:
		add(n.Var)
		addFilters(n.Filters)
	case *Assignment:
		add(n.Type, n.Target, n.Value)
		addFilters(n.Filters)
	case *VarTypeDecl:
		add(n.Type, n.Var)
	case *TemplateTypeDecl:
		add(n.Type)
	case *Capture:
		add(n.Open, n.Var)
		addFilters(n.Filters)
		addNodes(n.Body)
		add(n.Close)
	case *FileTag:
		add(n.Path)
		addArgs(n.Args)
		addFilters(n.Filters)
	case *Embed:
		add(n.Open, n.Path)
		addArgs(n.Args)
		addNodes(n.Body)
		add(n.Close)
	case *SingleTag:
		add(n.Expr)
	case *IfBlock:
		for _, b := range n.Branches {
			add(b)
		}
		add(n.Else, n.Close)
	case *IfBranch:
		add(n.Tag, n.Cond)
		addExprs(n.Isset)
		addNodes(n.Body)
	case *ElseBranch:
		add(n.Tag)
		addNodes(n.Body)
	case *LoopBlock:
		add(n.Open, n.Foreach, n.Cond)
		addNodes(n.Body)
		add(n.Else, n.Close)
	case *ForeachHeader:
		add(n.Iterable, n.Key, n.Value)
	case *SwitchBlock:
		add(n.Open, n.Expr)
		addNodes(n.Preamble)
		for _, c := range n.Cases {
			add(c)
		}
		add(n.Close)
	case *SwitchCase:
		add(n.Tag)
		addExprs(n.Values)
		addNodes(n.Body)
	case *GenericBlock:
		add(n.Open)
		addNodes(n.Body)
		add(n.Else, n.Close)
	case *ExpressionTag:
		add(n.Expr)
		addFilters(n.Filters)
	case *Argument:
		add(n.Value)
	case *Element:
		add(n.Start)
		addNodes(n.Body)
		add(n.End)
	case *RawElement:
		add(n.Start, n.End)
	case *StartTag:
		for _, a := range n.Attrs {
			add(a)
		}
	case *Attribute:
		add(n.Value)
	case *AttributeValue:
		for _, p := range n.Parts {
			add(p)
		}

	case *Variable:
		for _, a := range n.Accessors {
			add(a)
		}
	case *Accessor:
		addExprs(n.Args)
		add(n.Index)
	case *FunctionCall:
		addExprs(n.Args)
	case *StaticCall:
		addExprs(n.Args)
	case *BinaryOp:
		add(n.Left, n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *Ternary:
		add(n.Cond, n.Then, n.Else)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			add(e)
		}
	case *ArrayElement:
		add(n.Key, n.Value)
	case *Parenthesized:
		add(n.Inner)
	}
	return out
}
