package ast

// Exported is a plain-data view of a tree element, suitable for JSON and
// YAML encoding. Trivia is dropped, as in the s-expression form.
type Exported struct {
	Type     string      `json:"type" yaml:"type"`
	Field    string      `json:"field,omitempty" yaml:"field,omitempty"`
	Start    int         `json:"start" yaml:"start"`
	End      int         `json:"end" yaml:"end"`
	Text     string      `json:"text,omitempty" yaml:"text,omitempty"`
	Missing  bool        `json:"missing,omitempty" yaml:"missing,omitempty"`
	Children []*Exported `json:"children,omitempty" yaml:"children,omitempty"`
}

// Export converts n into its plain-data view.
func Export(n Spanned) *Exported {
	s := describe(n)
	if s == nil {
		return nil
	}
	return exportShape(s, s.span.End)
}

func exportShape(s *shape, parentEnd int) *Exported {
	out := &Exported{
		Type:    s.name,
		Field:   s.field,
		Start:   s.span.Start,
		End:     s.span.End,
		Text:    s.text,
		Missing: s.missing,
	}
	if s.missing || s.anon {
		// Missing tags and operators carry no span of their own.
		out.Start, out.End = parentEnd, parentEnd
	}
	for _, c := range s.children {
		out.Children = append(out.Children, exportShape(c, s.span.End))
	}
	return out
}
