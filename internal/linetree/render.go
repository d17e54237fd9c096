package linetree

import "strings"

// DefaultIndent is one indentation level of generated Python.
const DefaultIndent = "    "

// Renderer flattens a Block into text.
type Renderer struct {
	// Indent is repeated once per nesting level. Empty means DefaultIndent.
	Indent string
}

// Render writes each line prefixed by its indentation and terminated by a
// newline. Nothing else is added or trimmed.
func (r Renderer) Render(b Block) string {
	indent := r.Indent
	if indent == "" {
		indent = DefaultIndent
	}

	var sb strings.Builder
	b.Walk(func(line Line, depth int) {
		for i := 0; i < depth; i++ {
			sb.WriteString(indent)
		}
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	})
	return sb.String()
}

// Render renders b with the default indentation.
func Render(b Block) string {
	return Renderer{}.Render(b)
}
