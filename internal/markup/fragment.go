package markup

import "strings"

// Fragment is the structured result of rendering one reply.
type Fragment struct {
	Nodes   []Node
	wrapped bool
}

// Wrapped reports whether Nodes is a single list container around the
// whole fragment.
func (f Fragment) Wrapped() bool {
	return f.wrapped
}

// Body returns the content nodes, looking through the whole-fragment list
// container when there is one.
func (f Fragment) Body() []Node {
	if f.wrapped && len(f.Nodes) == 1 {
		if l, ok := f.Nodes[0].(List); ok {
			return l.Children
		}
	}
	return f.Nodes
}

// CodeBlocks returns every code block in document order.
func (f Fragment) CodeBlocks() []CodeBlock {
	var blocks []CodeBlock
	Walk(f.Nodes, func(n Node) bool {
		if cb, ok := n.(CodeBlock); ok {
			blocks = append(blocks, cb)
		}
		return true
	})
	return blocks
}

// Text returns the unescaped text content of the fragment.
func (f Fragment) Text() string {
	return TextContent(f.Nodes)
}

// Plain builds an unwrapped fragment that shows text verbatim, with no
// markup recognized. User messages and the failure apology use it.
func Plain(text string) Fragment {
	var nodes []Node
	for i, line := range strings.Split(Escape(text), "\n") {
		if i > 0 {
			nodes = append(nodes, LineBreak{})
		}
		nodes = appendText(nodes, line)
	}
	return Fragment{Nodes: nodes}
}
