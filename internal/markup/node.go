// Package markup turns raw reply text into a tree of typed display nodes.
//
// Text content held by nodes is already escaped: every "<" is "&lt;" and
// every ">" is "&gt;". Display adapters emit it as-is and never escape again.
package markup

import "strings"

// Node is one element of a rendered fragment.
type Node interface {
	isNode()
}

// CodeBlock is a fenced code region. Content is escaped and trimmed.
type CodeBlock struct {
	Content string
}

// InlineCode is a backtick-delimited span.
type InlineCode struct {
	Content string
}

// Bold is a **...** span.
type Bold struct {
	Children []Node
}

// Italic is a *...* or _..._ span.
type Italic struct {
	Children []Node
}

// ListItem is the content of a "* " line.
type ListItem struct {
	Children []Node
}

// List groups list items.
type List struct {
	Children []Node
}

// PlainText is escaped text with no markup.
type PlainText struct {
	Content string
}

// LineBreak is a newline outside code.
type LineBreak struct{}

// listMarker reserves a "* " list prefix until list items are assembled.
type listMarker struct{}

func (CodeBlock) isNode()  {}
func (InlineCode) isNode() {}
func (Bold) isNode()       {}
func (Italic) isNode()     {}
func (ListItem) isNode()   {}
func (List) isNode()       {}
func (PlainText) isNode()  {}
func (LineBreak) isNode()  {}
func (listMarker) isNode() {}

// PlainText returns the code exactly as it should be copied, with the
// escaping undone.
func (c CodeBlock) PlainText() string {
	return Unescape(c.Content)
}

// Text returns the item's text content in escaped form.
func (l ListItem) Text() string {
	var b strings.Builder
	writeText(&b, l.Children, false)
	return b.String()
}

// Children returns the child nodes of a container node, or nil.
func Children(n Node) []Node {
	switch v := n.(type) {
	case Bold:
		return v.Children
	case Italic:
		return v.Children
	case ListItem:
		return v.Children
	case List:
		return v.Children
	}
	return nil
}

func withChildren(n Node, children []Node) Node {
	switch n.(type) {
	case Bold:
		return Bold{Children: children}
	case Italic:
		return Italic{Children: children}
	case ListItem:
		return ListItem{Children: children}
	case List:
		return List{Children: children}
	}
	return n
}

// Walk visits nodes depth-first in document order. Returning false from fn
// skips the children of the visited node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if fn(n) {
			Walk(Children(n), fn)
		}
	}
}

// TextContent returns the unescaped text of nodes, with line breaks as "\n".
func TextContent(nodes []Node) string {
	var b strings.Builder
	writeText(&b, nodes, true)
	return b.String()
}

func writeText(b *strings.Builder, nodes []Node, unescape bool) {
	for i, n := range nodes {
		switch v := n.(type) {
		case PlainText:
			b.WriteString(maybeUnescape(v.Content, unescape))
		case InlineCode:
			b.WriteString(maybeUnescape(v.Content, unescape))
		case CodeBlock:
			b.WriteString(maybeUnescape(v.Content, unescape))
		case LineBreak:
			b.WriteByte('\n')
		case ListItem:
			if i > 0 {
				if _, prev := nodes[i-1].(ListItem); prev {
					b.WriteByte('\n')
				}
			}
			writeText(b, v.Children, unescape)
		default:
			writeText(b, Children(n), unescape)
		}
	}
}

func maybeUnescape(s string, unescape bool) string {
	if unescape {
		return Unescape(s)
	}
	return s
}
