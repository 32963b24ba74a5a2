package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/geminichat/internal/markup"
)

// Labeler supplies the current copy label of a code block.
type Labeler interface {
	Label(index int) string
}

// Terminal writes the fragment as styled terminal text. Code blocks and list
// items always sit on their own lines. Each code block gets a header with its
// copy label and 1-based number counted from opts.BlockOffset; labels may be
// nil to use opts.CopyLabel.
func Terminal(f markup.Fragment, opts Options, labels Labeler) string {
	w := &termWriter{
		opts:   opts,
		labels: labels,
		styles: newTermStyles(GetTUITheme()),
		start:  true,
	}
	w.nodes(f.Nodes)
	return w.b.String()
}

type termStyles struct {
	bold   lipgloss.Style
	italic lipgloss.Style
	code   lipgloss.Style
	bullet lipgloss.Style
	header lipgloss.Style
}

func newTermStyles(theme TUITheme) termStyles {
	return termStyles{
		bold:   lipgloss.NewStyle().Bold(true),
		italic: lipgloss.NewStyle().Italic(true),
		code:   lipgloss.NewStyle().Foreground(theme.CodeFg),
		bullet: lipgloss.NewStyle().Foreground(theme.Bullet).Bold(true),
		header: lipgloss.NewStyle().Foreground(theme.TextDim),
	}
}

type termWriter struct {
	b      strings.Builder
	opts   Options
	labels Labeler
	styles termStyles
	blocks int

	// start is true at the beginning of a line, pending when a block just
	// ended and the next content needs a fresh line.
	start   bool
	pending bool
}

func (w *termWriter) nodes(nodes []markup.Node) {
	for _, n := range nodes {
		switch v := n.(type) {
		case markup.List:
			w.nodes(v.Children)
		case markup.ListItem:
			w.openBlock()
			w.b.WriteString(w.styles.bullet.Render("•"))
			w.b.WriteString(" ")
			w.b.WriteString(w.inline(v.Children))
			w.closeBlock()
		case markup.CodeBlock:
			w.openBlock()
			w.codeBlock(v)
			w.closeBlock()
		case markup.LineBreak:
			w.b.WriteString("\n")
			w.start, w.pending = true, false
		default:
			w.text(w.inline([]markup.Node{n}))
		}
	}
}

func (w *termWriter) text(s string) {
	if s == "" {
		return
	}
	if w.pending {
		w.b.WriteString("\n")
		w.pending = false
	}
	w.b.WriteString(s)
	w.start = strings.HasSuffix(s, "\n")
}

func (w *termWriter) openBlock() {
	if !w.start {
		w.b.WriteString("\n")
	}
	w.pending = false
}

func (w *termWriter) closeBlock() {
	w.start, w.pending = false, true
}

func (w *termWriter) codeBlock(cb markup.CodeBlock) {
	index := w.opts.BlockOffset + w.blocks
	w.blocks++
	label := w.opts.CopyLabel
	if w.labels != nil {
		label = w.labels.Label(index)
	}
	w.b.WriteString(w.styles.header.Render(fmt.Sprintf("[%s %d]", label, index+1)))
	w.b.WriteString("\n")

	code := cb.PlainText()
	if w.opts.Highlight {
		if out, err := HighlightCode(code, w.opts); err == nil {
			w.b.WriteString(out)
			return
		}
	}
	w.b.WriteString(styleLines(w.styles.code, code))
}

func (w *termWriter) inline(nodes []markup.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch v := n.(type) {
		case markup.PlainText:
			b.WriteString(markup.Unescape(v.Content))
		case markup.InlineCode:
			b.WriteString(styleLines(w.styles.code, markup.Unescape(v.Content)))
		case markup.Bold:
			b.WriteString(styleLines(w.styles.bold, w.inline(v.Children)))
		case markup.Italic:
			b.WriteString(styleLines(w.styles.italic, w.inline(v.Children)))
		case markup.LineBreak:
			b.WriteString("\n")
		case markup.ListItem, markup.List, markup.CodeBlock:
			b.WriteString(markup.TextContent([]markup.Node{n}))
		}
	}
	return b.String()
}

// styleLines styles each line on its own; lipgloss would otherwise pad a
// multi-line string into a block.
func styleLines(style lipgloss.Style, s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
