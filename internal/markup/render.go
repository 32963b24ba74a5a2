package markup

import "strings"

const fence = "```"

// Render converts raw reply text into a fragment using the default options.
// It never fails; text that matches no rule comes back as escaped plain text.
func Render(raw string) Fragment {
	return RenderWithOptions(raw, DefaultOptions())
}

// RenderWithOptions runs the passes in order. Each pass only rewrites
// PlainText nodes, descending into containers built by earlier passes, so a
// node produced by one pass is never reinterpreted by a later one.
func RenderWithOptions(raw string, opts Options) Fragment {
	nodes := extractFences(raw)
	nodes = mapText(nodes, inlineCode)
	nodes = mapText(nodes, bold)
	nodes = mapText(nodes, starItalic)
	nodes = mapText(nodes, underscoreItalic)
	nodes = buildListItems(nodes)
	nodes = mapText(nodes, lineBreaks)

	if opts.ListScope == ListScopeRuns {
		return Fragment{Nodes: wrapRuns(nodes)}
	}
	return Fragment{Nodes: []Node{List{Children: nodes}}, wrapped: true}
}

// mapText applies fn to every PlainText node, including those inside
// containers. The nodes fn returns are not visited again.
func mapText(nodes []Node, fn func(string) []Node) []Node {
	var out []Node
	for _, n := range nodes {
		switch v := n.(type) {
		case PlainText:
			out = append(out, fn(v.Content)...)
		case Bold, Italic, ListItem, List:
			out = append(out, withChildren(n, mapText(Children(n), fn)))
		default:
			out = append(out, n)
		}
	}
	return out
}

func appendText(nodes []Node, s string) []Node {
	if s == "" {
		return nodes
	}
	return append(nodes, PlainText{Content: s})
}

// extractFences splits raw text into code blocks and escaped text. An
// unclosed fence is left in the text.
func extractFences(raw string) []Node {
	var out []Node
	rest := raw
	atLineStart := true
	for {
		open := strings.Index(rest, fence)
		if open < 0 {
			break
		}
		body := rest[open+len(fence):]
		end := strings.Index(body, fence)
		if end < 0 {
			break
		}
		out = append(out, splitListMarkers(rest[:open], atLineStart)...)
		out = append(out, CodeBlock{Content: strings.TrimSpace(Escape(body[:end]))})
		rest = body[end+len(fence):]
		atLineStart = false
	}
	return append(out, splitListMarkers(rest, atLineStart)...)
}

// splitListMarkers escapes seg and reserves the "* " prefix of every list
// line so the emphasis passes cannot consume it. The first line of seg only
// counts as a line start when atLineStart is set.
func splitListMarkers(seg string, atLineStart bool) []Node {
	var out []Node
	textStart := 0
	pos := 0
	for first := true; ; first = false {
		lineEnd := strings.IndexByte(seg[pos:], '\n')
		line := seg[pos:]
		if lineEnd >= 0 {
			line = seg[pos : pos+lineEnd]
		}
		if !first || atLineStart {
			if n, ok := markerLen(line); ok {
				out = appendText(out, Escape(seg[textStart:pos]))
				out = append(out, listMarker{})
				textStart = pos + n
			}
		}
		if lineEnd < 0 {
			break
		}
		pos += lineEnd + 1
	}
	return appendText(out, Escape(seg[textStart:]))
}

// markerLen returns the length of the list prefix of line: optional spaces
// or tabs, a star, one space or tab. The rest of the line must not be empty.
func markerLen(line string) (int, bool) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	if i+2 >= len(line) || line[i] != '*' || (line[i+1] != ' ' && line[i+1] != '\t') {
		return 0, false
	}
	return i + 2, true
}

// inlineCode matches `x` where x is non-empty and holds no backtick.
func inlineCode(s string) []Node {
	var out []Node
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '`' {
			continue
		}
		j := strings.IndexByte(s[i+1:], '`')
		if j < 0 {
			break
		}
		if j == 0 {
			continue
		}
		end := i + 1 + j
		out = appendText(out, s[last:i])
		out = append(out, InlineCode{Content: s[i+1 : end]})
		last = end + 1
		i = end
	}
	return appendText(out, s[last:])
}

// bold matches **x** on a single line, shortest first.
func bold(s string) []Node {
	var out []Node
	last := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] != '*' || s[i+1] != '*' {
			continue
		}
		end := closingOnLine(s, i+2, "**")
		if end < 0 {
			continue
		}
		out = appendText(out, s[last:i])
		out = append(out, Bold{Children: appendText(nil, s[i+2:end])})
		last = end + 2
		i = last - 1
	}
	return appendText(out, s[last:])
}

// starItalic matches *x* where neither star touches another star and x is a
// non-empty single line without stars.
func starItalic(s string) []Node {
	var out []Node
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '*' || (i > 0 && s[i-1] == '*') {
			continue
		}
		j := strings.IndexAny(s[i+1:], "*\n")
		if j <= 0 || s[i+1+j] != '*' {
			continue
		}
		end := i + 1 + j
		if end+1 < len(s) && s[end+1] == '*' {
			continue
		}
		out = appendText(out, s[last:i])
		out = append(out, Italic{Children: appendText(nil, s[i+1:end])})
		last = end + 1
		i = end
	}
	return appendText(out, s[last:])
}

// underscoreItalic matches _x_ where x is a non-empty single line without
// underscores.
func underscoreItalic(s string) []Node {
	var out []Node
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		j := strings.IndexAny(s[i+1:], "_\n")
		if j <= 0 || s[i+1+j] != '_' {
			continue
		}
		end := i + 1 + j
		out = appendText(out, s[last:i])
		out = append(out, Italic{Children: appendText(nil, s[i+1:end])})
		last = end + 1
		i = end
	}
	return appendText(out, s[last:])
}

// closingOnLine returns the index of the first delim at or after from that
// comes before the next newline, or -1.
func closingOnLine(s string, from int, delim string) int {
	rest := s[from:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	idx := strings.Index(rest, delim)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// buildListItems turns each reserved marker and the rest of its line into a
// ListItem. A newline or a code block ends the line.
func buildListItems(nodes []Node) []Node {
	var out []Node
	var item *ListItem
	flush := func() {
		if item != nil {
			out = append(out, *item)
			item = nil
		}
	}
	for _, n := range nodes {
		switch v := n.(type) {
		case listMarker:
			flush()
			item = &ListItem{}
		case CodeBlock:
			flush()
			out = append(out, v)
		case PlainText:
			if item == nil {
				out = append(out, v)
				continue
			}
			nl := strings.IndexByte(v.Content, '\n')
			if nl < 0 {
				item.Children = append(item.Children, v)
				continue
			}
			item.Children = appendText(item.Children, v.Content[:nl])
			flush()
			out = append(out, PlainText{Content: v.Content[nl:]})
		default:
			if item != nil {
				item.Children = append(item.Children, n)
			} else {
				out = append(out, n)
			}
		}
	}
	flush()
	return out
}

func lineBreaks(s string) []Node {
	var out []Node
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out = append(out, LineBreak{})
		}
		out = appendText(out, line)
	}
	return out
}

// wrapRuns wraps each run of list items separated by single line breaks in
// its own List. The breaks inside a run are dropped.
func wrapRuns(nodes []Node) []Node {
	var out []Node
	for i := 0; i < len(nodes); {
		first, ok := nodes[i].(ListItem)
		if !ok {
			out = append(out, nodes[i])
			i++
			continue
		}
		list := List{Children: []Node{first}}
		i++
		for i+1 < len(nodes) {
			if _, br := nodes[i].(LineBreak); !br {
				break
			}
			next, ok := nodes[i+1].(ListItem)
			if !ok {
				break
			}
			list.Children = append(list.Children, next)
			i += 2
		}
		out = append(out, list)
	}
	return out
}
