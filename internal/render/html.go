package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/diogo/geminichat/internal/markup"
)

// HTML writes the fragment as an HTML fragment for the web surface. Node
// text is already escaped and is emitted verbatim.
func HTML(f markup.Fragment, opts Options) string {
	var b strings.Builder
	blocks := opts.BlockOffset
	writeHTML(&b, f.Nodes, opts, &blocks)
	return b.String()
}

func writeHTML(b *strings.Builder, nodes []markup.Node, opts Options, blocks *int) {
	for _, n := range nodes {
		switch v := n.(type) {
		case markup.PlainText:
			b.WriteString(v.Content)
		case markup.LineBreak:
			b.WriteString("<br>")
		case markup.InlineCode:
			b.WriteString("<code>")
			b.WriteString(v.Content)
			b.WriteString("</code>")
		case markup.CodeBlock:
			b.WriteString(`<pre><button class="copy-button" data-index="`)
			b.WriteString(strconv.Itoa(*blocks))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(opts.CopyLabel))
			b.WriteString(`</button><div class="code-content"><code>`)
			b.WriteString(v.Content)
			b.WriteString("</code></div></pre>")
			*blocks++
		case markup.Bold:
			wrapHTML(b, "strong", v.Children, opts, blocks)
		case markup.Italic:
			wrapHTML(b, "em", v.Children, opts, blocks)
		case markup.ListItem:
			wrapHTML(b, "li", v.Children, opts, blocks)
		case markup.List:
			wrapHTML(b, "ul", v.Children, opts, blocks)
		}
	}
}

func wrapHTML(b *strings.Builder, tag string, children []markup.Node, opts Options, blocks *int) {
	b.WriteString("<" + tag + ">")
	writeHTML(b, children, opts, blocks)
	b.WriteString("</" + tag + ">")
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// htmlPolicy allows exactly the elements HTML produces.
func htmlPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("ul", "li", "strong", "em", "code", "br", "pre", "div", "button")
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^(copy-button|code-content)$`)).OnElements("button", "div")
		p.AllowAttrs("data-index").Matching(bluemonday.Integer).OnElements("button")
		policy = p
	})
	return policy
}

// SanitizedHTML is HTML passed through an allow-list policy. Served output
// goes through it so that a bug in a pass can never leak markup.
func SanitizedHTML(f markup.Fragment, opts Options) string {
	return htmlPolicy().Sanitize(HTML(f, opts))
}
