package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// Glamour built-in styles accepted by Options.Style.
const (
	StyleDark    = "dark"
	StyleLight   = "light"
	StyleDracula = "dracula"
	StyleTokyo   = "tokyo-night"
	StyleNoTTY   = "notty"
	StyleASCII   = "ascii"
)

// StyleNames lists the built-in glamour styles.
func StyleNames() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyo, StyleNoTTY, StyleASCII}
}

// HighlightCode renders code as a fenced block through a pooled glamour
// renderer. A language tag on the first line is used for highlighting only.
func HighlightCode(code string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	lang, body := SplitLanguage(code)
	out, err := renderer.Render(fence + lang + "\n" + body + "\n" + fence + "\n")
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

const fence = "```"

// SplitLanguage detects a language tag such as "go" or "c++" alone on the
// first line of a multi-line code block. Only names chroma knows count, so an
// ordinary first line of code is never taken for a tag.
func SplitLanguage(code string) (lang, body string) {
	first, rest, ok := strings.Cut(code, "\n")
	if !ok || first == "" || len(first) > 20 {
		return "", code
	}
	for _, r := range first {
		isWord := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
		if !isWord && !strings.ContainsRune("+#-_.", r) {
			return "", code
		}
	}
	if lexers.Get(first) == nil {
		return "", code
	}
	return strings.ToLower(first), rest
}
