package markup

import "strings"

var (
	escaper   = strings.NewReplacer("<", "&lt;", ">", "&gt;")
	unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">")
)

// Escape neutralizes angle brackets. Nothing else is touched, so escaping
// text that already contains "&lt;" leaves that entity alone.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	return unescaper.Replace(s)
}
