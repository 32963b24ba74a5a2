package render

import "github.com/diogo/geminichat/internal/markup"

// PlainText returns what a reader would select and copy from the fragment.
func PlainText(f markup.Fragment) string {
	return f.Text()
}
