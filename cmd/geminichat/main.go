// Command geminichat is a terminal chat client and generation backend for
// Gemini models.
package main

import "github.com/diogo/geminichat/internal/commands"

func main() {
	commands.Execute()
}
