package tui

import (
	"strconv"
	"strings"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdQuit
	cmdClear
	cmdCopy
	cmdExport
	cmdModel
)

// slashCommand is a parsed chat command. Input that is not a known command
// is sent as a prompt.
type slashCommand struct {
	kind commandKind
	arg  string
}

func parseCommand(input string) slashCommand {
	input = strings.TrimSpace(input)
	switch input {
	case "exit", "quit":
		return slashCommand{kind: cmdQuit}
	}
	if !strings.HasPrefix(input, "/") {
		return slashCommand{}
	}

	name, arg, _ := strings.Cut(input[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "exit", "quit":
		return slashCommand{kind: cmdQuit}
	case "clear", "new":
		return slashCommand{kind: cmdClear}
	case "copy":
		return slashCommand{kind: cmdCopy, arg: arg}
	case "export":
		return slashCommand{kind: cmdExport, arg: arg}
	case "model", "models":
		return slashCommand{kind: cmdModel, arg: arg}
	}
	return slashCommand{}
}

// blockNumber parses the 1-based block number of /copy. An empty argument
// means the last block.
func blockNumber(arg string, total int) (int, bool) {
	if arg == "" {
		return total, total > 0
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > total {
		return 0, false
	}
	return n, true
}
