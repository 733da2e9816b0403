package main

import (
	"os"

	"golang.org/x/term"
)

// isTerminalStdout decides whether ANSI coloring is safe to emit (§14.6):
// only when standard output is an actual terminal, not a pipe or file.
func isTerminalStdout() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// colorState returns an ANSI-colored rendering of a status/list line's
// state word when color is enabled, otherwise the word unchanged.
func colorState(state string, color bool) string {
	if !color {
		return state
	}
	switch state {
	case "running":
		return ansiGreen + state + ansiReset
	case "failed":
		return ansiRed + state + ansiReset
	case "starting", "stopping":
		return ansiYellow + state + ansiReset
	default:
		return state
	}
}
