//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// colon is not reserved but Finder shows it as slash
const reservedChars = "/:"

func reservedName(string) bool {
	return false
}

func consoleColor(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
