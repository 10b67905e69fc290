package config

import (
	"os"
	"strings"
	"unicode/utf8"
)

const (
	// leaves room for extension and temporary file suffix within 255 bytes
	maxFileNameBytes = 200
	fallbackFileName = "book"
)

// CleanFileName makes single path segment usable as output file or directory
// name. Control and platform reserved characters are dropped, leading dots
// and spaces are trimmed so result is never hidden, trailing ones because
// some filesystems strip them silently. Result is cut on rune boundary.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym < 0x20 || sym == 0x7f || strings.ContainsRune(reservedChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ". ")
	out = strings.TrimRight(truncate(out, maxFileNameBytes), ". ")
	if len(out) == 0 {
		return fallbackFileName
	}
	if reservedName(out) {
		out = "_" + out
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// EnableColorOutput checks if colorized output is possible. Setting NO_COLOR
// to any value disables it.
func EnableColorOutput(stream *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return consoleColor(stream)
}
