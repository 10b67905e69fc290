// Package css finds external references in stylesheets.
package css

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Ref is a reference found in stylesheet.
type Ref struct {
	URL string
	// Import is set for @import targets, other references come from url().
	Import bool
}

// References lexes stylesheet and returns @import and url() targets in
// order of appearance, duplicates removed.
func References(data []byte) ([]Ref, error) {
	l := css.NewLexer(parse.NewInputBytes(data))

	var (
		refs     []Ref
		seen     = make(map[string]bool)
		inImport bool
	)
	add := func(u string, imp bool) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		refs = append(refs, Ref{URL: u, Import: imp})
	}

	for {
		tt, text := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return refs, err
			}
			return refs, nil
		case css.AtKeywordToken:
			inImport = strings.EqualFold(string(text), "@import")
		case css.StringToken:
			if inImport {
				add(unquote(string(text)), true)
				inImport = false
			}
		case css.URLToken:
			add(urlValue(string(text)), inImport)
			inImport = false
		case css.SemicolonToken, css.LeftBraceToken:
			inImport = false
		}
	}
}

// urlValue strips url( ) and quotes.
func urlValue(s string) string {
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ")")
	return unquote(s)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
