// Package markup converts chapter markdown into XHTML body fragments.
package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

type Options struct {
	// CurlyQuotes turns straight quotes, dashes and ellipses into
	// typographic ones.
	CurlyQuotes bool
}

// Converter is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

func New(opts Options) *Converter {
	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
	}
	if opts.CurlyQuotes {
		exts = append(exts, extension.Typographer)
	}
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithParserOptions(
				// mdBook makes heading anchors, links to them must keep working
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				ghtml.WithXHTML(),
				ghtml.WithUnsafe(),
			),
		),
	}
}

// Convert renders markdown source, raw HTML is passed through.
func (c *Converter) Convert(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("unable to convert markdown: %w", err)
	}
	return buf.Bytes(), nil
}
