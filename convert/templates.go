package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"mdepub/book"
	"mdepub/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context     string
	Title       string
	Authors     []string
	Description string
	Language    string
	BookID      string
	Format      string
	// Root is base name of the book root directory
	Root string
}

// bookTitle falls back to the book root directory name the same way package
// metadata does.
func bookTitle(cfg *book.Config) string {
	if t := strings.TrimSpace(cfg.Title); len(t) > 0 {
		return t
	}
	return filepath.Base(cfg.Root)
}

func expandTemplate(cfg *book.Config, name config.TemplateFieldName, field string, version config.EpubVersion) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:     string(name),
		Title:       bookTitle(cfg),
		Authors:     cfg.Authors,
		Description: cfg.Description,
		Language:    cfg.Language,
		BookID:      cfg.Epub.Identifier,
		Format:      version.String(),
		Root:        filepath.Base(cfg.Root),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
