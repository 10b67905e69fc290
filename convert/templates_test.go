package convert

import (
	"strings"
	"testing"

	"mdepub/book"
	"mdepub/config"
)

func setupTestBookConfig(t *testing.T) *book.Config {
	t.Helper()
	return &book.Config{
		Title:       "Test Book",
		Authors:     []string{"John Doe", "Jane Roe"},
		Description: "About testing",
		Language:    "en",
		Root:        "/books/test-book",
		Epub:        book.EpubConfig{Identifier: "urn:isbn:123"},
	}
}

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"plain text", "simple-text", "simple-text"},
		{"title", "{{ .Title }}", "Test Book"},
		{"first author", "{{ index .Authors 0 }} - {{ .Title }}", "John Doe - Test Book"},
		{"all authors", `{{ join ", " .Authors }}`, "John Doe, Jane Roe"},
		{"sprig functions", "{{ .Title | lower | replace \" \" \"_\" }}", "test_book"},
		{"format and language", "{{ .Language }}/{{ .Format }}", "en/epub3"},
		{"id and root", "{{ .Root }}-{{ .BookID }}", "test-book-urn:isbn:123"},
		{"context", "{{ .Context }}", string(config.OutputNameTemplateFieldName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(setupTestBookConfig(t), config.OutputNameTemplateFieldName, tt.template, config.EpubVersionEpub3)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandTemplate_TitleFallback(t *testing.T) {
	cfg := setupTestBookConfig(t)
	cfg.Title = "  "
	got, err := expandTemplate(cfg, config.OutputNameTemplateFieldName, "{{ .Title }}", config.EpubVersionEpub2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "test-book" {
		t.Errorf("expandTemplate() = %q, want root name", got)
	}
}

func TestExpandTemplate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		msg      string
	}{
		{"parse error", "{{ .Title", "unable to parse template field"},
		{"execution error", "{{ index .Authors 5 }}", "index out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expandTemplate(setupTestBookConfig(t), config.OutputNameTemplateFieldName, tt.template, config.EpubVersionEpub3)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error = %v, want %q", err, tt.msg)
			}
		})
	}
}
