package book

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"mdepub/config"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), `
[book]
title = "Test Book"
authors = ["Jane Doe", "John Roe"]
language = "fr"
src = "content"

[output.epub]
identifier = "isbn:12345"
cover-image = "img/cover.png"
additional-css = ["theme/extra.css"]
epub-version = 2
toc-page = "before"
section-numbers = true
use-default-css = false
`)

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Title != "Test Book" || cfg.Language != "fr" {
		t.Errorf("book = %q/%q", cfg.Title, cfg.Language)
	}
	if !slices.Equal(cfg.Authors, []string{"Jane Doe", "John Roe"}) {
		t.Errorf("authors = %v", cfg.Authors)
	}
	if cfg.SrcDir() != filepath.Join(root, "content") {
		t.Errorf("SrcDir() = %q", cfg.SrcDir())
	}
	if cfg.Epub.Identifier != "isbn:12345" || cfg.Epub.CoverImage != "img/cover.png" {
		t.Errorf("epub = %+v", cfg.Epub)
	}
	if cfg.UseDefaultCSS() {
		t.Error("default css should be disabled")
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	root := t.TempDir()
	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Src != defaultSrcDir || cfg.Title != "" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if !cfg.UseDefaultCSS() {
		t.Error("default css should be enabled")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "[book\ntitle=")
	if _, err := LoadConfig(root); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Apply(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name    string
		epub    EpubConfig
		lang    string
		check   func(t *testing.T, doc *config.DocumentConfig, cfg *Config)
		wantErr bool
	}{
		{
			name: "nothing set",
			check: func(t *testing.T, doc *config.DocumentConfig, cfg *Config) {
				if doc.EpubVersion != config.EpubVersionEpub3 || doc.SectionNumbers {
					t.Errorf("document changed: %+v", doc)
				}
				if cfg.Language != "en" {
					t.Errorf("language = %q, want default en", cfg.Language)
				}
			},
		},
		{
			name: "overrides",
			epub: EpubConfig{EpubVersion: 2, TOCPage: "after", SectionNumbers: &yes, CurlyQuotes: &no},
			lang: "de",
			check: func(t *testing.T, doc *config.DocumentConfig, cfg *Config) {
				if doc.EpubVersion != config.EpubVersionEpub2 {
					t.Errorf("version = %s", doc.EpubVersion)
				}
				if doc.TOCPage.Placement != config.TOCPagePlacementAfter {
					t.Errorf("toc page = %s", doc.TOCPage.Placement)
				}
				if !doc.SectionNumbers || doc.CurlyQuotes {
					t.Errorf("flags = %v %v", doc.SectionNumbers, doc.CurlyQuotes)
				}
				if cfg.Language != "de" {
					t.Errorf("language = %q", cfg.Language)
				}
			},
		},
		{name: "bad version", epub: EpubConfig{EpubVersion: 4}, wantErr: true},
		{name: "bad toc page", epub: EpubConfig{TOCPage: "middle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &config.DocumentConfig{
				EpubVersion: config.EpubVersionEpub3,
				Language:    "en",
				CurlyQuotes: true,
			}
			cfg := &Config{Language: tt.lang, Epub: tt.epub}
			err := cfg.Apply(doc)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			tt.check(t, doc, cfg)
		})
	}
}
