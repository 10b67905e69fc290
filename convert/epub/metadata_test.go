package epub

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mdepub/book"
)

func TestBuildMetadata(t *testing.T) {
	saved := now
	t.Cleanup(func() { now = saved })
	now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 500, time.FixedZone("X", 3600)) }
	t.Setenv(sourceDateEnv, "")

	md, err := BuildMetadata(&book.Config{
		Title:   "  Title ",
		Authors: []string{"A", " ", "B"},
		Root:    "/books/x",
		Epub:    book.EpubConfig{Identifier: "0190a6d2-6c2b-7b8e-9d3c-5f1e2a3b4c5d"},
	}, "de-DE")
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if md.Title != "Title" || md.Language != "de-DE" || len(md.Authors) != 2 {
		t.Errorf("metadata = %+v", md)
	}
	if md.Identifier != "urn:uuid:0190a6d2-6c2b-7b8e-9d3c-5f1e2a3b4c5d" {
		t.Errorf("identifier = %s", md.Identifier)
	}
	if got := md.ModifiedString(); got != "2024-05-06T06:08:09Z" {
		t.Errorf("modified = %s", got)
	}
}

func TestBuildMetadata_Defaults(t *testing.T) {
	t.Setenv(sourceDateEnv, "86400")

	md, err := BuildMetadata(&book.Config{Root: "/books/my-book", Language: "fr"}, "en")
	if err != nil {
		t.Fatalf("BuildMetadata: %v", err)
	}
	if md.Title != "my-book" || md.Language != "fr" {
		t.Errorf("metadata = %+v", md)
	}
	if !strings.HasPrefix(md.Identifier, uuidURNPrefix) || len(md.Identifier) != len(uuidURNPrefix)+36 {
		t.Errorf("identifier = %s", md.Identifier)
	}
	if got := md.ModifiedString(); got != "1970-01-02T00:00:00Z" {
		t.Errorf("modified = %s", got)
	}

	other, err := BuildMetadata(&book.Config{Root: "/books/my-book"}, "en")
	if err != nil {
		t.Fatal(err)
	}
	if other.Identifier == md.Identifier {
		t.Error("generated identifiers should differ")
	}
	if other.Language != "en" {
		t.Errorf("default language not used: %s", other.Language)
	}
}

func TestBuildMetadata_Errors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *book.Config
		env   string
		field string
	}{
		{"no title", &book.Config{Language: "en"}, "", "title"},
		{"bad language", &book.Config{Title: "T", Language: "not a language"}, "", "language"},
		{"bad epoch", &book.Config{Title: "T", Language: "en"}, "yesterday", "modified"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(sourceDateEnv, tt.env)
			_, err := BuildMetadata(tt.cfg, "en")
			var me *MetadataError
			if !errors.As(err, &me) || me.Field != tt.field {
				t.Fatalf("error = %v, want MetadataError for %s", err, tt.field)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct{ in, want string }{
		{"urn:isbn:123", "urn:isbn:123"},
		{"urn:uuid:0190a6d2-6c2b-7b8e-9d3c-5f1e2a3b4c5d", "urn:uuid:0190a6d2-6c2b-7b8e-9d3c-5f1e2a3b4c5d"},
		{"my-own-id", "my-own-id"},
	}
	for _, tt := range tests {
		got, err := identifier(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("identifier(%q) = %q, %v", tt.in, got, err)
		}
	}
}
