package epub

import (
	"errors"
	"testing"
)

func TestLinearize(t *testing.T) {
	b := newTestBook(t, nil, []testChapter{
		{title: "Intro", path: "intro.md"},
		{title: "Part", children: []testChapter{
			{title: "", path: "part/first-steps.md", children: []testChapter{
				{title: "Deep", path: "part/deep.md"},
			}},
			{title: "Draft"},
		}},
		{title: "End", path: "end.md"},
	})

	chapters, err := Linearize(b.Tree)
	if err != nil {
		t.Fatalf("Linearize: %v", err)
	}

	tests := []struct {
		title, source, href string
		depth               int
	}{
		{"Intro", "intro.md", "chapter-0000.xhtml", 0},
		{"first-steps", "part/first-steps.md", "chapter-0001.xhtml", 1},
		{"Deep", "part/deep.md", "chapter-0002.xhtml", 2},
		{"End", "end.md", "chapter-0003.xhtml", 0},
	}
	if len(chapters) != len(tests) {
		t.Fatalf("got %d chapters, want %d", len(chapters), len(tests))
	}
	for i, tt := range tests {
		ch := chapters[i]
		if ch.Position != i || ch.Title != tt.title || ch.Source != tt.source || ch.Href != tt.href || ch.Depth != tt.depth {
			t.Errorf("chapter %d = %+v, want %+v", i, ch, tt)
		}
		if n := b.Tree.Node(ch.Node); n == nil || n.Path != ch.Source {
			t.Errorf("chapter %d points to wrong node", i)
		}
	}
}

func TestLinearize_Empty(t *testing.T) {
	tests := []struct {
		name     string
		chapters []testChapter
	}{
		{"no nodes", nil},
		{"separators only", []testChapter{{title: "Part"}, {title: "Draft"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Linearize(newTestBook(t, nil, tt.chapters).Tree)
			var ebe *EmptyBookError
			if !errors.As(err, &ebe) {
				t.Fatalf("error = %v, want EmptyBookError", err)
			}
		})
	}
}
