package markup

import (
	"strings"
	"sync"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		source string
		want   []string
	}{
		{
			name:   "heading gets id",
			source: "# Getting Started\n",
			want:   []string{`<h1 id="getting-started">Getting Started</h1>`},
		},
		{
			name:   "xhtml void elements",
			source: "![logo](img/logo.png)\n\n---\n",
			want:   []string{`<img src="img/logo.png" alt="logo" />`, `<hr />`},
		},
		{
			name:   "links kept as written",
			source: "See [next](chapter_2.md#top).\n",
			want:   []string{`<a href="chapter_2.md#top">next</a>`},
		},
		{
			name:   "gfm table",
			source: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			want:   []string{"<table>", "<td>1</td>"},
		},
		{
			name:   "raw html passes",
			source: "<div class=\"warning\">careful</div>\n",
			want:   []string{`<div class="warning">careful</div>`},
		},
		{
			name:   "curly quotes",
			opts:   Options{CurlyQuotes: true},
			source: "\"quoted\"\n",
			want:   []string{"&ldquo;quoted&rdquo;"},
		},
		{
			name:   "straight quotes by default",
			source: "\"quoted\"\n",
			want:   []string{"&quot;quoted&quot;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New(tt.opts).Convert([]byte(tt.source))
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("Convert() = %q, missing %q", out, w)
				}
			}
		})
	}
}

func TestConvert_Concurrent(t *testing.T) {
	c := New(Options{})
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Convert([]byte("# Title\n\ntext\n")); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
}
