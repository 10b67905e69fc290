package epub

import (
	"errors"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"mdepub/config"
)

func renderBody(t *testing.T, body string, version config.EpubVersion) string {
	t.Helper()
	ch := &LinearChapter{Title: "Chapter", Source: "ch.md", Body: []byte(body)}
	data, err := Render(ch, &RenderOptions{Version: version, Language: "en", BookTitle: "Book", Stylesheets: []string{"res/my style.css"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(data)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		version config.EpubVersion
		want    []string
		notWant []string
	}{
		{
			name:    "void and unclosed elements",
			body:    `<p>one<br>two<p>three &amp; &nbsp;four<img src="a.png" alt="x">`,
			version: config.EpubVersionEpub3,
			want:    []string{`<br/>`, `<p>three &amp;`, `<img src="a.png" alt="x"/>`},
		},
		{
			name:    "head of epub3",
			body:    `<p>x</p>`,
			version: config.EpubVersionEpub3,
			want:    []string{
				`<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" xml:lang="en" lang="en">`,
				`<meta charset="utf-8"/>`,
				`<link rel="stylesheet" type="text/css" href="res/my%20style.css"/>`,
				`<title>Chapter</title>`,
			},
			notWant: []string{`<!DOCTYPE`},
		},
		{
			name:    "head of epub2",
			body:    `<p>x</p>`,
			version: config.EpubVersionEpub2,
			want:    []string{
				`<?xml version="1.0" encoding="UTF-8"?><!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"><html`,
				`<meta http-equiv="Content-Type" content="text/html; charset=utf-8"/>`,
			},
			notWant: []string{`xmlns:epub`, ` lang="en"`},
		},
		{
			name:    "svg gets namespaces",
			body:    `<svg viewBox="0 0 10 10"><image xlink:href="a.png"/><foreignObject><p>html</p></foreignObject></svg>`,
			version: config.EpubVersionEpub3,
			want:    []string{
				`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 10 10">`,
				`<image xlink:href="a.png"/>`,
				`<p xmlns="http://www.w3.org/1999/xhtml">html</p>`,
			},
		},
		{
			name:    "math namespace",
			body:    `<math><mi>x</mi></math>`,
			version: config.EpubVersionEpub3,
			want:    []string{`<math xmlns="http://www.w3.org/1998/Math/MathML"><mi>x</mi></math>`},
		},
		{
			name:    "epub attributes only in epub3",
			body:    `<aside epub:type="footnote" id="n1">note</aside>`,
			version: config.EpubVersionEpub2,
			want:    []string{`<aside id="n1">note</aside>`},
			notWant: []string{`epub:type`},
		},
		{
			name:    "epub attributes kept in epub3",
			body:    `<aside epub:type="footnote" id="n1">note</aside>`,
			version: config.EpubVersionEpub3,
			want:    []string{`<aside epub:type="footnote" id="n1">note</aside>`},
		},
		{
			name:    "things xml cannot carry",
			body:    "<p foo:bar=\"1\" data-x=\"2\" 1bad=\"3\">a\x01b<!-- bad -- comment --><!-- good --></p>",
			version: config.EpubVersionEpub3,
			want:    []string{`<p data-x="2">ab<!-- good --></p>`},
			notWant: []string{`foo:bar`, `1bad`, `bad --`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderBody(t, tt.body, tt.version)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output does not contain %s:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("output contains %s:\n%s", w, got)
				}
			}
			if err := etree.NewDocument().ReadFromString(got); err != nil {
				t.Errorf("output is not well formed: %v", err)
			}
		})
	}
}

func TestRender_TitleFallback(t *testing.T) {
	ch := &LinearChapter{Source: "ch.md", Body: []byte(`<p>x</p>`)}
	data, err := Render(ch, &RenderOptions{Version: config.EpubVersionEpub3, Language: "en", BookTitle: "Book"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<title>Book</title>") {
		t.Errorf("book title not used:\n%s", data)
	}
}

func TestRenderError(t *testing.T) {
	err := error(&RenderError{Chapter: "a.md", Err: errors.New("boom")})
	var re *RenderError
	if !errors.As(err, &re) || !strings.Contains(err.Error(), "a.md") {
		t.Errorf("error = %v", err)
	}
}
