package epub

import (
	"errors"
	"slices"
	"testing"
)

func TestManifest_Add(t *testing.T) {
	m := NewManifest()
	if err := m.Add(&ManifestItem{ID: "a", Href: "a.xhtml", MediaType: xhtmlMedia, Data: []byte{}}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		name string
		item *ManifestItem
	}{
		{"duplicate id", &ManifestItem{ID: "a", Href: "b.xhtml", Data: []byte{}}},
		{"duplicate href", &ManifestItem{ID: "b", Href: "a.xhtml", Data: []byte{}}},
		{"no data", &ManifestItem{ID: "c", Href: "c.xhtml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Add(tt.item); err == nil {
				t.Error("expected error")
			}
		})
	}
	if len(m.Items) != 1 {
		t.Errorf("manifest has %d items after failures", len(m.Items))
	}
	if err := m.AddSpine("missing", true); err == nil {
		t.Error("spine accepted unknown id")
	}
	if _, ok := m.ByHref("a.xhtml"); !ok {
		t.Error("ByHref failed")
	}
}

func TestValidate(t *testing.T) {
	chapter := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><link rel="stylesheet" href="res/css/s.css"/></head>
<body><img src="res/img/a%20b.png"/><a href="https://example.com/">x</a><a href="#top">t</a>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"><image xlink:href="res/img/c.png"/></svg></body></html>`)
	css := []byte(`@font-face { src: url(../fonts/f.woff) }`)

	build := func(extra ...*ManifestItem) *Manifest {
		m := NewManifest()
		items := []*ManifestItem{
			{ID: "chapter-0000", Href: "chapter-0000.xhtml", MediaType: xhtmlMedia, Data: chapter},
			{ID: "res-0000", Href: "res/css/s.css", MediaType: "text/css", Data: css},
			{ID: "res-0001", Href: "res/fonts/f.woff", MediaType: "font/woff", Data: []byte{}},
			{ID: "res-0002", Href: "res/img/a b.png", MediaType: "image/png", Data: []byte{}},
			{ID: "res-0003", Href: "res/img/c.png", MediaType: "image/png", Data: []byte{}},
		}
		for _, it := range append(items, extra...) {
			if err := m.Add(it); err != nil {
				t.Fatal(err)
			}
		}
		if err := m.AddSpine("chapter-0000", true); err != nil {
			t.Fatal(err)
		}
		return m
	}
	collect := func(m *Manifest) References {
		refs := References{}
		refs.structural(m)
		if err := refs.scan(m); err != nil {
			t.Fatalf("scan: %v", err)
		}
		return refs
	}

	t.Run("consistent", func(t *testing.T) {
		m := build()
		if err := Validate(m, collect(m)); err != nil {
			t.Fatalf("Validate: %v", err)
		}
	})

	t.Run("unused and undeclared", func(t *testing.T) {
		m := build(&ManifestItem{ID: "res-0004", Href: "res/orphan.png", MediaType: "image/png", Data: []byte{}})
		refs := collect(m)
		refs.Add("res/ghost.png", "test")

		var mce *ManifestConsistencyError
		if err := Validate(m, refs); !errors.As(err, &mce) {
			t.Fatalf("error = %v, want ManifestConsistencyError", err)
		}
		if !slices.Equal(mce.Unused, []string{"res/orphan.png"}) || !slices.Equal(mce.Undeclared, []string{"res/ghost.png"}) {
			t.Errorf("error = %+v", mce)
		}
	})
}
