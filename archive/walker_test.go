package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testEntry struct {
	name    string
	content string
	store   bool
}

const (
	testContainer = `<?xml version="1.0"?><container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container"><rootfiles><rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`
	testPackage   = `<?xml version="1.0"?><package xmlns="http://www.idpf.org/2007/opf" version="3.0"><manifest><item id="c" href="chapter%20one.xhtml" media-type="application/xhtml+xml"/></manifest></package>`
)

func validEntries() []testEntry {
	return []testEntry{
		{name: "mimetype", content: "application/epub+zip", store: true},
		{name: "META-INF/container.xml", content: testContainer},
		{name: "OEBPS/content.opf", content: testPackage},
		{name: "OEBPS/chapter one.xhtml", content: "<html/>"},
	}
}

func writeTestZip(t *testing.T, entries []testEntry) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		if e.store {
			data := []byte(e.content)
			fw, err := w.CreateRaw(&zip.FileHeader{
				Name:               e.name,
				Method:             zip.Store,
				CRC32:              crc32.ChecksumIEEE(data),
				CompressedSize64:   uint64(len(data)),
				UncompressedSize64: uint64(len(data)),
			})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := fw.Write(data); err != nil {
				t.Fatal(err)
			}
			continue
		}
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	name := filepath.Join(t.TempDir(), "test.epub")
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func TestWalk(t *testing.T) {
	name := writeTestZip(t, validEntries())
	r, err := zip.OpenReader(name)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	t.Run("prefix", func(t *testing.T) {
		var visited []string
		if err := Walk(&r.Reader, "OEBPS/", func(f *zip.File) error {
			visited = append(visited, f.Name)
			return nil
		}); err != nil {
			t.Fatalf("Walk() error = %v", err)
		}
		if strings.Join(visited, ",") != "OEBPS/content.opf,OEBPS/chapter one.xhtml" {
			t.Errorf("visited = %v", visited)
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := Walk(&r.Reader, "", func(*zip.File) error {
			count++
			return stop
		})
		if !errors.Is(err, stop) || count != 1 {
			t.Errorf("err = %v, count = %d", err, count)
		}
	})

	t.Run("unsafe path", func(t *testing.T) {
		bad := writeTestZip(t, []testEntry{{name: "../evil.txt", content: "x"}})
		br, err := zip.OpenReader(bad)
		if err != nil {
			t.Fatal(err)
		}
		defer br.Close()
		if err := Walk(&br.Reader, "", func(*zip.File) error { return nil }); err == nil || !strings.Contains(err.Error(), "unsafe path") {
			t.Errorf("err = %v", err)
		}
	})
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"OEBPS/a.xhtml", true},
		{"a..b/c", true},
		{"/etc/passwd", false},
		{`\windows`, false},
		{"a/../../b", false},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.path); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func([]testEntry) []testEntry
		problems []string
	}{
		{name: "valid", mutate: func(e []testEntry) []testEntry { return e }},
		{
			name:     "mimetype not first",
			mutate:   func(e []testEntry) []testEntry { return append(e[1:], e[0]) },
			problems: []string{"first entry is not mimetype"},
		},
		{
			name: "mimetype compressed",
			mutate: func(e []testEntry) []testEntry {
				e[0].store = false
				return e
			},
			problems: []string{"mimetype is compressed"},
		},
		{
			name:     "missing item",
			mutate:   func(e []testEntry) []testEntry { return e[:3] },
			problems: []string{`manifest item "c" (chapter one.xhtml) is not in archive`},
		},
		{
			name:     "no container",
			mutate:   func(e []testEntry) []testEntry { return []testEntry{e[0], e[2], e[3]} },
			problems: []string{"no META-INF/container.xml"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Inspect(writeTestZip(t, tt.mutate(validEntries())))
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if strings.Join(s.Problems, "; ") != strings.Join(tt.problems, "; ") {
				t.Errorf("problems = %q, want %q", s.Problems, tt.problems)
			}
			if len(s.Entries) == 0 {
				t.Error("no entries listed")
			}
		})
	}
}

func TestInspect_NotZip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "x.epub")
	if err := os.WriteFile(name, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Inspect(name); err == nil {
		t.Error("expected error")
	}
}
