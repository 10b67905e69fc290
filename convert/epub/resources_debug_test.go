package epub

import (
	"testing"
	"testing/fstest"
)

func TestResourceTable_Dump(t *testing.T) {
	files := fstest.MapFS{
		"img/fig9.svg":  {Data: []byte("<svg/>")},
		"img/fig10.svg": {Data: []byte("<svg/>")},
		"fonts/a.woff":  {Data: []byte("wOFF")},
	}
	table := NewResourceTable(files, setupTestLogger(t))
	for _, p := range []string{"img/fig10.svg", "img/fig9.svg", "img/fig10.svg"} {
		if _, err := table.use("a.md", p, ""); err != nil {
			t.Fatalf("use(%q): %v", p, err)
		}
	}
	if _, err := table.AddExplicit("fonts/a.woff"); err != nil {
		t.Fatalf("AddExplicit: %v", err)
	}

	want := `Resources: 3
  Directory: res
  Resource["fonts/a.woff"] id[""] href["res/fonts/a.woff"] mime["font/woff"] size[4] refs[1]
  Resource["img/fig9.svg"] id[""] href["res/img/fig9.svg"] mime["image/svg+xml"] size[6] refs[1]
  Resource["img/fig10.svg"] id[""] href["res/img/fig10.svg"] mime["image/svg+xml"] size[6] refs[2]
  Explicit (1)
    fonts/a.woff
`
	if got := table.Dump(); got != want {
		t.Errorf("Dump() =\n%s\nwant:\n%s", got, want)
	}
}
