package epub

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mdepub/book"
	"mdepub/css"
)

const resourcesDir = "res"

// ResourceEntry is a single non-chapter file copied into the package.
type ResourceEntry struct {
	// Path is canonical source path relative to the book source root.
	Path      string
	Href      string
	ID        string
	MediaType string
	Refs      int
	// Explicit resources come from book configuration rather than from
	// chapter references.
	Explicit bool
	Data     []byte
	Width    int
	Height   int
}

// ResourceTable deduplicates resources referenced from concurrently
// processed chapters. Href is assigned once on first sighting and never
// changes, data is loaded by whoever created the entry.
type ResourceTable struct {
	fsys fs.FS
	log  *zap.Logger
	// dir holds resources inside the package, relative hrefs under it never
	// resolve to a source file
	dir string

	mu      sync.Mutex
	entries map[string]*ResourceEntry
}

// NewResourceTable creates table for book source. Directories of chapters
// are given so resource directory name does not clash with anything a
// chapter can reference relatively.
func NewResourceTable(fsys fs.FS, log *zap.Logger, chapterDirs ...string) *ResourceTable {
	t := &ResourceTable{
		fsys:    fsys,
		log:     log.Named("resources"),
		dir:     resourceDir(fsys, chapterDirs),
		entries: make(map[string]*ResourceEntry),
	}
	if t.dir != resourcesDir {
		t.log.Debug("Resource directory relocated", zap.String("dir", t.dir))
	}
	return t
}

// resourceDir picks first of "res", "res1", "res2"... which does not exist
// next to any chapter or at the source root.
func resourceDir(fsys fs.FS, chapterDirs []string) string {
	dirs := append([]string{"."}, chapterDirs...)
	for i := 0; ; i++ {
		name := resourcesDir
		if i > 0 {
			name += strconv.Itoa(i)
		}
		taken := false
		for _, d := range dirs {
			if _, err := fs.Stat(fsys, path.Join(d, name)); !errors.Is(err, fs.ErrNotExist) {
				taken = true
				break
			}
		}
		if !taken {
			return name
		}
	}
}

// Dir returns package directory resources are placed into.
func (t *ResourceTable) Dir() string {
	return t.dir
}

func (t *ResourceTable) href(canonical string) string {
	return t.dir + "/" + canonical
}

// Acquire counts occurrence of resource. Caller which gets created == true
// is responsible for loading entry data.
func (t *ResourceTable) Acquire(canonical string) (*ResourceEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[canonical]; ok {
		e.Refs++
		return e, false
	}
	e := &ResourceEntry{Path: canonical, Href: t.href(canonical), Refs: 1}
	t.entries[canonical] = e
	return e, true
}

// Lookup returns entry without counting reference.
func (t *ResourceTable) Lookup(canonical string) (*ResourceEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[canonical]
	return e, ok
}

// Entries returns all entries sorted by href.
func (t *ResourceTable) Entries() []*ResourceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*ResourceEntry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *ResourceEntry) int {
		return strings.Compare(a.Href, b.Href)
	})
	return out
}

func (t *ResourceTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// AddExplicit registers resource named by book configuration.
func (t *ResourceTable) AddExplicit(p string) (*ResourceEntry, error) {
	canonical, ok := book.CleanPath(p)
	if !ok {
		return nil, &DanglingResourceError{Chapter: book.ConfigFileName, Resource: p, Reason: "outside of book source"}
	}
	e, err := t.use(book.ConfigFileName, canonical, "")
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	e.Explicit = true
	t.mu.Unlock()
	return e, nil
}

// use checks that resource exists, counts the reference and loads data on
// first sighting.
func (t *ResourceTable) use(chapter, canonical, via string) (*ResourceEntry, error) {
	info, err := fs.Stat(t.fsys, canonical)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, &DanglingResourceError{Chapter: chapter, Resource: canonical, Via: via, Reason: "no such file"}
	case err != nil:
		return nil, &ResourceReadError{Chapter: chapter, Resource: canonical, Err: err}
	case info.IsDir():
		return nil, &DanglingResourceError{Chapter: chapter, Resource: canonical, Via: via, Reason: "is a directory"}
	}

	e, created := t.Acquire(canonical)
	if !created {
		return e, nil
	}
	if err := t.load(chapter, e); err != nil {
		return nil, err
	}
	return e, nil
}

// load happens outside of the table lock. Stylesheets are scanned for
// references which become resources too.
func (t *ResourceTable) load(chapter string, e *ResourceEntry) error {
	data, err := fs.ReadFile(t.fsys, e.Path)
	if err != nil {
		return &ResourceReadError{Chapter: chapter, Resource: e.Path, Err: err}
	}
	e.Data = data
	e.MediaType = mediaType(e.Path, data)
	t.log.Debug("Resource loaded", zap.String("path", e.Path), zap.String("media-type", e.MediaType), zap.Int("size", len(data)))

	if e.MediaType != "text/css" {
		return nil
	}
	refs, err := css.References(data)
	if err != nil {
		return &ResourceReadError{Chapter: chapter, Resource: e.Path, Err: fmt.Errorf("unable to scan stylesheet: %w", err)}
	}

	var errs []error
	for _, ref := range refs {
		p, _, local, err := splitLocal(ref.URL)
		if !local {
			continue
		}
		if err != nil {
			errs = append(errs, &DanglingResourceError{Chapter: chapter, Resource: ref.URL, Via: e.Path, Reason: err.Error()})
			continue
		}
		if strings.HasPrefix(p, "/") {
			errs = append(errs, &DanglingResourceError{Chapter: chapter, Resource: ref.URL, Via: e.Path, Reason: "rooted url cannot be relocated"})
			continue
		}
		canonical, ok := book.CleanPath(path.Join(path.Dir(e.Path), p))
		if !ok {
			errs = append(errs, &DanglingResourceError{Chapter: chapter, Resource: ref.URL, Via: e.Path, Reason: "outside of book source"})
			continue
		}
		if _, err := t.use(chapter, canonical, e.Path); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

// splitLocal separates local reference into decoded path and escaped
// fragment. Empty, fragment only, network path and absolute URL references
// are not local.
func splitLocal(raw string) (p, fragment string, local bool, err error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "//") {
		return "", "", false, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", true, fmt.Errorf("unable to parse reference: %w", err)
	}
	if len(u.Scheme) > 0 || len(u.Host) > 0 || len(u.Path) == 0 {
		return "", "", false, nil
	}
	return u.Path, u.EscapedFragment(), true, nil
}

// escapeHref turns package path into URL path.
func escapeHref(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// media types readers expect for things filetype cannot sniff or names
// differently
var extMediaTypes = map[string]string{
	".css":   "text/css",
	".svg":   "image/svg+xml",
	".js":    "application/javascript",
	".xhtml": "application/xhtml+xml",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".mp3":   "audio/mpeg",
	".m4a":   "audio/mp4",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
	".vtt":   "text/vtt",
	".txt":   "text/plain",
	".json":  "application/json",
}

func mediaType(name string, data []byte) string {
	if mt, ok := extMediaTypes[strings.ToLower(path.Ext(name))]; ok {
		return mt
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}
