package epub

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"mdepub/css"
)

// ManifestItem is a single file of the package. Data is exactly what goes
// into the archive under OEBPS/Href.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
	Data       []byte
}

type SpineItem struct {
	IDRef  string
	Linear bool
}

// Manifest keeps items in archive order.
type Manifest struct {
	Items []*ManifestItem
	Spine []SpineItem
	// TOC is id of NCX item referenced from spine.
	TOC string

	byHref map[string]*ManifestItem
	byID   map[string]*ManifestItem
}

func NewManifest() *Manifest {
	return &Manifest{
		byHref: make(map[string]*ManifestItem),
		byID:   make(map[string]*ManifestItem),
	}
}

func (m *Manifest) Add(item *ManifestItem) error {
	if _, exists := m.byID[item.ID]; exists {
		return fmt.Errorf("duplicate manifest id %q", item.ID)
	}
	if other, exists := m.byHref[item.Href]; exists {
		return fmt.Errorf("manifest href %q is used by %q and %q", item.Href, other.ID, item.ID)
	}
	if item.Data == nil {
		return fmt.Errorf("manifest item %q has no content", item.ID)
	}
	m.Items = append(m.Items, item)
	m.byHref[item.Href] = item
	m.byID[item.ID] = item
	return nil
}

func (m *Manifest) AddSpine(id string, linear bool) error {
	if _, exists := m.byID[id]; !exists {
		return fmt.Errorf("spine references unknown manifest id %q", id)
	}
	m.Spine = append(m.Spine, SpineItem{IDRef: id, Linear: linear})
	return nil
}

func (m *Manifest) ByID(id string) (*ManifestItem, bool) {
	item, ok := m.byID[id]
	return item, ok
}

func (m *Manifest) ByHref(href string) (*ManifestItem, bool) {
	item, ok := m.byHref[href]
	return item, ok
}

// References maps package href to the list of places referring to it.
type References map[string][]string

func (r References) Add(href, from string) {
	r[href] = append(r[href], from)
}

// structural records references which are not expressed as links inside
// documents.
func (r References) structural(m *Manifest) {
	for _, it := range m.Spine {
		if item, ok := m.byID[it.IDRef]; ok {
			r.Add(item.Href, "spine")
		}
	}
	if item, ok := m.byID[m.TOC]; ok && len(m.TOC) > 0 {
		r.Add(item.Href, "spine toc")
	}
	for _, item := range m.Items {
		for _, p := range item.Properties {
			switch p {
			case "nav", "cover-image":
				r.Add(item.Href, "properties "+p)
			}
		}
	}
}

// scan collects references found in manifest items: every attribute of XML
// documents which may carry URL and url() or @import of stylesheets.
func (r References) scan(m *Manifest) error {
	for _, item := range m.Items {
		switch item.MediaType {
		case xhtmlMedia, ncxMedia:
			doc := etree.NewDocument()
			if err := doc.ReadFromBytes(item.Data); err != nil {
				return fmt.Errorf("unable to parse %q: %w", item.Href, err)
			}
			for _, el := range doc.FindElements("//*") {
				for _, a := range el.Attr {
					if refAttrKeys[a.Key] && (len(a.Space) == 0 || a.Space == "xlink") {
						r.addLocal(item.Href, a.Value)
					}
				}
			}
		case "text/css":
			refs, err := css.References(item.Data)
			if err != nil {
				return fmt.Errorf("unable to scan %q: %w", item.Href, err)
			}
			for _, ref := range refs {
				r.addLocal(item.Href, ref.URL)
			}
		}
	}
	return nil
}

var refAttrKeys = map[string]bool{"href": true, "src": true, "poster": true, "data": true}

func (r References) addLocal(from, raw string) {
	p, _, local, err := splitLocal(raw)
	if !local {
		return
	}
	if err != nil {
		r.Add(raw, from)
		return
	}
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir(from), p)
	}
	r.Add(path.Clean(strings.TrimPrefix(p, "/")), from)
}

// Validate makes sure that declared and referenced sets of hrefs are the
// same.
func Validate(m *Manifest, refs References) error {
	var undeclared, unused []string
	for href := range refs {
		if _, ok := m.byHref[href]; !ok {
			undeclared = append(undeclared, href)
		}
	}
	for _, item := range m.Items {
		if len(refs[item.Href]) == 0 {
			unused = append(unused, item.Href)
		}
	}
	if len(undeclared) == 0 && len(unused) == 0 {
		return nil
	}
	slices.Sort(undeclared)
	slices.Sort(unused)
	return &ManifestConsistencyError{Undeclared: undeclared, Unused: unused}
}
