package epub

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"mdepub/book"
	"mdepub/config"
)

const (
	navHref     = "nav.xhtml"
	navID       = "nav"
	ncxHref     = "toc.ncx"
	ncxID       = "ncx"
	ncxMedia    = "application/x-dtbncx+xml"
	tocPageHref = "toc.xhtml"
	tocPageID   = "toc-page"
)

// NavNode is navigation entry. Separators have empty Href and share
// PlayOrder with their first linked descendant, 0 when there is none.
type NavNode struct {
	// ID is unique among all entries, pre-order index
	ID        int
	Label     string
	Href      string
	PlayOrder int
	Depth     int
	Children  []*NavNode
}

// BuildNav mirrors book tree, chapters point to their package documents.
func BuildNav(tree *book.Tree, chapters []*LinearChapter, sectionNumbers bool) []*NavNode {
	hrefs := make(map[book.NodeID]string, len(chapters))
	for _, ch := range chapters {
		hrefs[ch.Node] = ch.Href
	}

	var seq, order int
	var build func(ids []book.NodeID) []*NavNode
	build = func(ids []book.NodeID) []*NavNode {
		var out []*NavNode
		for _, id := range ids {
			n := tree.Node(id)
			seq++
			nav := &NavNode{ID: seq, Depth: n.Depth, Label: navLabel(n, sectionNumbers)}
			if href, ok := hrefs[id]; ok {
				order++
				nav.Href, nav.PlayOrder = href, order
			}
			nav.Children = build(n.Children)
			if len(nav.Href) == 0 {
				if first := firstLinked(nav.Children); first != nil {
					nav.PlayOrder = first.PlayOrder
				}
			}
			out = append(out, nav)
		}
		return out
	}
	return build(tree.Top())
}

func navLabel(n *book.Node, sectionNumbers bool) string {
	label := n.Title
	if !n.IsSeparator() {
		label = chapterTitle(n)
	}
	if sectionNumbers && len(n.Number) > 0 {
		label = n.SectionNumber() + " " + label
	}
	return label
}

func firstLinked(nodes []*NavNode) *NavNode {
	for _, n := range nodes {
		if len(n.Href) > 0 {
			return n
		}
		if first := firstLinked(n.Children); first != nil {
			return first
		}
	}
	return nil
}

// navList builds nested ordered list, it is used by both nav document and
// EPUB2 table of contents page. Separators without any linked descendant
// are left out, list item must have either a link or a nested list.
func navList(parent *etree.Element, nodes []*NavNode) {
	var ol *etree.Element
	for _, n := range nodes {
		if len(n.Href) == 0 && firstLinked(n.Children) == nil {
			continue
		}
		if ol == nil {
			ol = parent.CreateElement("ol")
		}
		li := ol.CreateElement("li")
		li.CreateAttr("id", "toc-"+strconv.Itoa(n.ID))
		if len(n.Href) > 0 {
			a := li.CreateElement("a")
			a.CreateAttr("href", n.Href)
			a.SetText(n.Label)
		} else {
			li.CreateElement("span").SetText(n.Label)
		}
		navList(li, n.Children)
	}
}

func navDocument(nodes []*NavNode, md *PackageMetadata, title string, cover bool, stylesheets []string) *etree.Document {
	doc, head, body := newXHTMLDocument(config.EpubVersionEpub3, md.Language)
	for _, href := range stylesheets {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "stylesheet")
		link.CreateAttr("type", "text/css")
		link.CreateAttr("href", escapeHref(href))
	}
	head.CreateElement("title").SetText(title)

	nav := body.CreateElement("nav")
	nav.CreateAttr("epub:type", "toc")
	nav.CreateAttr("id", "toc")
	nav.CreateAttr("role", "doc-toc")
	nav.CreateElement("h1").SetText(title)
	navList(nav, nodes)

	landmarks := body.CreateElement("nav")
	landmarks.CreateAttr("epub:type", "landmarks")
	landmarks.CreateAttr("id", "landmarks")
	landmarks.CreateAttr("hidden", "")
	landmarks.CreateElement("h2").SetText("Landmarks")
	ol := landmarks.CreateElement("ol")
	if cover {
		landmark(ol, "cover", coverPageHref, "Cover")
	}
	landmark(ol, "toc", navHref, title)
	if first := firstLinked(nodes); first != nil {
		landmark(ol, "bodymatter", first.Href, "Start")
	}
	return doc
}

func landmark(ol *etree.Element, kind, href, text string) {
	a := ol.CreateElement("li").CreateElement("a")
	a.CreateAttr("epub:type", kind)
	a.CreateAttr("href", href)
	a.SetText(text)
}

// tocPage is readable table of contents for EPUB2 readers.
func tocPage(nodes []*NavNode, md *PackageMetadata, title string, stylesheets []string) *etree.Document {
	doc, head, body := newXHTMLDocument(config.EpubVersionEpub2, md.Language)
	for _, href := range stylesheets {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "stylesheet")
		link.CreateAttr("type", "text/css")
		link.CreateAttr("href", escapeHref(href))
	}
	head.CreateElement("title").SetText(title)

	div := body.CreateElement("div")
	div.CreateAttr("class", "toc")
	div.CreateElement("h1").SetText(title)
	navList(div, nodes)
	return doc
}

// ncxDocument produces NCX. Separator points to its first linked
// descendant, separators without any are left out with their subtree.
func ncxDocument(nodes []*NavNode, md *PackageMetadata) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")
	ncx.CreateAttr("xml:lang", md.Language)

	head := ncx.CreateElement("head")
	meta := head.CreateElement("meta")
	meta.CreateAttr("name", "dtb:uid")
	meta.CreateAttr("content", md.Identifier)
	meta = head.CreateElement("meta")
	meta.CreateAttr("name", "dtb:depth")
	meta.CreateAttr("content", strconv.Itoa(max(ncxDepth(nodes), 1)))
	meta = head.CreateElement("meta")
	meta.CreateAttr("name", "dtb:totalPageCount")
	meta.CreateAttr("content", "0")
	meta = head.CreateElement("meta")
	meta.CreateAttr("name", "dtb:maxPageNumber")
	meta.CreateAttr("content", "0")

	ncx.CreateElement("docTitle").CreateElement("text").SetText(md.Title)
	for _, a := range md.Authors {
		ncx.CreateElement("docAuthor").CreateElement("text").SetText(a)
	}

	navPoints(ncx.CreateElement("navMap"), nodes)
	return doc
}

func navPoints(parent *etree.Element, nodes []*NavNode) {
	for _, n := range nodes {
		src := n.Href
		if len(src) == 0 {
			first := firstLinked(n.Children)
			if first == nil {
				continue
			}
			src = first.Href
		}
		np := parent.CreateElement("navPoint")
		np.CreateAttr("id", fmt.Sprintf("navpoint-%d", n.ID))
		np.CreateAttr("playOrder", strconv.Itoa(n.PlayOrder))
		np.CreateElement("navLabel").CreateElement("text").SetText(n.Label)
		np.CreateElement("content").CreateAttr("src", src)
		navPoints(np, n.Children)
	}
}

// ncxDepth counts levels of entries which make it into NCX.
func ncxDepth(nodes []*NavNode) int {
	depth := 0
	for _, n := range nodes {
		if len(n.Href) == 0 && firstLinked(n.Children) == nil {
			continue
		}
		depth = max(depth, 1+ncxDepth(n.Children))
	}
	return depth
}
