package epub

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"mdepub/config"
)

const (
	xhtmlNS    = "http://www.w3.org/1999/xhtml"
	opsNS      = "http://www.idpf.org/2007/ops"
	svgNS      = "http://www.w3.org/2000/svg"
	mathNS     = "http://www.w3.org/1998/Math/MathML"
	xlinkNS    = "http://www.w3.org/1999/xlink"
	xhtmlMedia = "application/xhtml+xml"

	xhtml11Doctype = `DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd"`
)

// RenderOptions are book wide parameters of chapter documents.
type RenderOptions struct {
	Version     config.EpubVersion
	Language    string
	BookTitle   string
	Stylesheets []string
}

var (
	xmlNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)
	xmlQNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*(:[A-Za-z_][A-Za-z0-9_.\-]*)?$`)
)

// Render produces complete XHTML document for resolved chapter. Result is
// parsed back to make sure it is well formed.
func Render(ch *LinearChapter, opts *RenderOptions) ([]byte, error) {
	root, err := parseFragment(ch.Body)
	if err != nil {
		return nil, &RenderError{Chapter: ch.Source, Err: err}
	}

	doc, head, body := newXHTMLDocument(opts.Version, opts.Language)
	for _, href := range opts.Stylesheets {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "stylesheet")
		link.CreateAttr("type", "text/css")
		link.CreateAttr("href", escapeHref(href))
	}
	title := ch.Title
	if len(title) == 0 {
		title = opts.BookTitle
	}
	head.CreateElement("title").SetText(title)

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		appendHTML(body, c, opts.Version, "")
	}

	data, err := documentBytes(doc)
	if err != nil {
		return nil, &RenderError{Chapter: ch.Source, Err: err}
	}
	if err := etree.NewDocument().ReadFromBytes(data); err != nil {
		return nil, &RenderError{Chapter: ch.Source, Err: fmt.Errorf("produced document is not well formed: %w", err)}
	}
	return data, nil
}

func newXHTMLDocument(version config.EpubVersion, lang string) (*etree.Document, *etree.Element, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	if version == config.EpubVersionEpub2 {
		doc.CreateDirective(xhtml11Doctype)
	}

	root := doc.CreateElement("html")
	root.CreateAttr("xmlns", xhtmlNS)
	if version == config.EpubVersionEpub3 {
		root.CreateAttr("xmlns:epub", opsNS)
	}
	if len(lang) > 0 {
		root.CreateAttr("xml:lang", lang)
		if version == config.EpubVersionEpub3 {
			root.CreateAttr("lang", lang)
		}
	}

	head := root.CreateElement("head")
	meta := head.CreateElement("meta")
	if version == config.EpubVersionEpub3 {
		meta.CreateAttr("charset", "utf-8")
	} else {
		meta.CreateAttr("http-equiv", "Content-Type")
		meta.CreateAttr("content", "text/html; charset=utf-8")
	}

	body := root.CreateElement("body")
	return doc, head, body
}

// appendHTML copies parsed HTML node into XML tree. Foreign content gets its
// namespace declared on the outermost element, things XML cannot express are
// dropped.
func appendHTML(parent *etree.Element, n *html.Node, version config.EpubVersion, ns string) {
	switch n.Type {
	case html.TextNode:
		parent.CreateText(xmlSafe(n.Data))
	case html.CommentNode:
		if !strings.Contains(n.Data, "--") && !strings.HasSuffix(n.Data, "-") {
			parent.CreateComment(xmlSafe(n.Data))
		}
	case html.ElementNode:
		if !xmlNameRe.MatchString(n.Data) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				appendHTML(parent, c, version, ns)
			}
			return
		}
		el := parent.CreateElement(n.Data)
		if n.Namespace != ns {
			switch n.Namespace {
			case "svg":
				el.CreateAttr("xmlns", svgNS)
				el.CreateAttr("xmlns:xlink", xlinkNS)
			case "math":
				el.CreateAttr("xmlns", mathNS)
			case "":
				el.CreateAttr("xmlns", xhtmlNS)
			}
		}
		for _, a := range n.Attr {
			if key, ok := attrName(a, version); ok {
				el.CreateAttr(key, xmlSafe(a.Val))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendHTML(el, c, version, n.Namespace)
		}
	}
}

func attrName(a html.Attribute, version config.EpubVersion) (string, bool) {
	key := a.Key
	switch a.Namespace {
	case "":
	case "xlink", "xml":
		key = a.Namespace + ":" + a.Key
	default:
		// namespace declarations are produced by appendHTML itself
		return "", false
	}
	if key == "xmlns" || !xmlQNameRe.MatchString(key) {
		return "", false
	}
	if prefix, _, found := strings.Cut(key, ":"); found {
		switch prefix {
		case "xml", "xlink":
		case "epub":
			if version != config.EpubVersionEpub3 {
				return "", false
			}
		default:
			return "", false
		}
	}
	return key, true
}

// xmlSafe drops characters which are not allowed in XML documents.
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return -1
		case r >= 0xD800 && r <= 0xDFFF:
			return -1
		}
		return r
	}, s)
}

func parseFragment(body []byte) (*html.Node, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(body), root)
	if err != nil {
		return nil, fmt.Errorf("unable to parse body fragment: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func renderFragment(root *html.Node) ([]byte, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("unable to serialize body fragment: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func documentBytes(doc *etree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
