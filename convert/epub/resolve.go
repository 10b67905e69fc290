package epub

import (
	"errors"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"mdepub/book"
	"mdepub/config"
)

// extensions of link targets which are considered to be chapters
var chapterExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".xhtml":    true,
}

// element name -> attributes holding references
var refAttrs = map[string][]string{
	"a":      {"href"},
	"area":   {"href"},
	"img":    {"src"},
	"image":  {"href"},
	"link":   {"href"},
	"script": {"src"},
	"source": {"src"},
	"audio":  {"src"},
	"video":  {"src", "poster"},
	"track":  {"src"},
	"embed":  {"src"},
	"iframe": {"src"},
	"object": {"data"},
}

const refSelector = "a, area, img, image, link, script, source, audio, video, track, embed, iframe, object"

// Resolver rewrites references in chapter bodies to package hrefs. It is
// safe to use from multiple goroutines as long as every chapter is resolved
// by a single one.
type Resolver struct {
	// source path -> chapter href
	paths map[string]string
	// source path without extension -> chapter sources having it
	stems map[string][]string
	// package documents links may already point to
	documents map[string]bool
	table     *ResourceTable
	policy    config.LinkPolicy
	log       *zap.Logger
}

func NewResolver(chapters []*LinearChapter, table *ResourceTable, policy config.LinkPolicy, log *zap.Logger) *Resolver {
	r := &Resolver{
		paths:     make(map[string]string, len(chapters)),
		stems:     make(map[string][]string, len(chapters)),
		documents: map[string]bool{navHref: true, coverPageHref: true, tocPageHref: true},
		table:     table,
		policy:    policy,
		log:       log.Named("resolver"),
	}
	for _, ch := range chapters {
		r.paths[ch.Source] = ch.Href
		r.stems[stem(ch.Source)] = append(r.stems[stem(ch.Source)], ch.Source)
		r.documents[ch.Href] = true
	}
	// README is rendered as index page of its directory
	for _, ch := range chapters {
		if !strings.EqualFold(path.Base(stem(ch.Source)), "readme") {
			continue
		}
		index := path.Join(path.Dir(ch.Source), "index")
		if _, ok := r.stems[index]; !ok {
			r.stems[index] = []string{ch.Source}
		}
	}
	return r
}

// lookup finds chapter by exact source path, then by path without
// extension. Stem shared by several chapters gives no match.
func (r *Resolver) lookup(canonical string) (href, reason string) {
	if href, ok := r.paths[canonical]; ok {
		return href, ""
	}
	switch sources := r.stems[stem(canonical)]; len(sources) {
	case 0:
		return "", ""
	case 1:
		return r.paths[sources[0]], ""
	default:
		return "", "ambiguous, matches " + strings.Join(sources, ", ")
	}
}

func stem(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

func withFragment(href, fragment string) string {
	if len(fragment) == 0 {
		return href
	}
	return href + "#" + fragment
}

// Resolve rewrites chapter body in place and records resources the chapter
// depends on. All problems found in the chapter are reported together.
func (r *Resolver) Resolve(ch *LinearChapter) error {
	root, err := parseFragment(ch.Body)
	if err != nil {
		return &RenderError{Chapter: ch.Source, Err: err}
	}

	used := make(map[string]struct{})
	var errs []error
	goquery.NewDocumentFromNode(root).Find(refSelector).Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		for _, key := range refAttrs[n.Data] {
			idx := attrIndex(n, key)
			if idx < 0 {
				continue
			}
			link := key == "href" && (n.Data == "a" || n.Data == "area")
			if err := r.rewrite(ch, n, idx, link, used); err != nil {
				errs = append(errs, err)
			}
		}
	})

	body, err := renderFragment(root)
	if err != nil {
		return &RenderError{Chapter: ch.Source, Err: err}
	}
	ch.Body = body

	ch.Resources = make([]string, 0, len(used))
	for p := range used {
		ch.Resources = append(ch.Resources, p)
	}
	slices.Sort(ch.Resources)
	return multierr.Combine(errs...)
}

// attrIndex finds attribute ignoring xlink namespace SVG uses for href.
func attrIndex(n *html.Node, key string) int {
	for i, a := range n.Attr {
		if a.Key == key && (len(a.Namespace) == 0 || a.Namespace == "xlink") {
			return i
		}
	}
	return -1
}

func (r *Resolver) rewrite(ch *LinearChapter, n *html.Node, idx int, link bool, used map[string]struct{}) error {
	raw := n.Attr[idx].Val
	p, fragment, local, err := splitLocal(raw)
	if !local {
		return nil
	}
	if link && (err != nil || chapterExts[strings.ToLower(path.Ext(p))]) {
		return r.rewriteLink(ch, n, idx, raw, p, fragment, err)
	}
	if err != nil {
		return &DanglingResourceError{Chapter: ch.Source, Resource: raw, Reason: err.Error()}
	}
	return r.rewriteResource(ch, n, idx, raw, p, fragment, used)
}

func (r *Resolver) rewriteLink(ch *LinearChapter, n *html.Node, idx int, raw, p, fragment string, parseErr error) error {
	var reason string
	if parseErr == nil {
		if r.documents[p] {
			return nil
		}
		if canonical, ok := relative(ch.Source, p); ok {
			var href string
			if href, reason = r.lookup(canonical); len(href) > 0 {
				n.Attr[idx].Val = withFragment(href, fragment)
				return nil
			}
		}
	}
	if r.policy == config.LinkPolicyInert {
		r.log.Warn("Dangling link made inert", zap.String("chapter", ch.Source), zap.String("target", raw), zap.String("reason", reason))
		n.Attr = slices.Delete(n.Attr, idx, idx+1)
		return nil
	}
	return &DanglingLinkError{Chapter: ch.Source, Target: raw, Reason: reason}
}

func (r *Resolver) rewriteResource(ch *LinearChapter, n *html.Node, idx int, raw, p, fragment string, used map[string]struct{}) error {
	canonical, ok := relative(ch.Source, p)
	if ok {
		_, err := fs.Stat(r.table.fsys, canonical)
		if !errors.Is(err, fs.ErrNotExist) {
			e, err := r.table.use(ch.Source, canonical, "")
			if err != nil {
				return err
			}
			used[e.Path] = struct{}{}
			n.Attr[idx].Val = withFragment(escapeHref(e.Href), fragment)
			return nil
		}
	}

	// reference produced by earlier rewrite
	if p == stylesheetHref || r.documents[p] {
		return nil
	}
	if rest, found := strings.CutPrefix(p, r.table.Dir()+"/"); found {
		if e, known := r.table.Lookup(rest); known {
			used[e.Path] = struct{}{}
			return nil
		}
	}

	reason := "no such file"
	if !ok {
		reason = "outside of book source"
	}
	return &DanglingResourceError{Chapter: ch.Source, Resource: raw, Reason: reason}
}

// relative resolves reference against directory of the chapter, rooted
// references start at the source root.
func relative(from, p string) (string, bool) {
	if !strings.HasPrefix(p, "/") {
		p = path.Join(path.Dir(from), p)
	}
	return book.CleanPath(p)
}
