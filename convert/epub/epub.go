// Package epub assembles EPUB packages from loaded books.
package epub

import (
	"context"
	"fmt"
	"path"
	"runtime"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mdepub/book"
	"mdepub/config"
	"mdepub/state"
)

const stylesheetHref = "stylesheet.css"

type generator struct {
	book *book.Book
	cfg  *config.DocumentConfig
	env  *state.LocalEnv
	log  *zap.Logger

	md       *PackageMetadata
	chapters []*LinearChapter
	table    *ResourceTable
	rendered [][]byte

	// hrefs linked from every chapter head
	stylesheets []string
	defaultCSS  []byte
	cover       *ResourceEntry
	explicit    []*ResourceEntry
}

// Generate creates EPUB file for the book. Output appears at outputPath only
// when the whole package has been produced and validated.
func Generate(ctx context.Context, b *book.Book, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g := &generator{
		book: b,
		cfg:  cfg,
		env:  state.EnvFromContext(ctx),
		log:  log.Named("epub"),
	}
	g.log.Info("Generating EPUB", zap.Stringer("version", cfg.EpubVersion), zap.String("output", outputPath))

	var err error
	if g.chapters, err = Linearize(b.Tree); err != nil {
		return err
	}
	if g.md, err = BuildMetadata(b.Config, cfg.Language); err != nil {
		return err
	}

	g.table = NewResourceTable(b.Tree.FS, g.log, chapterDirs(g.chapters)...)
	if err := g.prepareExplicit(); err != nil {
		return err
	}
	if err := g.processChapters(ctx); err != nil {
		return err
	}

	m, guide, err := g.buildManifest()
	if err != nil {
		return err
	}

	refs := References{}
	refs.structural(m)
	for _, e := range g.explicit {
		refs.Add(e.Href, book.ConfigFileName)
	}
	if err := refs.scan(m); err != nil {
		return fmt.Errorf("unable to collect package references: %w", err)
	}
	if err := Validate(m, refs); err != nil {
		return err
	}

	entries, err := g.archiveEntries(m, guide)
	if err != nil {
		return err
	}

	if g.env.Rpt != nil {
		g.env.Rpt.StoreData("book.txt", []byte(b.Dump()))
		g.env.Rpt.StoreData("resources.txt", []byte(g.table.Dump()))
	}

	if err := writeContainer(outputPath, entries, g.md.Modified, cfg.FixZip, g.log); err != nil {
		return err
	}
	g.log.Info("EPUB has been written",
		zap.String("output", outputPath),
		zap.Int("chapters", len(g.chapters)),
		zap.Int("resources", g.table.Len()))
	return nil
}

// prepareExplicit registers resources named by book configuration before any
// chapter is looked at.
func (g *generator) prepareExplicit() error {
	if g.book.Config.UseDefaultCSS() && len(g.env.DefaultStyle) > 0 {
		g.defaultCSS = g.env.DefaultStyle
		g.stylesheets = append(g.stylesheets, stylesheetHref)
	}

	var errs []error
	for _, p := range g.book.Config.Epub.AdditionalCSS {
		e, err := g.table.AddExplicit(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if e.MediaType != "text/css" {
			errs = append(errs, fmt.Errorf("additional css %q is not a stylesheet (%s)", p, e.MediaType))
			continue
		}
		g.stylesheets = append(g.stylesheets, e.Href)
		g.explicit = append(g.explicit, e)
	}
	for _, p := range g.book.Config.Epub.AdditionalResources {
		e, err := g.table.AddExplicit(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.explicit = append(g.explicit, e)
	}
	if p := g.book.Config.Epub.CoverImage; len(p) > 0 {
		e, err := g.table.AddExplicit(p)
		if err == nil {
			err = prepareCover(e, &g.cfg.Cover, g.log)
		}
		if err != nil {
			errs = append(errs, err)
		} else {
			g.cover = e
			g.explicit = append(g.explicit, e)
		}
	}
	return multierr.Combine(errs...)
}

// processChapters resolves and renders chapters in parallel. Every chapter
// is processed even when some fail so all problems are reported at once.
func (g *generator) processChapters(ctx context.Context) error {
	resolver := NewResolver(g.chapters, g.table, g.cfg.Links.Dangling, g.log)
	opts := &RenderOptions{
		Version:     g.cfg.EpubVersion,
		Language:    g.md.Language,
		BookTitle:   g.md.Title,
		Stylesheets: g.stylesheets,
	}

	workers := g.cfg.EffectiveWorkers(runtime.NumCPU())
	g.log.Debug("Processing chapters", zap.Int("chapters", len(g.chapters)), zap.Int("workers", workers))

	g.rendered = make([][]byte, len(g.chapters))
	errs := make([]error, len(g.chapters))

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, ch := range g.chapters {
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := resolver.Resolve(ch); err != nil {
				errs[i] = err
				return nil
			}
			data, err := Render(ch, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			g.rendered[i] = data
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return multierr.Combine(errs...)
}

// buildManifest lays out package in archive order: chapters, generated
// pages, navigation, stylesheet and resources sorted by href.
func (g *generator) buildManifest() (*Manifest, []guideRef, error) {
	version := g.cfg.EpubVersion
	placement := g.cfg.TOCPage.Placement
	tocTitle := g.cfg.TOCPage.Title
	if len(tocTitle) == 0 {
		tocTitle = "Table of Contents"
	}

	nav := BuildNav(g.book.Tree, g.chapters, g.cfg.SectionNumbers)
	m := NewManifest()
	var (
		errs  []error
		guide []guideRef
	)
	add := func(item *ManifestItem) {
		if err := m.Add(item); err != nil {
			errs = append(errs, err)
		}
	}
	spine := func(id string, linear bool) {
		if err := m.AddSpine(id, linear); err != nil {
			errs = append(errs, err)
		}
	}

	for i, ch := range g.chapters {
		add(&ManifestItem{ID: chapterID(ch.Position), Href: ch.Href, MediaType: xhtmlMedia, Data: g.rendered[i]})
	}

	if g.cover != nil {
		data, err := documentBytes(coverPage(g.cover, g.md.Title, version))
		if err != nil {
			return nil, nil, fmt.Errorf("unable to prepare cover page: %w", err)
		}
		item := &ManifestItem{ID: coverPageID, Href: coverPageHref, MediaType: xhtmlMedia, Data: data}
		if version == config.EpubVersionEpub3 {
			item.Properties = []string{"svg"}
		}
		add(item)
		guide = append(guide, guideRef{kind: "cover", title: "Cover", href: coverPageHref})
	}

	tocPageWanted := placement != config.TOCPagePlacementNone
	if version == config.EpubVersionEpub2 && tocPageWanted {
		doc := tocPage(nav, g.md, tocTitle, g.stylesheets)
		doc.Indent(2)
		data, err := documentBytes(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to prepare toc page: %w", err)
		}
		add(&ManifestItem{ID: tocPageID, Href: tocPageHref, MediaType: xhtmlMedia, Data: data})
		guide = append(guide, guideRef{kind: "toc", title: tocTitle, href: tocPageHref})
	}

	if version == config.EpubVersionEpub3 {
		doc := navDocument(nav, g.md, tocTitle, g.cover != nil, g.stylesheets)
		doc.Indent(2)
		data, err := documentBytes(doc)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to prepare navigation document: %w", err)
		}
		add(&ManifestItem{ID: navID, Href: navHref, MediaType: xhtmlMedia, Properties: []string{"nav"}, Data: data})
	}

	doc := ncxDocument(nav, g.md)
	doc.Indent(2)
	data, err := documentBytes(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to prepare NCX: %w", err)
	}
	add(&ManifestItem{ID: ncxID, Href: ncxHref, MediaType: ncxMedia, Data: data})
	m.TOC = ncxID

	if g.defaultCSS != nil {
		add(&ManifestItem{ID: "stylesheet", Href: stylesheetHref, MediaType: "text/css", Data: g.defaultCSS})
	}

	for i, e := range g.table.Entries() {
		item := &ManifestItem{ID: fmt.Sprintf("res-%04d", i), Href: e.Href, MediaType: e.MediaType, Data: e.Data}
		if e == g.cover {
			item.ID = coverImageID
			item.Properties = []string{"cover-image"}
		}
		e.ID = item.ID
		add(item)
	}

	// spine
	if g.cover != nil {
		spine(coverPageID, true)
	}
	tocSpine := func() {
		switch version {
		case config.EpubVersionEpub3:
			spine(navID, false)
		default:
			spine(tocPageID, true)
		}
	}
	if tocPageWanted && placement == config.TOCPagePlacementBefore {
		tocSpine()
	}
	for _, ch := range g.chapters {
		spine(chapterID(ch.Position), true)
	}
	if tocPageWanted && placement == config.TOCPagePlacementAfter {
		tocSpine()
	}
	guide = append(guide, guideRef{kind: "text", title: "Start", href: g.chapters[0].Href})

	if err := multierr.Combine(errs...); err != nil {
		return nil, nil, fmt.Errorf("unable to build manifest: %w", err)
	}
	return m, guide, nil
}

func (g *generator) archiveEntries(m *Manifest, guide []guideRef) ([]archiveEntry, error) {
	container, err := documentBytes(containerDocument())
	if err != nil {
		return nil, fmt.Errorf("unable to prepare container: %w", err)
	}
	coverID := ""
	if g.cover != nil {
		coverID = coverImageID
	}
	opf, err := documentBytes(packageDocument(m, g.md, g.cfg.EpubVersion, coverID, guide))
	if err != nil {
		return nil, fmt.Errorf("unable to prepare package document: %w", err)
	}

	entries := make([]archiveEntry, 0, len(m.Items)+2)
	entries = append(entries,
		archiveEntry{name: containerPath, data: container},
		archiveEntry{name: path.Join(oebpsDir, opfHref), data: opf},
	)
	for _, item := range m.Items {
		entries = append(entries, archiveEntry{name: path.Join(oebpsDir, item.Href), data: item.Data})
	}
	return entries, nil
}
