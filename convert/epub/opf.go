package epub

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"mdepub/config"
	"mdepub/misc"
)

const (
	opfHref    = "content.opf"
	bookIDAttr = "BookId"
)

// guideRef is EPUB2 guide entry.
type guideRef struct {
	kind, title, href string
}

func packageDocument(m *Manifest, md *PackageMetadata, version config.EpubVersion, coverID string, guide []guideRef) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("unique-identifier", bookIDAttr)
	pkg.CreateAttr("version", version.OPF())
	if version == config.EpubVersionEpub3 {
		pkg.CreateAttr("xml:lang", md.Language)
	}

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	metadata.CreateAttr("xmlns:opf", "http://www.idpf.org/2007/opf")

	dcID := metadata.CreateElement("dc:identifier")
	dcID.CreateAttr("id", bookIDAttr)
	if version == config.EpubVersionEpub2 && strings.HasPrefix(md.Identifier, uuidURNPrefix) {
		dcID.CreateAttr("opf:scheme", "UUID")
	}
	dcID.SetText(md.Identifier)

	metadata.CreateElement("dc:title").SetText(md.Title)
	metadata.CreateElement("dc:language").SetText(md.Language)

	for idx, author := range md.Authors {
		creator := metadata.CreateElement("dc:creator")
		creator.SetText(author)
		// EPUB3 uses <meta property="role"> with refines, EPUB2 uses opf:role attribute
		if version == config.EpubVersionEpub3 {
			creatorID := fmt.Sprintf("creator%d", idx)
			creator.CreateAttr("id", creatorID)

			role := metadata.CreateElement("meta")
			role.CreateAttr("refines", "#"+creatorID)
			role.CreateAttr("property", "role")
			role.CreateAttr("scheme", "marc:relators")
			role.SetText("aut")
		} else {
			creator.CreateAttr("opf:role", "aut")
		}
	}

	if len(md.Description) > 0 {
		metadata.CreateElement("dc:description").SetText(md.Description)
	}

	if version == config.EpubVersionEpub3 {
		modified := metadata.CreateElement("meta")
		modified.CreateAttr("property", "dcterms:modified")
		modified.SetText(md.ModifiedString())
	} else {
		date := metadata.CreateElement("dc:date")
		date.CreateAttr("opf:event", "modification")
		date.SetText(md.Modified.Format("2006-01-02"))
	}

	generator := metadata.CreateElement("meta")
	generator.CreateAttr("name", "generator")
	generator.CreateAttr("content", misc.Generator())

	// kept for EPUB3 too, many readers still look for it
	if len(coverID) > 0 {
		meta := metadata.CreateElement("meta")
		meta.CreateAttr("name", "cover")
		meta.CreateAttr("content", coverID)
	}

	manifest := pkg.CreateElement("manifest")
	for _, it := range m.Items {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", it.ID)
		item.CreateAttr("href", escapeHref(it.Href))
		item.CreateAttr("media-type", it.MediaType)
		if version == config.EpubVersionEpub3 && len(it.Properties) > 0 {
			item.CreateAttr("properties", strings.Join(it.Properties, " "))
		}
	}

	spine := pkg.CreateElement("spine")
	if len(m.TOC) > 0 {
		spine.CreateAttr("toc", m.TOC)
	}
	for _, it := range m.Spine {
		ref := spine.CreateElement("itemref")
		ref.CreateAttr("idref", it.IDRef)
		if !it.Linear {
			ref.CreateAttr("linear", "no")
		}
	}

	if version == config.EpubVersionEpub2 && len(guide) > 0 {
		g := pkg.CreateElement("guide")
		for _, r := range guide {
			ref := g.CreateElement("reference")
			ref.CreateAttr("type", r.kind)
			ref.CreateAttr("title", r.title)
			ref.CreateAttr("href", r.href)
		}
	}

	doc.Indent(2)
	return doc
}
