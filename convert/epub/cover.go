package epub

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"mdepub/config"
)

const (
	coverPageHref    = "cover.xhtml"
	coverPageID      = "cover-page"
	coverImageID     = "cover-image"
	coverJPEGQuality = 90
)

// prepareCover records cover dimensions and, when requested, scales image
// down to fit configured box. SVG covers are left alone.
func prepareCover(e *ResourceEntry, cfg *config.CoverConfig, log *zap.Logger) error {
	e.ID = coverImageID
	if e.MediaType == "image/svg+xml" {
		e.Width, e.Height = cfg.Width, cfg.Height
		return nil
	}

	img, err := imaging.Decode(bytes.NewReader(e.Data), imaging.AutoOrientation(true))
	if err != nil {
		log.Warn("Unable to decode cover image, using configured dimensions", zap.String("path", e.Path), zap.Error(err))
		e.Width, e.Height = cfg.Width, cfg.Height
		return nil
	}
	e.Width, e.Height = img.Bounds().Dx(), img.Bounds().Dy()

	if !cfg.Resize || (e.Width <= cfg.Width && e.Height <= cfg.Height) {
		return nil
	}

	format, err := imaging.FormatFromFilename(e.Path)
	if err != nil {
		format = imaging.JPEG
	}
	resized := imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	data, err := encodeImage(resized, format)
	if err != nil {
		return fmt.Errorf("unable to encode resized cover %q: %w", e.Path, err)
	}
	log.Debug("Cover resized",
		zap.String("path", e.Path),
		zap.Int("from-width", e.Width), zap.Int("from-height", e.Height),
		zap.Int("width", resized.Bounds().Dx()), zap.Int("height", resized.Bounds().Dy()))

	e.Data = data
	e.Width, e.Height = resized.Bounds().Dx(), resized.Bounds().Dy()
	e.MediaType = mediaType(e.Path, data)
	return nil
}

func encodeImage(img image.Image, format imaging.Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case imaging.PNG:
		err = imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	case imaging.JPEG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(coverJPEGQuality))
	default:
		err = imaging.Encode(&buf, img, format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// coverPage wraps cover image into SVG so it scales to the screen keeping
// aspect ratio.
func coverPage(cover *ResourceEntry, title string, version config.EpubVersion) *etree.Document {
	doc, head, body := newXHTMLDocument(version, "")

	style := head.CreateElement("style")
	style.CreateAttr("type", "text/css")
	style.SetText("html, body { margin: 0; padding: 0; width: 100%; height: 100%; } svg { display: block; width: auto; height: 100%; margin: 0 auto }")
	head.CreateElement("title").SetText(title)

	svg := body.CreateElement("svg")
	svg.CreateAttr("version", "1.1")
	svg.CreateAttr("xmlns", svgNS)
	svg.CreateAttr("xmlns:xlink", xlinkNS)
	svg.CreateAttr("viewBox", fmt.Sprintf("0 0 %d %d", cover.Width, cover.Height))
	svg.CreateAttr("preserveAspectRatio", "xMidYMid meet")

	img := svg.CreateElement("image")
	img.CreateAttr("x", "0")
	img.CreateAttr("y", "0")
	img.CreateAttr("width", fmt.Sprintf("%d", cover.Width))
	img.CreateAttr("height", fmt.Sprintf("%d", cover.Height))
	img.CreateAttr("xlink:href", escapeHref(cover.Href))
	return doc
}
