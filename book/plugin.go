package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// RenderContext is what mdBook passes to alternative backends on stdin.
type RenderContext struct {
	Version     string     `json:"version"`
	Root        string     `json:"root"`
	Book        renderBook `json:"book"`
	Config      configFile `json:"config"`
	Destination string     `json:"destination"`
}

type renderBook struct {
	Sections []bookItem `json:"sections"`
}

type renderChapter struct {
	Name     string     `json:"name"`
	Content  string     `json:"content"`
	Number   []int      `json:"number"`
	SubItems []bookItem `json:"sub_items"`
	Path     *string    `json:"path"`
}

// bookItem is a chapter, part title or separator. mdBook encodes separator
// as plain string and other variants as single key objects.
type bookItem struct {
	Chapter   *renderChapter
	PartTitle *string
	Separator bool
}

func (b *bookItem) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "Separator" {
			return fmt.Errorf("unknown book item %q", s)
		}
		b.Separator = true
		return nil
	}
	var obj struct {
		Chapter   *renderChapter `json:"Chapter"`
		PartTitle *string        `json:"PartTitle"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Chapter == nil && obj.PartTitle == nil {
		return errors.New("book item is neither chapter nor part title")
	}
	b.Chapter, b.PartTitle = obj.Chapter, obj.PartTitle
	return nil
}

// ReadRenderContext decodes render context coming from mdBook.
func ReadRenderContext(r io.Reader) (*RenderContext, error) {
	var rc RenderContext
	if err := json.NewDecoder(r).Decode(&rc); err != nil {
		return nil, fmt.Errorf("unable to parse render context: %w", err)
	}
	if len(rc.Root) == 0 {
		return nil, errors.New("render context has no book root")
	}
	return &rc, nil
}

// Configuration returns book configuration carried by the context.
func (rc *RenderContext) Configuration() *Config {
	return rc.Config.config(rc.Root)
}

// Load builds book from context. Chapter content is already preprocessed by
// mdBook so nothing but resources is read from disk.
func (rc *RenderContext) Load(cfg *Config, conv Converter, log *zap.Logger) (*Book, error) {
	src := cfg.SrcDir()
	tree := NewTree(src, os.DirFS(src))
	if err := addRenderItems(tree, NoParent, rc.Book.Sections, conv, log); err != nil {
		return nil, err
	}
	log.Debug("Book received from mdBook", zap.String("version", rc.Version), zap.String("src", src), zap.Int("nodes", tree.Len()))

	dst := rc.Destination
	if len(dst) > 0 && !filepath.IsAbs(dst) {
		dst = filepath.Join(rc.Root, dst)
	}
	return &Book{Config: cfg, Tree: tree, Destination: dst}, nil
}

// addRenderItems mirrors summary parsing: at top level chapters following a
// part title become its children, unnumbered chapter ends the part.
func addRenderItems(tree *Tree, parent NodeID, items []bookItem, conv Converter, log *zap.Logger) error {
	part := NoParent
	for _, item := range items {
		switch {
		case item.Separator:
			continue
		case item.PartTitle != nil:
			id, err := tree.Add(parent, Node{Title: *item.PartTitle})
			if err != nil {
				return err
			}
			if parent == NoParent {
				part = id
			}
		case item.Chapter != nil:
			ch := item.Chapter
			n := Node{Title: ch.Name, Number: ch.Number}
			if ch.Path != nil && len(*ch.Path) > 0 {
				n.Path = filepath.ToSlash(*ch.Path)
				body, err := conv.Convert([]byte(ch.Content))
				if err != nil {
					return fmt.Errorf("unable to convert chapter %q (%s): %w", ch.Name, n.Path, err)
				}
				n.Body = body
			}
			target := parent
			if part != NoParent {
				if len(ch.Number) > 0 {
					target = part
				} else {
					part = NoParent
				}
			}
			id, err := tree.Add(target, n)
			if err != nil {
				return err
			}
			if err := addRenderItems(tree, id, ch.SubItems, conv, log); err != nil {
				return err
			}
		}
	}
	return nil
}
