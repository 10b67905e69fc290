package book

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Converter turns chapter markdown into XHTML body fragment.
type Converter interface {
	Convert(source []byte) ([]byte, error)
}

// Book is everything needed to produce a package.
type Book struct {
	Config *Config
	Tree   *Tree
	// Destination is output directory requested by the host, empty in
	// standalone mode.
	Destination string
}

// Load reads SUMMARY.md and all chapters it references from the book source
// directory.
func Load(cfg *Config, conv Converter, log *zap.Logger) (*Book, error) {
	src := cfg.SrcDir()
	fsys := os.DirFS(src)

	data, err := fs.ReadFile(fsys, SummaryFileName)
	if err != nil {
		return nil, fmt.Errorf("unable to read summary: %w", err)
	}
	items, err := ParseSummary(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", filepath.Join(src, SummaryFileName), err)
	}

	tree := NewTree(src, fsys)
	if err := addItems(tree, NoParent, items, conv, log); err != nil {
		return nil, err
	}
	log.Debug("Book loaded", zap.String("src", src), zap.Int("nodes", tree.Len()))
	return &Book{Config: cfg, Tree: tree}, nil
}

func addItems(tree *Tree, parent NodeID, items []SummaryItem, conv Converter, log *zap.Logger) error {
	for _, item := range items {
		n := Node{Title: item.Title, Number: item.Number}
		if len(item.Path) > 0 {
			p, ok := CleanPath(item.Path)
			if !ok {
				return fmt.Errorf("chapter %q has bad path %q", item.Title, item.Path)
			}
			source, err := fs.ReadFile(tree.FS, p)
			if err != nil {
				return fmt.Errorf("unable to read chapter %q: %w", item.Title, err)
			}
			if n.Body, err = conv.Convert(source); err != nil {
				return fmt.Errorf("unable to convert chapter %q (%s): %w", item.Title, p, err)
			}
			n.Path = p
		} else if !item.Part {
			log.Debug("Draft chapter, no content", zap.String("title", item.Title))
		}

		id, err := tree.Add(parent, n)
		if err != nil {
			return err
		}
		if err := addItems(tree, id, item.Children, conv, log); err != nil {
			return err
		}
	}
	return nil
}
