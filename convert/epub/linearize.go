package epub

import (
	"fmt"
	"path"
	"strings"

	"mdepub/book"
)

// LinearChapter is a chapter placed in reading order.
type LinearChapter struct {
	Node     book.NodeID
	Position int
	Href     string
	Title    string
	Source   string
	Depth    int
	// Body is raw fragment before resolving and resolved one after.
	Body []byte
	// Resources lists canonical paths of resources chapter depends on.
	Resources []string
}

func chapterHref(pos int) string {
	return fmt.Sprintf("chapter-%04d.xhtml", pos)
}

func chapterID(pos int) string {
	return fmt.Sprintf("chapter-%04d", pos)
}

// Linearize flattens tree in pre-order. Separators stay in the tree for
// navigation only.
func Linearize(tree *book.Tree) ([]*LinearChapter, error) {
	var chapters []*LinearChapter
	_ = tree.Walk(func(n *book.Node) error {
		if n.IsSeparator() {
			return nil
		}
		pos := len(chapters)
		chapters = append(chapters, &LinearChapter{
			Node:     n.ID,
			Position: pos,
			Href:     chapterHref(pos),
			Title:    chapterTitle(n),
			Source:   n.Path,
			Depth:    n.Depth,
			Body:     n.Body,
		})
		return nil
	})
	if len(chapters) == 0 {
		return nil, &EmptyBookError{}
	}
	return chapters, nil
}

func chapterTitle(n *book.Node) string {
	if t := strings.TrimSpace(n.Title); len(t) > 0 {
		return t
	}
	base := path.Base(n.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// chapterDirs returns distinct source directories of chapters.
func chapterDirs(chapters []*LinearChapter) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, ch := range chapters {
		if d := path.Dir(ch.Source); !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	return dirs
}
