// Package book holds in-memory representation of a book source: its
// configuration and the ordered tree of chapters.
package book

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// NodeID addresses node in the Tree arena.
type NodeID int

// NoParent is used when adding top level nodes.
const NoParent NodeID = -1

func (id NodeID) String() string {
	return fmt.Sprintf("node-%d", id)
}

// Node is either a chapter (has source path) or a structural separator (part
// title, draft chapter) which appears only in navigation.
type Node struct {
	ID    NodeID
	Title string
	// slash separated, relative to the source root, empty for separators
	Path string
	// XHTML body fragment
	Body []byte
	// section number from numbered summary entries, nil when not numbered
	Number   []int
	Parent   NodeID
	Children []NodeID
	Depth    int
}

// IsSeparator reports if node has no content of its own.
func (n *Node) IsSeparator() bool {
	return len(n.Path) == 0
}

// SectionNumber formats Number as "1.2.".
func (n *Node) SectionNumber() string {
	if len(n.Number) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, v := range n.Number {
		fmt.Fprintf(&sb, "%d.", v)
	}
	return sb.String()
}

// Tree is an arena of nodes. Nodes never move, children are kept in
// insertion order.
type Tree struct {
	// Root is filesystem location of the source root, FS gives access to it.
	Root string
	FS   fs.FS

	nodes []Node
	top   []NodeID
	paths map[string]NodeID
}

func NewTree(root string, fsys fs.FS) *Tree {
	return &Tree{Root: root, FS: fsys, paths: make(map[string]NodeID)}
}

// CleanPath normalizes chapter or resource path relative to the source
// root. It returns false for paths escaping the root.
func CleanPath(p string) (string, bool) {
	p = path.Clean(strings.TrimLeft(strings.ReplaceAll(p, `\`, "/"), "/"))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}
	return p, fs.ValidPath(p)
}

// Add appends node as the last child of parent. Node identity, parent and
// depth are assigned here.
func (t *Tree) Add(parent NodeID, n Node) (NodeID, error) {
	if parent != NoParent && !t.valid(parent) {
		return NoParent, fmt.Errorf("unable to add %q: unknown parent %s", n.Title, parent)
	}
	if n.Path != "" {
		p, ok := CleanPath(n.Path)
		if !ok {
			return NoParent, fmt.Errorf("unable to add %q: bad source path %q", n.Title, n.Path)
		}
		if other, exists := t.paths[p]; exists {
			return NoParent, fmt.Errorf("unable to add %q: source path %q already used by %s", n.Title, p, other)
		}
		n.Path = p
	}

	id := NodeID(len(t.nodes))
	n.ID, n.Parent, n.Children = id, parent, nil
	if parent == NoParent {
		n.Depth = 0
		t.top = append(t.top, id)
	} else {
		n.Depth = t.nodes[parent].Depth + 1
		t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	}
	if n.Path != "" {
		t.paths[n.Path] = id
	}
	t.nodes = append(t.nodes, n)
	return id, nil
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Node returns node by id, nil if there is no such node. Returned pointer
// is valid until next Add.
func (t *Tree) Node(id NodeID) *Node {
	if !t.valid(id) {
		return nil
	}
	return &t.nodes[id]
}

// Top returns top level nodes in order.
func (t *Tree) Top() []NodeID {
	return t.top
}

// Len returns number of nodes, separators included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Lookup finds chapter by its cleaned source path.
func (t *Tree) Lookup(p string) (NodeID, bool) {
	id, ok := t.paths[p]
	return id, ok
}

// Paths returns all chapter source paths.
func (t *Tree) Paths() []string {
	out := make([]string, 0, len(t.paths))
	for p := range t.paths {
		out = append(out, p)
	}
	return out
}

// ErrSkipChildren may be returned by WalkFunc to skip node children.
var ErrSkipChildren = errors.New("skip children")

type WalkFunc func(n *Node) error

// Walk visits nodes in pre-order.
func (t *Tree) Walk(fn WalkFunc) error {
	var visit func(ids []NodeID) error
	visit = func(ids []NodeID) error {
		for _, id := range ids {
			n := &t.nodes[id]
			err := fn(n)
			if errors.Is(err, ErrSkipChildren) {
				continue
			}
			if err != nil {
				return err
			}
			if err := visit(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.top)
}
