package book

import (
	"errors"
	"slices"
	"testing"
	"testing/fstest"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"intro.md", "intro.md", true},
		{"/intro.md", "intro.md", true},
		{"./a/../b/c.md", "b/c.md", true},
		{`dir\file.md`, "dir/file.md", true},
		{"a//b.md", "a/b.md", true},
		{"../outside.md", "", false},
		{"a/../../outside.md", "", false},
		{"..", "", false},
		{".", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := CleanPath(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("CleanPath(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func newTestTree(t *testing.T) *Tree {
	t.Helper()

	tree := NewTree("src", fstest.MapFS{})
	if _, err := tree.Add(NoParent, Node{Title: "A", Path: "a.md", Number: []int{1}}); err != nil {
		t.Fatalf("Add A: %v", err)
	}
	b, err := tree.Add(NoParent, Node{Title: "B", Path: "b.md", Number: []int{2}})
	if err != nil {
		t.Fatalf("Add B: %v", err)
	}
	if _, err := tree.Add(b, Node{Title: "B1", Path: "b/1.md", Number: []int{2, 1}}); err != nil {
		t.Fatalf("Add B1: %v", err)
	}
	if _, err := tree.Add(b, Node{Title: "B2", Path: "b/2.md", Number: []int{2, 2}}); err != nil {
		t.Fatalf("Add B2: %v", err)
	}
	part, err := tree.Add(NoParent, Node{Title: "Part"})
	if err != nil {
		t.Fatalf("Add Part: %v", err)
	}
	if _, err := tree.Add(part, Node{Title: "C", Path: "c.md"}); err != nil {
		t.Fatalf("Add C: %v", err)
	}
	return tree
}

func TestTree_Add(t *testing.T) {
	tree := newTestTree(t)

	if tree.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", tree.Len())
	}
	if len(tree.Top()) != 3 {
		t.Fatalf("Top() = %v, want 3 nodes", tree.Top())
	}

	id, ok := tree.Lookup("b/2.md")
	if !ok {
		t.Fatal("Lookup(b/2.md) failed")
	}
	n := tree.Node(id)
	if n.Title != "B2" || n.Depth != 1 {
		t.Errorf("node = %q depth %d, want B2 depth 1", n.Title, n.Depth)
	}
	if parent := tree.Node(n.Parent); parent.Title != "B" {
		t.Errorf("parent = %q, want B", parent.Title)
	}
	if got := n.SectionNumber(); got != "2.2." {
		t.Errorf("SectionNumber() = %q, want 2.2.", got)
	}
	if tree.Node(NodeID(100)) != nil {
		t.Error("Node() of unknown id should be nil")
	}

	paths := tree.Paths()
	slices.Sort(paths)
	want := []string{"a.md", "b.md", "b/1.md", "b/2.md", "c.md"}
	if !slices.Equal(paths, want) {
		t.Errorf("Paths() = %v, want %v", paths, want)
	}
}

func TestTree_AddErrors(t *testing.T) {
	tree := newTestTree(t)

	tests := []struct {
		name   string
		parent NodeID
		node   Node
	}{
		{"unknown parent", NodeID(42), Node{Title: "X", Path: "x.md"}},
		{"duplicate path", NoParent, Node{Title: "Again", Path: "a.md"}},
		{"duplicate after cleaning", NoParent, Node{Title: "Again", Path: "./b/../a.md"}},
		{"escaping path", NoParent, Node{Title: "Out", Path: "../x.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tree.Len()
			if _, err := tree.Add(tt.parent, tt.node); err == nil {
				t.Fatal("expected error")
			}
			if tree.Len() != before {
				t.Errorf("tree changed on error: %d != %d", tree.Len(), before)
			}
		})
	}
}

func TestTree_Walk(t *testing.T) {
	tree := newTestTree(t)

	var order []string
	if err := tree.Walk(func(n *Node) error {
		order = append(order, n.Title)
		return nil
	}); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"A", "B", "B1", "B2", "Part", "C"}
	if !slices.Equal(order, want) {
		t.Errorf("pre-order = %v, want %v", order, want)
	}

	order = order[:0]
	_ = tree.Walk(func(n *Node) error {
		order = append(order, n.Title)
		if n.Title == "B" {
			return ErrSkipChildren
		}
		return nil
	})
	want = []string{"A", "B", "Part", "C"}
	if !slices.Equal(order, want) {
		t.Errorf("skip children = %v, want %v", order, want)
	}

	stop := errors.New("stop")
	order = order[:0]
	err := tree.Walk(func(n *Node) error {
		order = append(order, n.Title)
		if n.Title == "B1" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("Walk error = %v, want stop", err)
	}
	if len(order) != 3 {
		t.Errorf("walk continued after error: %v", order)
	}
}

func TestNode_IsSeparator(t *testing.T) {
	chapter := Node{Path: "a.md"}
	part := Node{Title: "Part"}
	if chapter.IsSeparator() {
		t.Error("chapter reported as separator")
	}
	if !part.IsSeparator() {
		t.Error("part title not reported as separator")
	}
	if part.SectionNumber() != "" {
		t.Error("unnumbered node has section number")
	}
}
