package book

import "mdepub/utils/debug"

// Dump returns printable representation of the book for debug report.
func (b *Book) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "book")
	tw.TextBlock(1, "title", b.Config.Title)
	tw.List(1, "authors", b.Config.Authors)
	tw.TextBlock(1, "language", b.Config.Language)
	tw.TextBlock(1, "src", b.Tree.Root)
	if len(b.Destination) > 0 {
		tw.TextBlock(1, "destination", b.Destination)
	}
	_ = b.Tree.Walk(func(n *Node) error {
		kind := n.Path
		if n.IsSeparator() {
			kind = "(separator)"
		}
		tw.Line(n.Depth+1, "%s %s", n.ID, kind)
		tw.TextBlock(n.Depth+2, "title", n.Title)
		if num := n.SectionNumber(); len(num) > 0 {
			tw.Line(n.Depth+2, "number: %s", num)
		}
		if !n.IsSeparator() {
			tw.Line(n.Depth+2, "body: %d bytes", len(n.Body))
		}
		return nil
	})
	return tw.String()
}
