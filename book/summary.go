package book

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const SummaryFileName = "SUMMARY.md"

// SummaryItem is one entry of SUMMARY.md. Empty Path means draft chapter or
// part title.
type SummaryItem struct {
	Title    string
	Path     string
	Number   []int
	Part     bool
	Children []SummaryItem
}

// ParseSummary reads mdBook summary format: optional title heading, prefix
// chapters (links outside of lists), numbered chapters (nested lists), part
// titles (headings) grouping following numbered chapters and suffix chapters.
// Horizontal rules are accepted and ignored.
func ParseSummary(src []byte) ([]SummaryItem, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var (
		items    []SummaryItem
		part     *SummaryItem
		counter  int
		seenList bool
		first    = true
	)

	flushPart := func() {
		if part != nil {
			items = append(items, *part)
			part = nil
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		isFirst := first
		first = false

		switch node := n.(type) {
		case *ast.Heading:
			if isFirst {
				// summary title
				continue
			}
			flushPart()
			part = &SummaryItem{Title: inlineText(node, src), Part: true}

		case *ast.Paragraph:
			links, err := paragraphLinks(node, src)
			if err != nil {
				return nil, err
			}
			if seenList {
				// suffix chapters end any open part
				flushPart()
			}
			items = append(items, links...)

		case *ast.List:
			seenList = true
			list, err := listItems(node, src, nil, &counter)
			if err != nil {
				return nil, err
			}
			if part != nil {
				part.Children = append(part.Children, list...)
			} else {
				items = append(items, list...)
			}

		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			return nil, fmt.Errorf("unexpected %s in summary at line %d", n.Kind(), lineOf(n, src))
		}
	}
	flushPart()
	return items, nil
}

// listItems converts list into numbered items. counter keeps numbering of
// top level items continuous across separate lists and parts.
func listItems(list *ast.List, src []byte, prefix []int, counter *int) ([]SummaryItem, error) {
	var (
		out   []SummaryItem
		local int
	)
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var number []int
		if len(prefix) == 0 {
			*counter++
			number = []int{*counter}
		} else {
			local++
			number = append(append([]int(nil), prefix...), local)
		}

		var item *SummaryItem
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				links, err := paragraphLinks(node, src)
				if err != nil {
					return nil, err
				}
				if len(links) != 1 {
					return nil, fmt.Errorf("summary list item at line %d must contain exactly one link", lineOf(li, src))
				}
				item = &links[0]
				item.Number = number
			case *ast.List:
				if item == nil {
					return nil, fmt.Errorf("nested list without parent chapter at line %d", lineOf(c, src))
				}
				children, err := listItems(node, src, number, counter)
				if err != nil {
					return nil, err
				}
				item.Children = append(item.Children, children...)
			}
		}
		if item == nil {
			return nil, fmt.Errorf("empty summary list item at line %d", lineOf(li, src))
		}
		out = append(out, *item)
	}
	return out, nil
}

func paragraphLinks(n ast.Node, src []byte) ([]SummaryItem, error) {
	var out []SummaryItem
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Link:
			dest, err := url.PathUnescape(string(node.Destination))
			if err != nil {
				return nil, fmt.Errorf("bad chapter link %q: %w", node.Destination, err)
			}
			out = append(out, SummaryItem{Title: inlineText(node, src), Path: dest})
		case *ast.Text:
			if len(bytes.TrimSpace(node.Segment.Value(src))) != 0 {
				return nil, fmt.Errorf("unexpected text %q in summary at line %d", node.Segment.Value(src), lineOf(n, src))
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("summary paragraph without links at line %d", lineOf(n, src))
	}
	return out, nil
}

func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(buf.Bytes()))
}

func lineOf(n ast.Node, src []byte) int {
	for c := n; c != nil; c = c.FirstChild() {
		if c.Type() == ast.TypeBlock && c.Lines().Len() > 0 {
			return bytes.Count(src[:c.Lines().At(0).Start], []byte{'\n'}) + 1
		}
		if t, ok := c.(*ast.Text); ok {
			return bytes.Count(src[:t.Segment.Start], []byte{'\n'}) + 1
		}
	}
	return 0
}
