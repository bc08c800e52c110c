package backup

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Parse reads a backup document. Level-2 headings open workspaces; any list
// under a heading contributes tabs. Unrecognized markdown (paragraphs, other
// heading levels) is ignored, so annotated documents still import.
func Parse(source []byte) ([]Entry, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var entries []Entry
	var current *Entry

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level != 2 {
				continue
			}
			name, color := splitHeading(nodeText(n, source))
			entries = append(entries, Entry{Name: name, Color: color})
			current = &entries[len(entries)-1]
		case *ast.List:
			if current == nil {
				continue
			}
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				tab, ok := parseItem(item, source)
				if ok {
					current.Tabs = append(current.Tabs, tab)
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no workspace headings found")
	}
	return entries, nil
}

// splitHeading separates "Name [color]" into its parts. A heading without a
// trailing bracket group is all name.
func splitHeading(heading string) (name, color string) {
	heading = strings.TrimSpace(heading)
	if !strings.HasSuffix(heading, "]") {
		return heading, ""
	}
	open := strings.LastIndex(heading, "[")
	if open <= 0 {
		return heading, ""
	}
	return strings.TrimSpace(heading[:open]), strings.TrimSpace(heading[open+1 : len(heading)-1])
}

// parseItem extracts a tab descriptor from a list item. The first link wins;
// an item with no link is taken as a bare URL. Items with no usable URL are
// skipped.
func parseItem(item ast.Node, source []byte) (workspace.TabDescriptor, bool) {
	var link *ast.Link
	_ = ast.Walk(item, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if l, ok := n.(*ast.Link); ok && link == nil {
			link = l
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	full := nodeText(item, source)
	pinned := strings.HasSuffix(strings.TrimSpace(full), strings.TrimSpace(pinnedSuffix))

	if link != nil {
		url := string(link.Destination)
		if url == "" {
			return workspace.TabDescriptor{}, false
		}
		title := unescapeLinkText(strings.TrimSpace(nodeText(link, source)))
		if title == url {
			title = ""
		}
		return workspace.TabDescriptor{URL: url, Title: title, Pinned: pinned}, true
	}

	url := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(full), strings.TrimSpace(pinnedSuffix)))
	if url == "" {
		return workspace.TabDescriptor{}, false
	}
	return workspace.TabDescriptor{URL: url, Pinned: pinned}, true
}

// unescapeLinkText reverses the bracket escaping Render applies to titles.
func unescapeLinkText(s string) string {
	s = strings.ReplaceAll(s, `\[`, "[")
	return strings.ReplaceAll(s, `\]`, "]")
}

// nodeText concatenates the literal text under a node.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
