// Package backup renders workspaces to a portable markdown document and
// parses such a document back. The format is meant to be hand-editable: one
// level-2 heading per workspace, one list item per tab.
package backup

import (
	"strings"

	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Entry is one workspace in a backup document.
type Entry struct {
	Name  string
	Color string
	Tabs  []workspace.TabDescriptor
}

// pinnedSuffix marks a pinned tab in a list item.
const pinnedSuffix = " (pinned)"

// Render produces the markdown document for a set of entries.
func Render(entries []Entry) string {
	var b strings.Builder
	b.WriteString("# Workspaces\n")
	for _, entry := range entries {
		b.WriteString("\n## ")
		b.WriteString(entry.Name)
		if entry.Color != "" {
			b.WriteString(" [")
			b.WriteString(entry.Color)
			b.WriteString("]")
		}
		b.WriteString("\n")
		if len(entry.Tabs) == 0 {
			continue
		}
		b.WriteString("\n")
		for _, tab := range entry.Tabs {
			title := tab.Title
			if title == "" {
				title = tab.URL
			}
			b.WriteString("- [")
			b.WriteString(escapeLinkText(title))
			b.WriteString("](")
			b.WriteString(tab.URL)
			b.WriteString(")")
			if tab.Pinned {
				b.WriteString(pinnedSuffix)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// escapeLinkText keeps titles containing brackets from breaking the link
// syntax they are embedded in.
func escapeLinkText(s string) string {
	s = strings.ReplaceAll(s, "[", `\[`)
	return strings.ReplaceAll(s, "]", `\]`)
}
