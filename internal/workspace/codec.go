package workspace

import "github.com/lumiador/Workspace-Extension/internal/browser"

// Encode converts a live tab into its persisted descriptor. Title capture is
// optional and lossy by design: the synchronized partition is
// quota-constrained, and restore only reads url and pinned.
func Encode(tab browser.Tab, captureTitles bool) TabDescriptor {
	d := TabDescriptor{
		URL:    tab.URL,
		Pinned: tab.Pinned,
	}
	if captureTitles {
		d.Title = tab.Title
	}
	return d
}
