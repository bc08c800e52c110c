package bridge

import (
	"context"

	"github.com/lumiador/Workspace-Extension/internal/browser"
)

// browser.Host implementation. Each method is one RPC to the extension; all
// of them return browser.ErrNotConnected when no extension is attached.

type windowParams struct {
	WindowID browser.WindowID `json:"windowId"`
}

type tabParams struct {
	TabID browser.TabID `json:"tabId"`
}

// Windows enumerates live window ids.
func (b *Bridge) Windows(ctx context.Context) ([]browser.WindowID, error) {
	var out []browser.WindowID
	if err := b.call(ctx, "windows.list", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tabs enumerates a window's tabs in index order.
func (b *Bridge) Tabs(ctx context.Context, window browser.WindowID) ([]browser.Tab, error) {
	var out []browser.Tab
	if err := b.call(ctx, "tabs.list", windowParams{WindowID: window}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateWindow opens a new window, optionally navigating its first tab.
func (b *Bridge) CreateWindow(ctx context.Context, url string) (browser.WindowID, error) {
	var out windowParams
	params := struct {
		URL string `json:"url,omitempty"`
	}{URL: url}
	if err := b.call(ctx, "windows.create", params, &out); err != nil {
		return 0, err
	}
	return out.WindowID, nil
}

// CreateTab appends a tab to a window.
func (b *Bridge) CreateTab(ctx context.Context, window browser.WindowID, url string) (browser.Tab, error) {
	var out browser.Tab
	params := struct {
		WindowID browser.WindowID `json:"windowId"`
		URL      string           `json:"url"`
	}{WindowID: window, URL: url}
	if err := b.call(ctx, "tabs.create", params, &out); err != nil {
		return browser.Tab{}, err
	}
	return out, nil
}

// PinTab sets a tab's pinned flag.
func (b *Bridge) PinTab(ctx context.Context, tab browser.TabID, pinned bool) error {
	params := struct {
		TabID  browser.TabID `json:"tabId"`
		Pinned bool          `json:"pinned"`
	}{TabID: tab, Pinned: pinned}
	return b.call(ctx, "tabs.pin", params, nil)
}

// MoveTab relocates a tab into another window.
func (b *Bridge) MoveTab(ctx context.Context, tab browser.TabID, window browser.WindowID) error {
	params := struct {
		TabID    browser.TabID    `json:"tabId"`
		WindowID browser.WindowID `json:"windowId"`
	}{TabID: tab, WindowID: window}
	return b.call(ctx, "tabs.move", params, nil)
}

// RemoveTab closes a tab.
func (b *Bridge) RemoveTab(ctx context.Context, tab browser.TabID) error {
	return b.call(ctx, "tabs.remove", tabParams{TabID: tab}, nil)
}

// FocusWindow brings a window to the foreground.
func (b *Bridge) FocusWindow(ctx context.Context, window browser.WindowID) error {
	return b.call(ctx, "windows.focus", windowParams{WindowID: window}, nil)
}
