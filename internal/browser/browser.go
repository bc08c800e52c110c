// Package browser defines the boundary to the window/tab host environment.
// The engine consumes this interface; live deployments back it with the
// websocket bridge to a browser extension, tests with the in-memory Fake.
package browser

import (
	"context"
	"errors"
)

// WindowID identifies a live browser window. Assigned by the host.
type WindowID int

// TabID identifies a live tab. Assigned by the host.
type TabID int

// Tab is the host's view of a live tab.
type Tab struct {
	ID       TabID    `json:"id"`
	WindowID WindowID `json:"windowId"`
	Index    int      `json:"index"`
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Pinned   bool     `json:"pinned,omitempty"`
}

// ErrNoWindow is returned when an operation targets a window that no longer
// exists. Callers treat this as an environment race and fall through to the
// next-best action rather than failing the request.
var ErrNoWindow = errors.New("window not found")

// ErrNoTab is returned when an operation targets a tab that no longer exists.
var ErrNoTab = errors.New("tab not found")

// ErrNotConnected is returned by bridge-backed hosts when no browser is
// attached to serve the request.
var ErrNotConnected = errors.New("no browser connected")

// Host is the window/tab API consumed by the engine. Implementations must be
// safe for concurrent use.
type Host interface {
	// Windows enumerates the ids of all live windows.
	Windows(ctx context.Context) ([]WindowID, error)

	// Tabs enumerates the tabs of a window in host-reported order.
	Tabs(ctx context.Context, window WindowID) ([]Tab, error)

	// CreateWindow opens a new window. When url is non-empty the window's
	// first tab navigates to it.
	CreateWindow(ctx context.Context, url string) (WindowID, error)

	// CreateTab appends a tab to a window.
	CreateTab(ctx context.Context, window WindowID, url string) (Tab, error)

	// PinTab sets a tab's pinned flag.
	PinTab(ctx context.Context, tab TabID, pinned bool) error

	// MoveTab relocates a tab into another window.
	MoveTab(ctx context.Context, tab TabID, window WindowID) error

	// RemoveTab closes a tab.
	RemoveTab(ctx context.Context, tab TabID) error

	// FocusWindow brings a window to the foreground.
	FocusWindow(ctx context.Context, window WindowID) error
}
