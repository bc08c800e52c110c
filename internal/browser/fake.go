package browser

import (
	"context"
	"sync"
)

// Fake is an in-memory Host for tests and embedding. Windows and tabs are
// created either through the Host interface or through the test helpers.
type Fake struct {
	mu         sync.Mutex
	nextWindow WindowID
	nextTab    TabID
	windows    map[WindowID][]Tab

	// Focused records the most recent FocusWindow target.
	Focused WindowID
	// TabsCalls counts Tabs() invocations, for asserting capture counts.
	TabsCalls int
}

// NewFake creates an empty fake host.
func NewFake() *Fake {
	return &Fake{
		nextWindow: 100,
		nextTab:    1000,
		windows:    make(map[WindowID][]Tab),
	}
}

// OpenWindow creates a window populated with tabs described by url/pinned
// pairs. Test helper; does not go through the Host interface.
func (f *Fake) OpenWindow(tabs ...Tab) WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextWindow++
	id := f.nextWindow
	for i := range tabs {
		f.nextTab++
		tabs[i].ID = f.nextTab
		tabs[i].WindowID = id
		tabs[i].Index = i
	}
	f.windows[id] = tabs
	return id
}

// CloseWindow drops a window and its tabs. Test helper.
func (f *Fake) CloseWindow(id WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, id)
}

// AddTab appends a tab to an existing window. Test helper.
func (f *Fake) AddTab(window WindowID, tab Tab) Tab {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTab++
	tab.ID = f.nextTab
	tab.WindowID = window
	tab.Index = len(f.windows[window])
	f.windows[window] = append(f.windows[window], tab)
	return tab
}

// Windows enumerates live window ids.
func (f *Fake) Windows(ctx context.Context) ([]WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]WindowID, 0, len(f.windows))
	for id := range f.windows {
		ids = append(ids, id)
	}
	return ids, nil
}

// Tabs returns a copy of a window's tabs in index order.
func (f *Fake) Tabs(ctx context.Context, window WindowID) ([]Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TabsCalls++
	tabs, ok := f.windows[window]
	if !ok {
		return nil, ErrNoWindow
	}
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out, nil
}

// CreateWindow opens a new window, optionally with a first tab.
func (f *Fake) CreateWindow(ctx context.Context, url string) (WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextWindow++
	id := f.nextWindow
	f.windows[id] = nil
	if url != "" {
		f.nextTab++
		f.windows[id] = []Tab{{ID: f.nextTab, WindowID: id, Index: 0, URL: url}}
	}
	return id, nil
}

// CreateTab appends a tab to a window.
func (f *Fake) CreateTab(ctx context.Context, window WindowID, url string) (Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tabs, ok := f.windows[window]
	if !ok {
		return Tab{}, ErrNoWindow
	}
	f.nextTab++
	tab := Tab{ID: f.nextTab, WindowID: window, Index: len(tabs), URL: url}
	f.windows[window] = append(tabs, tab)
	return tab, nil
}

// PinTab sets a tab's pinned flag.
func (f *Fake) PinTab(ctx context.Context, tab TabID, pinned bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for win, tabs := range f.windows {
		for i := range tabs {
			if tabs[i].ID == tab {
				f.windows[win][i].Pinned = pinned
				return nil
			}
		}
	}
	return ErrNoTab
}

// MoveTab relocates a tab into another window, appending it at the end.
func (f *Fake) MoveTab(ctx context.Context, tab TabID, window WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dest, ok := f.windows[window]
	if !ok {
		return ErrNoWindow
	}
	for win, tabs := range f.windows {
		for i := range tabs {
			if tabs[i].ID != tab {
				continue
			}
			moved := tabs[i]
			f.windows[win] = append(tabs[:i:i], tabs[i+1:]...)
			f.reindex(win)
			moved.WindowID = window
			moved.Index = len(dest)
			f.windows[window] = append(dest, moved)
			return nil
		}
	}
	return ErrNoTab
}

// RemoveTab closes a tab.
func (f *Fake) RemoveTab(ctx context.Context, tab TabID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for win, tabs := range f.windows {
		for i := range tabs {
			if tabs[i].ID == tab {
				f.windows[win] = append(tabs[:i:i], tabs[i+1:]...)
				f.reindex(win)
				return nil
			}
		}
	}
	return ErrNoTab
}

// FocusWindow records the focus target.
func (f *Fake) FocusWindow(ctx context.Context, window WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[window]; !ok {
		return ErrNoWindow
	}
	f.Focused = window
	return nil
}

// reindex rewrites tab indexes after a removal. Caller holds the lock.
func (f *Fake) reindex(window WindowID) {
	for i := range f.windows[window] {
		f.windows[window][i].Index = i
	}
}
