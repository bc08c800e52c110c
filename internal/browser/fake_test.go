package browser

import (
	"context"
	"testing"
)

func TestFakeWindowLifecycle(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	win := f.OpenWindow(
		Tab{URL: "https://a.example"},
		Tab{URL: "https://b.example", Pinned: true},
	)

	tabs, err := f.Tabs(ctx, win)
	if err != nil {
		t.Fatalf("Tabs failed: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("len(tabs) = %d, want 2", len(tabs))
	}
	if tabs[0].Index != 0 || tabs[1].Index != 1 {
		t.Error("tabs not indexed in order")
	}

	f.CloseWindow(win)
	if _, err := f.Tabs(ctx, win); err != ErrNoWindow {
		t.Errorf("Tabs after close = %v, want ErrNoWindow", err)
	}
}

func TestFakeMoveTabReindexesSource(t *testing.T) {
	ctx := context.Background()
	f := NewFake()

	src := f.OpenWindow(Tab{URL: "https://a.example"}, Tab{URL: "https://b.example"})
	dst := f.OpenWindow(Tab{URL: "https://c.example"})

	srcTabs, _ := f.Tabs(ctx, src)
	if err := f.MoveTab(ctx, srcTabs[0].ID, dst); err != nil {
		t.Fatalf("MoveTab failed: %v", err)
	}

	srcTabs, _ = f.Tabs(ctx, src)
	if len(srcTabs) != 1 || srcTabs[0].Index != 0 {
		t.Errorf("source tabs = %+v, want single reindexed tab", srcTabs)
	}
	dstTabs, _ := f.Tabs(ctx, dst)
	if len(dstTabs) != 2 || dstTabs[1].URL != "https://a.example" {
		t.Errorf("dest tabs = %+v, want moved tab appended", dstTabs)
	}
}

func TestFakePinTab(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	win := f.OpenWindow(Tab{URL: "https://a.example"})
	tabs, _ := f.Tabs(ctx, win)

	if err := f.PinTab(ctx, tabs[0].ID, true); err != nil {
		t.Fatalf("PinTab failed: %v", err)
	}
	tabs, _ = f.Tabs(ctx, win)
	if !tabs[0].Pinned {
		t.Error("tab should be pinned")
	}

	if err := f.PinTab(ctx, TabID(9999), true); err != ErrNoTab {
		t.Errorf("PinTab on unknown tab = %v, want ErrNoTab", err)
	}
}

func TestFakeFocusWindow(t *testing.T) {
	ctx := context.Background()
	f := NewFake()
	win := f.OpenWindow(Tab{URL: "https://a.example"})

	if err := f.FocusWindow(ctx, win); err != nil {
		t.Fatalf("FocusWindow failed: %v", err)
	}
	if f.Focused != win {
		t.Errorf("Focused = %d, want %d", f.Focused, win)
	}
	if err := f.FocusWindow(ctx, WindowID(1)); err != ErrNoWindow {
		t.Errorf("FocusWindow on unknown window = %v, want ErrNoWindow", err)
	}
}
