package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/clock"
	"github.com/lumiador/Workspace-Extension/internal/engine"
	"github.com/lumiador/Workspace-Extension/internal/store"
)

// newTestEngine builds an engine on a fake host and in-memory store.
func newTestEngine(t *testing.T) (*engine.Engine, *browser.Fake) {
	t.Helper()
	host := browser.NewFake()
	eng := engine.New(engine.Options{
		Store:  store.NewMemory(),
		Host:   host,
		Clock:  clock.NewFakeClock(time.UnixMilli(1_700_000_000_000)),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err := eng.Init(context.Background()); err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng, host
}

// runApp executes the CLI with the given args, capturing stdout.
func runApp(t *testing.T, eng *engine.Engine, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	app := newCLIApp(eng)
	runErr := app.Run(append([]string{"workspaced"}, args...))

	w.Close()
	os.Stdout = old
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured stdout: %v", err)
	}
	return string(out), runErr
}

func TestCLICreateAndList(t *testing.T) {
	eng, host := newTestEngine(t)
	win := host.OpenWindow(
		browser.Tab{URL: "https://go.dev", Title: "Go"},
		browser.Tab{URL: "https://pkg.go.dev"},
	)

	out, err := runApp(t, eng, "create", "--name", "Dev", "--color", "blue", "--window", intArg(win))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	var created map[string]any
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("unmarshal create output: %v\n%s", err, out)
	}
	if created["name"] != "Dev" || created["tab_count"] != float64(2) {
		t.Errorf("created = %+v", created)
	}

	out, err = runApp(t, eng, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var listed struct {
		Workspaces []map[string]any `json:"workspaces"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("unmarshal list output: %v\n%s", err, out)
	}
	if len(listed.Workspaces) != 1 || listed.Workspaces[0]["open"] != true {
		t.Errorf("list = %+v", listed.Workspaces)
	}
}

func TestCLIRenameRequiresArgs(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := runApp(t, eng, "rename", "only-one-arg"); err == nil {
		t.Error("expected an error for missing name argument")
	}
}

func TestCLIDeleteUnknownWorkspace(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := runApp(t, eng, "delete", "nope")
	if err == nil || !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("error = %v, want NOT_FOUND exit message", err)
	}
}

func TestCLISettings(t *testing.T) {
	eng, _ := newTestEngine(t)

	out, err := runApp(t, eng, "settings")
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	var settings map[string]any
	if err := json.Unmarshal([]byte(out), &settings); err != nil {
		t.Fatalf("unmarshal settings: %v", err)
	}
	if settings["auto_save"] != true {
		t.Errorf("auto_save = %v, want default true", settings["auto_save"])
	}

	if _, err := runApp(t, eng, "settings", "--include-pinned-tabs"); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}
	if !eng.Settings().IncludePinnedTabs {
		t.Error("include-pinned-tabs flag not applied")
	}
	if !eng.Settings().AutoSave {
		t.Error("unrelated setting changed by partial update")
	}
}

func TestCLIExportImportRoundTrip(t *testing.T) {
	eng, host := newTestEngine(t)
	win := host.OpenWindow(browser.Tab{URL: "https://go.dev", Title: "Go"})
	if _, err := runApp(t, eng, "create", "--name", "Dev", "--window", intArg(win)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "backup.md")
	out, err := runApp(t, eng, "export", "--path", path)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("export output missing path: %s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if !strings.Contains(string(data), "## Dev") {
		t.Errorf("exported document missing workspace heading:\n%s", data)
	}

	out, err = runApp(t, eng, "import", "--path", path)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	var imported map[string]any
	if err := json.Unmarshal([]byte(out), &imported); err != nil {
		t.Fatalf("unmarshal import output: %v", err)
	}
	if imported["imported"] != float64(1) {
		t.Errorf("imported = %v, want 1", imported["imported"])
	}

	result, err := eng.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(result.Workspaces) != 2 {
		t.Errorf("have %d workspaces after import, want 2", len(result.Workspaces))
	}
}

func TestCLIUsage(t *testing.T) {
	eng, _ := newTestEngine(t)
	if _, err := runApp(t, eng, "create", "--name", "Bytes"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	out, err := runApp(t, eng, "usage")
	if err != nil {
		t.Fatalf("usage failed: %v", err)
	}
	var usage struct {
		SyncedBytes int64 `json:"synced_bytes"`
	}
	if err := json.Unmarshal([]byte(out), &usage); err != nil {
		t.Fatalf("unmarshal usage output: %v", err)
	}
	if usage.SyncedBytes <= 0 {
		t.Errorf("synced_bytes = %d, want > 0", usage.SyncedBytes)
	}
}

// intArg formats a window or tab id for the command line.
func intArg[T ~int](v T) string {
	return strconv.Itoa(int(v))
}
