package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lumiador/Workspace-Extension/internal/backup"
	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/engine"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(eng *engine.Engine) *cli.App {
	app := &cli.App{
		Name:    "workspaced",
		Usage:   "Browser workspace state synchronization engine",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(eng),
			createCmd(eng),
			openCmd(eng),
			deleteCmd(eng),
			renameCmd(eng),
			pinCmd(eng),
			archiveCmd(eng),
			moveCmd(eng),
			currentCmd(eng),
			settingsCmd(eng),
			usageCmd(eng),
			exportCmd(eng),
			importCmd(eng),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all workspaces with their window bindings",
		Action: func(c *cli.Context) error {
			output, err := eng.List(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// createCmd creates the create command.
func createCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a workspace, optionally capturing an open window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name (default: generated)"},
			&cli.StringFlag{Name: "color", Aliases: []string{"c"}, Usage: "Palette color token (default: random)"},
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: "Window id to capture and bind"},
		},
		Action: func(c *cli.Context) error {
			output, err := eng.Create(c.Context, engine.CreateInput{
				Name:     c.String("name"),
				Color:    c.String("color"),
				WindowID: browser.WindowID(c.Int("window")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// openCmd creates the open command.
func openCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a workspace in a window, restoring its saved tabs",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("workspace id is required"))
			}
			window, err := eng.Open(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"id": c.Args().First(), "window_id": window})
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a workspace and its saved tabs",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("workspace id is required"))
			}
			id := c.Args().First()
			if err := eng.Delete(c.Context, id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"id": id, "deleted": true})
		},
	}
}

// renameCmd creates the rename command.
func renameCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a workspace",
		ArgsUsage: "<id> <name>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return outputError(errors.NewInvalidRequest("usage: rename <id> <name>"))
			}
			output, err := eng.Rename(c.Context, c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// pinCmd creates the pin command.
func pinCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "pin",
		Usage:     "Toggle a workspace's pinned flag",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("workspace id is required"))
			}
			output, err := eng.TogglePin(c.Context, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// archiveCmd creates the archive command.
func archiveCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Archive a workspace (or unarchive with --restore)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "restore", Aliases: []string{"r"}, Usage: "Unarchive instead"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("workspace id is required"))
			}
			output, err := eng.SetArchived(c.Context, c.Args().First(), !c.Bool("restore"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// moveCmd creates the move command.
func moveCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "move",
		Usage: "Move a live tab into a workspace",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "tab", Aliases: []string{"t"}, Required: true, Usage: "Live tab id"},
			&cli.StringFlag{Name: "workspace", Aliases: []string{"w"}, Required: true, Usage: "Target workspace id"},
		},
		Action: func(c *cli.Context) error {
			tab := browser.TabID(c.Int("tab"))
			id := c.String("workspace")
			if err := eng.MoveTab(c.Context, tab, id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"tab_id": tab, "workspace_id": id, "moved": true})
		},
	}
}

// currentCmd creates the current command.
func currentCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "current",
		Usage: "Show the workspace bound to a window",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Required: true, Usage: "Window id"},
		},
		Action: func(c *cli.Context) error {
			window := browser.WindowID(c.Int("window"))
			return outputJSON(map[string]any{
				"window_id": window,
				"workspace": eng.CurrentWorkspace(window),
			})
		},
	}
}

// settingsCmd creates the settings command. Without flags it prints the
// current settings; with flags it updates them.
func settingsCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or update settings",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "auto-save", Usage: "Capture window mutations automatically"},
			&cli.BoolFlag{Name: "include-pinned-tabs", Usage: "Include pinned tabs in snapshots"},
			&cli.BoolFlag{Name: "focus-existing-window", Usage: "Focus an open workspace window instead of duplicating it"},
			&cli.BoolFlag{Name: "capture-titles", Usage: "Store tab titles alongside URLs"},
		},
		Action: func(c *cli.Context) error {
			settings := eng.Settings()
			changed := false
			if c.IsSet("auto-save") {
				settings.AutoSave = c.Bool("auto-save")
				changed = true
			}
			if c.IsSet("include-pinned-tabs") {
				settings.IncludePinnedTabs = c.Bool("include-pinned-tabs")
				changed = true
			}
			if c.IsSet("focus-existing-window") {
				settings.FocusExistingWindow = c.Bool("focus-existing-window")
				changed = true
			}
			if c.IsSet("capture-titles") {
				settings.CaptureTitles = c.Bool("capture-titles")
				changed = true
			}
			if changed {
				if err := eng.SaveSettings(c.Context, settings); err != nil {
					return outputError(err)
				}
			}
			return outputJSON(settings)
		},
	}
}

// usageCmd creates the usage command.
func usageCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "usage",
		Usage: "Report approximate storage usage per partition",
		Action: func(c *cli.Context) error {
			output, err := eng.Usage(c.Context)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all workspaces as a markdown document",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: stdout)"},
		},
		Action: func(c *cli.Context) error {
			out, err := eng.List(c.Context)
			if err != nil {
				return outputError(err)
			}
			entries := make([]backup.Entry, 0, len(out.Workspaces))
			for _, ws := range out.Workspaces {
				snap, err := eng.Snapshot(c.Context, ws.ID)
				if err != nil {
					return outputError(err)
				}
				entries = append(entries, backup.Entry{Name: ws.Name, Color: ws.Color, Tabs: snap.Tabs})
			}
			document := backup.Render(entries)

			if path := c.String("path"); path != "" {
				if err := os.WriteFile(path, []byte(document), 0600); err != nil {
					return outputError(errors.NewInternal(err))
				}
				return outputJSON(map[string]any{"path": path, "workspaces": len(entries)})
			}
			fmt.Print(document)
			return nil
		},
	}
}

// importCmd creates the import command.
func importCmd(eng *engine.Engine) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import workspaces from a markdown document (file or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Input file path (default: stdin)"},
		},
		Action: func(c *cli.Context) error {
			var document []byte
			if path := c.String("path"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				document = data
			} else {
				if !stdinHasData() {
					return outputError(errors.NewInvalidRequest("document must be piped via stdin or given with --path"))
				}
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				document = data
			}

			entries, err := backup.Parse(document)
			if err != nil {
				return outputError(errors.NewInvalidRequest(err.Error()))
			}
			imported := make([]workspace.Workspace, 0, len(entries))
			for _, entry := range entries {
				ws, err := eng.CreateDetached(c.Context, entry.Name, entry.Color, entry.Tabs)
				if err != nil {
					return outputError(err)
				}
				imported = append(imported, *ws)
			}
			return outputJSON(map[string]any{"imported": len(imported), "workspaces": imported})
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if engErr, ok := err.(*errors.EngineError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", engErr.Code, engErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
