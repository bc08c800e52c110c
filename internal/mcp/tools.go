package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("workspace_list",
	mcp.WithDescription("List all workspaces with their live window bindings."),
)

var createToolDef = mcp.NewTool("workspace_create",
	mcp.WithDescription("Create a workspace, optionally capturing an open window's tabs as its initial snapshot."),
	mcp.WithString("name", mcp.Description("Display name. Defaults to a generated name.")),
	mcp.WithString("color", mcp.Description("Palette color token. Defaults to a random one.")),
	mcp.WithNumber("window_id", mcp.Description("Window to capture and bind. Omit to create an empty workspace.")),
)

var openToolDef = mcp.NewTool("workspace_open",
	mcp.WithDescription("Open a workspace in a window, restoring its saved tabs, or focus its existing window."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workspace id.")),
)

var deleteToolDef = mcp.NewTool("workspace_delete",
	mcp.WithDescription("Delete a workspace, its saved tabs, and any window binding."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workspace id.")),
)

var renameToolDef = mcp.NewTool("workspace_rename",
	mcp.WithDescription("Rename a workspace."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workspace id.")),
	mcp.WithString("name", mcp.Required(), mcp.Description("New display name.")),
)

var togglePinToolDef = mcp.NewTool("workspace_toggle_pin",
	mcp.WithDescription("Toggle a workspace's pinned flag."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workspace id.")),
)

var archiveToolDef = mcp.NewTool("workspace_archive",
	mcp.WithDescription("Archive or unarchive a workspace."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workspace id.")),
	mcp.WithBoolean("archived", mcp.Description("Target archived state. Defaults to true.")),
)

var moveTabToolDef = mcp.NewTool("workspace_move_tab",
	mcp.WithDescription("Move a live tab into a workspace. Open workspaces receive the live tab; closed ones absorb it into their saved snapshot."),
	mcp.WithNumber("tab_id", mcp.Required(), mcp.Description("Live tab id.")),
	mcp.WithString("workspace_id", mcp.Required(), mcp.Description("Target workspace id.")),
)

var currentToolDef = mcp.NewTool("workspace_current",
	mcp.WithDescription("Return the workspace bound to a window, if any."),
	mcp.WithNumber("window_id", mcp.Required(), mcp.Description("Window id.")),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Return the current settings."),
)

var settingsSaveToolDef = mcp.NewTool("settings_save",
	mcp.WithDescription("Update settings. Omitted fields keep their current value."),
	mcp.WithBoolean("auto_save", mcp.Description("Capture window mutations automatically.")),
	mcp.WithBoolean("include_pinned_tabs", mcp.Description("Include pinned tabs in snapshots.")),
	mcp.WithBoolean("focus_existing_window", mcp.Description("Focus an already-open workspace window instead of opening a duplicate.")),
	mcp.WithBoolean("capture_titles", mcp.Description("Store tab titles alongside URLs.")),
)

var usageToolDef = mcp.NewTool("storage_usage",
	mcp.WithDescription("Report approximate storage usage per partition."),
)

var exportToolDef = mcp.NewTool("workspace_export",
	mcp.WithDescription("Export all workspaces and their saved tabs as a markdown document."),
)

var importToolDef = mcp.NewTool("workspace_import",
	mcp.WithDescription("Import workspaces from a markdown document produced by workspace_export."),
	mcp.WithString("document", mcp.Required(), mcp.Description("Markdown document to import.")),
)
