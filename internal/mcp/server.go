package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lumiador/Workspace-Extension/internal/engine"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"workspace_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"workspace_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"workspace_open": {
		def:     openToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleOpen },
	},
	"workspace_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"workspace_rename": {
		def:     renameToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRename },
	},
	"workspace_toggle_pin": {
		def:     togglePinToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTogglePin },
	},
	"workspace_archive": {
		def:     archiveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArchive },
	},
	"workspace_move_tab": {
		def:     moveTabToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMoveTab },
	},
	"workspace_current": {
		def:     currentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCurrent },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_save": {
		def:     settingsSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsSave },
	},
	"storage_usage": {
		def:     usageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUsage },
	},
	"workspace_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"workspace_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the workspace tools registered.
// Tools listed in disabledTools are excluded from registration.
func NewServer(eng *engine.Engine, disabledTools []string, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"workspaced",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(eng)

	disabled := make(map[string]bool, len(disabledTools))
	for _, name := range disabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(eng *engine.Engine, disabledTools []string, version string) error {
	s := NewServer(eng, disabledTools, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
