package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lumiador/Workspace-Extension/internal/backup"
	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/engine"
	"github.com/lumiador/Workspace-Extension/internal/errors"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

// Request types for each tool

// CreateRequest represents the arguments for workspace_create.
type CreateRequest struct {
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
	WindowID int    `json:"window_id,omitempty"`
}

// IDRequest represents the arguments for tools addressing one workspace.
type IDRequest struct {
	ID string `json:"id"`
}

// RenameRequest represents the arguments for workspace_rename.
type RenameRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArchiveRequest represents the arguments for workspace_archive.
type ArchiveRequest struct {
	ID       string `json:"id"`
	Archived *bool  `json:"archived,omitempty"`
}

// MoveTabRequest represents the arguments for workspace_move_tab.
type MoveTabRequest struct {
	TabID       int    `json:"tab_id"`
	WorkspaceID string `json:"workspace_id"`
}

// CurrentRequest represents the arguments for workspace_current.
type CurrentRequest struct {
	WindowID int `json:"window_id"`
}

// SettingsSaveRequest represents the arguments for settings_save. Pointer
// fields distinguish "omitted" from "false".
type SettingsSaveRequest struct {
	AutoSave            *bool `json:"auto_save,omitempty"`
	IncludePinnedTabs   *bool `json:"include_pinned_tabs,omitempty"`
	FocusExistingWindow *bool `json:"focus_existing_window,omitempty"`
	CaptureTitles       *bool `json:"capture_titles,omitempty"`
}

// ImportRequest represents the arguments for workspace_import.
type ImportRequest struct {
	Document string `json:"document"`
}

// Handler implementations

// HandleList handles the workspace_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.engine.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleCreate handles the workspace_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.engine.Create(ctx, engine.CreateInput{
		Name:     input.Name,
		Color:    input.Color,
		WindowID: browser.WindowID(input.WindowID),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleOpen handles the workspace_open tool call.
func (h *Handlers) HandleOpen(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	window, err := h.engine.Open(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "window_id": window})
}

// HandleDelete handles the workspace_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	if err := h.engine.Delete(ctx, input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "deleted": true})
}

// HandleRename handles the workspace_rename tool call.
func (h *Handlers) HandleRename(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RenameRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	result, err := h.engine.Rename(ctx, input.ID, input.Name)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleTogglePin handles the workspace_toggle_pin tool call.
func (h *Handlers) HandleTogglePin(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	result, err := h.engine.TogglePin(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleArchive handles the workspace_archive tool call.
func (h *Handlers) HandleArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ArchiveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	archived := true
	if input.Archived != nil {
		archived = *input.Archived
	}
	result, err := h.engine.SetArchived(ctx, input.ID, archived)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleMoveTab handles the workspace_move_tab tool call.
func (h *Handlers) HandleMoveTab(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MoveTabRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.WorkspaceID == "" {
		return errorResult(errors.NewInvalidRequest("workspace_id is required")), nil
	}

	if err := h.engine.MoveTab(ctx, browser.TabID(input.TabID), input.WorkspaceID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"tab_id": input.TabID, "workspace_id": input.WorkspaceID, "moved": true})
}

// HandleCurrent handles the workspace_current tool call.
func (h *Handlers) HandleCurrent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CurrentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	ws := h.engine.CurrentWorkspace(browser.WindowID(input.WindowID))
	return successResult(map[string]any{"window_id": input.WindowID, "workspace": ws})
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.engine.Settings())
}

// HandleSettingsSave handles the settings_save tool call.
func (h *Handlers) HandleSettingsSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	settings := h.engine.Settings()
	if input.AutoSave != nil {
		settings.AutoSave = *input.AutoSave
	}
	if input.IncludePinnedTabs != nil {
		settings.IncludePinnedTabs = *input.IncludePinnedTabs
	}
	if input.FocusExistingWindow != nil {
		settings.FocusExistingWindow = *input.FocusExistingWindow
	}
	if input.CaptureTitles != nil {
		settings.CaptureTitles = *input.CaptureTitles
	}

	if err := h.engine.SaveSettings(ctx, settings); err != nil {
		return errorResult(err), nil
	}
	return successResult(settings)
}

// HandleUsage handles the storage_usage tool call.
func (h *Handlers) HandleUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := h.engine.Usage(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleExport handles the workspace_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	document, count, err := exportDocument(ctx, h.engine)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"document": document, "workspaces": count})
}

// HandleImport handles the workspace_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Document == "" {
		return errorResult(errors.NewInvalidRequest("document is required")), nil
	}

	imported, err := importDocument(ctx, h.engine, []byte(input.Document))
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"imported": len(imported), "workspaces": imported})
}

// exportDocument assembles the backup document for every workspace.
func exportDocument(ctx context.Context, eng *engine.Engine) (string, int, error) {
	out, err := eng.List(ctx)
	if err != nil {
		return "", 0, err
	}
	entries := make([]backup.Entry, 0, len(out.Workspaces))
	for _, ws := range out.Workspaces {
		snap, err := eng.Snapshot(ctx, ws.ID)
		if err != nil {
			return "", 0, err
		}
		entries = append(entries, backup.Entry{Name: ws.Name, Color: ws.Color, Tabs: snap.Tabs})
	}
	return backup.Render(entries), len(entries), nil
}

// importDocument creates a detached workspace per parsed entry. Imports are
// additive; existing workspaces are never touched.
func importDocument(ctx context.Context, eng *engine.Engine, document []byte) ([]workspace.Workspace, error) {
	entries, err := backup.Parse(document)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	imported := make([]workspace.Workspace, 0, len(entries))
	for _, entry := range entries {
		ws, err := eng.CreateDetached(ctx, entry.Name, entry.Color, entry.Tabs)
		if err != nil {
			return nil, err
		}
		imported = append(imported, *ws)
	}
	return imported, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if engErr, ok := err.(*errors.EngineError); ok {
		errorObj := map[string]any{
			"code":    engErr.Code,
			"message": engErr.Message,
			"status":  engErr.Status,
		}
		if engErr.Code != errors.ErrInternal && engErr.Details != nil {
			errorObj["details"] = engErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
