package bridge

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/lumiador/Workspace-Extension/internal/browser"
	"github.com/lumiador/Workspace-Extension/internal/workspace"
)

// engine.Notifier implementation: state changes fan out to every /events
// subscriber as JSON frames of the form {"event": ..., "data": ...}.

type eventFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// WorkspacesChanged pushes the full registry to subscribers.
func (b *Bridge) WorkspacesChanged(workspaces []workspace.Workspace) {
	b.broadcast(eventFrame{
		Event: "workspaces.changed",
		Data:  map[string]any{"workspaces": workspaces},
	})
}

// BindingChanged pushes a window binding change. workspaceID is empty when
// the window became unbound.
func (b *Bridge) BindingChanged(window browser.WindowID, workspaceID string) {
	b.broadcast(eventFrame{
		Event: "binding.changed",
		Data: map[string]any{
			"window_id":    window,
			"workspace_id": workspaceID,
		},
	})
}

// handleEvents accepts a subscriber connection and holds it open until the
// client goes away. Subscribers are write-only from the server's side.
func (b *Bridge) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		b.log.Error("events accept failed", "err", err)
		return
	}

	b.clientsMu.Lock()
	b.clients[conn] = struct{}{}
	b.clientsMu.Unlock()
	b.log.Debug("events subscriber connected", "remote", r.RemoteAddr)

	defer func() {
		b.clientsMu.Lock()
		delete(b.clients, conn)
		b.clientsMu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		b.log.Debug("events subscriber disconnected")
	}()

	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			return
		}
	}
}

// broadcast sends a frame to every subscriber. Slow or dead subscribers only
// lose their own frames.
func (b *Bridge) broadcast(frame eventFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		b.log.Error("failed to marshal event frame", "event", frame.Event, "err", err)
		return
	}

	b.clientsMu.RLock()
	clients := make([]*websocket.Conn, 0, len(b.clients))
	for conn := range b.clients {
		clients = append(clients, conn)
	}
	b.clientsMu.RUnlock()

	for _, conn := range clients {
		if err := conn.Write(context.Background(), websocket.MessageText, data); err != nil {
			b.log.Debug("failed to push event to subscriber", "err", err)
		}
	}
}

func (b *Bridge) clientCount() int {
	b.clientsMu.RLock()
	defer b.clientsMu.RUnlock()
	return len(b.clients)
}
