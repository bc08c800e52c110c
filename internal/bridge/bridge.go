// Package bridge is the websocket boundary between the engine and a browser
// extension. The extension keeps one connection to /host, over which the
// bridge issues window/tab RPCs and receives mutation events; UI clients
// subscribe to /events for state-change pushes.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/coder/websocket"

	"github.com/lumiador/Workspace-Extension/internal/browser"
)

// EventSink receives window lifecycle events relayed from the extension.
// The engine satisfies this.
type EventSink interface {
	OnWindowMutated(window browser.WindowID)
	OnWindowRemoved(window browser.WindowID)
}

// wireError is a structured failure in an RPC response.
type wireError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// wireMessage is the single frame shape used on the /host connection, in
// both directions. Requests carry id+method+params; responses id+result or
// id+error; extension-originated events carry event+params.
type wireMessage struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Event  string          `json:"event,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *wireError      `json:"error,omitempty"`
}

// Bridge relays between the engine and a connected browser extension.
// Implements browser.Host on the /host connection.
type Bridge struct {
	log  *slog.Logger
	sink EventSink

	hostMu  sync.Mutex
	host    *websocket.Conn
	pending map[int64]chan wireMessage
	nextID  atomic.Int64

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]struct{}
}

// New creates a Bridge. The sink may be set later with SetSink, since the
// engine and bridge reference each other.
func New(logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		log:     logger,
		pending: make(map[int64]chan wireMessage),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// SetSink wires the event sink. Events arriving before this are dropped.
func (b *Bridge) SetSink(sink EventSink) {
	b.hostMu.Lock()
	b.sink = sink
	b.hostMu.Unlock()
}

// Connected reports whether an extension is attached.
func (b *Bridge) Connected() bool {
	b.hostMu.Lock()
	defer b.hostMu.Unlock()
	return b.host != nil
}

// Routes registers the bridge endpoints on a mux.
func (b *Bridge) Routes(mux *http.ServeMux, version string) {
	mux.HandleFunc("/host", b.handleHost)
	mux.HandleFunc("/events", b.handleEvents)
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"connected": b.Connected(),
			"clients":   b.clientCount(),
			"version":   version,
		})
	})
}

// handleHost accepts the extension connection. A newly attaching extension
// displaces the previous one: after a browser restart the stale connection
// may not have failed yet.
func (b *Bridge) handleHost(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		b.log.Error("host accept failed", "err", err)
		return
	}

	b.hostMu.Lock()
	if b.host != nil {
		b.host.Close(websocket.StatusPolicyViolation, "replaced by a newer connection")
		b.failPendingLocked()
	}
	b.host = conn
	b.hostMu.Unlock()
	b.log.Info("extension attached", "remote", r.RemoteAddr)

	defer func() {
		b.hostMu.Lock()
		if b.host == conn {
			b.host = nil
			b.failPendingLocked()
		}
		b.hostMu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		b.log.Info("extension detached")
	}()

	// r.Context() is cancelled when the handler returns, which is exactly
	// this loop's lifetime.
	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var msg wireMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			b.log.Warn("malformed frame from extension", "err", err)
			continue
		}
		switch {
		case msg.Event != "":
			b.dispatchEvent(msg)
		case msg.ID != 0:
			b.deliver(msg)
		}
	}
}

// deliver routes an RPC response to its waiting caller.
func (b *Bridge) deliver(msg wireMessage) {
	b.hostMu.Lock()
	ch, ok := b.pending[msg.ID]
	if ok {
		delete(b.pending, msg.ID)
	}
	b.hostMu.Unlock()
	if !ok {
		b.log.Debug("response for unknown request", "id", msg.ID)
		return
	}
	ch <- msg
}

// failPendingLocked unblocks all in-flight calls when the connection drops.
// Caller holds hostMu.
func (b *Bridge) failPendingLocked() {
	for id, ch := range b.pending {
		delete(b.pending, id)
		ch <- wireMessage{ID: id, Error: &wireError{Code: "NOT_CONNECTED"}}
	}
}

// dispatchEvent relays a window lifecycle event to the sink.
func (b *Bridge) dispatchEvent(msg wireMessage) {
	b.hostMu.Lock()
	sink := b.sink
	b.hostMu.Unlock()
	if sink == nil {
		return
	}

	var params struct {
		WindowID browser.WindowID `json:"windowId"`
	}
	if msg.Params != nil {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			b.log.Warn("malformed event params", "event", msg.Event, "err", err)
			return
		}
	}

	switch msg.Event {
	case "window.mutated":
		sink.OnWindowMutated(params.WindowID)
	case "window.removed":
		sink.OnWindowRemoved(params.WindowID)
	default:
		b.log.Debug("ignoring unknown event", "event", msg.Event)
	}
}

// call issues one RPC over the extension connection and decodes the result
// into out (which may be nil for calls without a payload).
func (b *Bridge) call(ctx context.Context, method string, params any, out any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		raw = data
	}

	b.hostMu.Lock()
	conn := b.host
	if conn == nil {
		b.hostMu.Unlock()
		return browser.ErrNotConnected
	}
	id := b.nextID.Add(1)
	ch := make(chan wireMessage, 1)
	b.pending[id] = ch
	b.hostMu.Unlock()

	frame, err := json.Marshal(wireMessage{ID: id, Method: method, Params: raw})
	if err != nil {
		b.abandon(id)
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		b.abandon(id)
		return browser.ErrNotConnected
	}

	select {
	case <-ctx.Done():
		b.abandon(id)
		return ctx.Err()
	case resp := <-ch:
		if resp.Error != nil {
			return mapWireError(resp.Error)
		}
		if out != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("decode %s result: %w", method, err)
			}
		}
		return nil
	}
}

// abandon drops a pending slot after a failed send or cancelled wait.
func (b *Bridge) abandon(id int64) {
	b.hostMu.Lock()
	delete(b.pending, id)
	b.hostMu.Unlock()
}

// mapWireError converts extension error codes onto the host error values the
// engine branches on.
func mapWireError(we *wireError) error {
	switch we.Code {
	case "NO_WINDOW":
		return browser.ErrNoWindow
	case "NO_TAB":
		return browser.ErrNoTab
	case "NOT_CONNECTED":
		return browser.ErrNotConnected
	default:
		if we.Message != "" {
			return fmt.Errorf("extension error %s: %s", we.Code, we.Message)
		}
		return fmt.Errorf("extension error %s", we.Code)
	}
}

// Close shuts down all connections.
func (b *Bridge) Close() error {
	b.hostMu.Lock()
	if b.host != nil {
		b.host.Close(websocket.StatusGoingAway, "server shutting down")
		b.host = nil
	}
	b.failPendingLocked()
	b.hostMu.Unlock()

	b.clientsMu.Lock()
	for conn := range b.clients {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(b.clients, conn)
	}
	b.clientsMu.Unlock()
	return nil
}
