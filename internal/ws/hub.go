package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// BroadcastScope selects how far a chat message fans out.
type BroadcastScope string

const (
	// ScopeGlobal delivers every message to every open connection. This
	// mirrors the historical behavior and remains the default.
	ScopeGlobal BroadcastScope = "global"
	// ScopeSession delivers only to connections that have spoken in the
	// message's session.
	ScopeSession BroadcastScope = "session"
)

// ParseScope maps a config string to a scope, defaulting to global.
func ParseScope(s string) BroadcastScope {
	if s == string(ScopeSession) {
		return ScopeSession
	}
	return ScopeGlobal
}

// Hub is the registry of live websocket connections. Register/unregister
// are driven by connection lifecycle events; broadcast reads the same set.
// writeMu serializes writes because gorilla connections do not allow
// concurrent writers.
type Hub struct {
	scope    BroadcastScope
	log      *zap.SugaredLogger
	conns    map[*websocket.Conn]ConnInfo
	sessions map[string]map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
}

// NewHub creates an empty hub with the given broadcast scope.
func NewHub(log *zap.SugaredLogger, scope BroadcastScope) *Hub {
	return &Hub{
		scope:    scope,
		log:      log,
		conns:    make(map[*websocket.Conn]ConnInfo),
		sessions: make(map[string]map[*websocket.Conn]bool),
	}
}

// Register records a live connection and its bound identity.
func (h *Hub) Register(conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = info
}

// Unregister removes the connection from the registry and from any session
// rooms it joined. Safe to call for connections that were never registered.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	for sessionID, room := range h.sessions {
		delete(room, conn)
		if len(room) == 0 {
			delete(h.sessions, sessionID)
		}
	}
}

// BindSession associates a connection with a session room. The binding is
// established implicitly by the first relayed message naming the session.
func (h *Hub) BindSession(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[sessionID]; !ok {
		h.sessions[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.sessions[sessionID][conn] = true
}

// Info returns the registered ConnInfo for a connection.
func (h *Hub) Info(conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info, ok := h.conns[conn]
	return info, ok
}

// Broadcast fans the payload out according to the hub's scope. Connections
// that fail the write are closed and evicted; that is not an error for the
// remaining recipients.
func (h *Hub) Broadcast(sessionID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("broadcast marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*websocket.Conn, 0, len(h.conns))
	if h.scope == ScopeSession {
		for conn := range h.sessions[sessionID] {
			targets = append(targets, conn)
		}
	} else {
		for conn := range h.conns {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		if err := h.write(conn, payload); err != nil {
			h.log.Warnw("websocket write failed, evicting connection", "error", err)
			conn.Close()
			h.Unregister(conn)
		}
	}
}

// Send writes a payload to a single connection, used for error frames and
// handshake acknowledgements addressed to the originator only.
func (h *Hub) Send(conn *websocket.Conn, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.write(conn, payload)
}

func (h *Hub) write(conn *websocket.Conn, payload []byte) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}
