package ws

import "time"

// ConnInfo describes one live websocket connection. The identity is bound
// at handshake time and survives for the life of the socket only.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
