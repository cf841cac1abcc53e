package models

import (
	"encoding/json"
	"time"
)

// Sender types accepted on chat messages.
const (
	SenderTypeUser      = "user"
	SenderTypeCounselor = "counselor"
	SenderTypeSystem    = "system"
)

// ValidSenderType reports whether s is one of the known sender kinds.
func ValidSenderType(s string) bool {
	return s == SenderTypeUser || s == SenderTypeCounselor || s == SenderTypeSystem
}

// ChatSession is a bounded period of chat activity between a user and an
// (optionally anonymous) counselor. At most one session per user may be
// active at a time.
type ChatSession struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"userId"`
	CounselorID *string    `db:"counselor_id" json:"counselorId"`
	IsActive    bool       `db:"is_active" json:"isActive"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	EndedAt     *time.Time `db:"ended_at" json:"endedAt"`
}

// ChatMessage is one persisted message within a session. SenderID is nil
// for system-generated messages. CreatedAt is assigned at persistence time
// and is the sole ordering key.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	SessionID  string    `db:"session_id" json:"sessionId"`
	SenderID   *string   `db:"sender_id" json:"senderId"`
	SenderType string    `db:"sender_type" json:"senderType"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// FrameTypeChatMessage is the only inbound frame type the relay acts on.
const FrameTypeChatMessage = "chat_message"

// ParseInboundFrame decodes a raw websocket payload. Only malformed JSON
// is an error here; field-level validation happens in the relay.
func ParseInboundFrame(data []byte) (InboundFrame, error) {
	var frame InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return InboundFrame{}, err
	}
	return frame, nil
}

// InboundFrame is the structured payload clients send over the websocket.
type InboundFrame struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	SenderID   string `json:"senderId"`
	SenderType string `json:"senderType"`
	Message    string `json:"message"`
}

// ChatEvent is the outbound envelope broadcast after a successful persist.
type ChatEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
}

// ErrorEvent is sent to the originating connection only.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ConnectedEvent acknowledges a completed websocket handshake.
type ConnectedEvent struct {
	Type string `json:"type"`
}
