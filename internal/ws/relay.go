package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"mindwell-service/internal/auth"
	"mindwell-service/internal/models"
	"mindwell-service/internal/observability"
	"mindwell-service/internal/repositories"
)

// RelayHandler owns the /ws endpoint: it authenticates the handshake,
// registers the connection, and runs the persist-and-broadcast loop for
// inbound chat frames.
type RelayHandler struct {
	hub         *Hub
	sessionRepo repositories.SessionRepository
	messageRepo repositories.MessageRepository
	tokens      *auth.TokenManager
	log         *zap.SugaredLogger
}

// NewRelayHandler constructs a RelayHandler.
func NewRelayHandler(log *zap.SugaredLogger, hub *Hub, sessionRepo repositories.SessionRepository, messageRepo repositories.MessageRepository, tokens *auth.TokenManager) *RelayHandler {
	return &RelayHandler{
		hub:         hub,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		tokens:      tokens,
		log:         log,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection, binds the authenticated identity to it,
// and starts the read loop.
func (h *RelayHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("mindwell-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	userID, err := h.tokens.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Register(conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishConnEvent(ctx, "ws_connect", info, "")

	if err := h.hub.Send(conn, models.ConnectedEvent{Type: "connected"}); err != nil {
		h.log.Warnw("connected ack failed", "conn_id", info.ConnID, "error", err)
	}

	go h.readLoop(conn, info)
}

// readLoop drains inbound frames until the socket closes or errors, then
// unregisters the connection. A bad frame never ends the loop.
func (h *RelayHandler) readLoop(conn *websocket.Conn, info ConnInfo) {
	ctx := context.Background()
	var closeReason string
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishConnEvent(ctx, "ws_disconnect", info, closeReason)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishConnEvent(ctx, "ws_error", info, closeReason)
			}
			return
		}
		h.handleFrame(ctx, conn, info, data)
	}
}

// handleFrame runs the persist-and-broadcast algorithm for one inbound
// payload. All failures are terminal for this frame only: the originator
// gets an error frame and the connection stays open.
func (h *RelayHandler) handleFrame(ctx context.Context, conn *websocket.Conn, info ConnInfo, data []byte) {
	frame, err := models.ParseInboundFrame(data)
	if err != nil {
		h.sendError(conn, "invalid message format")
		return
	}

	// Unknown frame types are reserved for future use, not an error.
	if frame.Type != models.FrameTypeChatMessage {
		return
	}

	if frame.SessionID == "" || !models.ValidSenderType(frame.SenderType) || frame.Message == "" {
		h.sendError(conn, "invalid message format")
		return
	}

	// The sender identity of user messages is the one bound at handshake;
	// the client-supplied field is not trusted.
	senderID := &frame.SenderID
	if frame.SenderType == models.SenderTypeUser {
		senderID = &info.UserID
	} else if frame.SenderID == "" {
		senderID = nil
	}

	session, err := h.sessionRepo.GetSession(ctx, frame.SessionID)
	if err != nil {
		h.sendError(conn, "unknown session")
		return
	}
	if !session.IsActive {
		h.sendError(conn, "session has ended")
		return
	}

	msg, err := h.messageRepo.CreateMessage(ctx, frame.SessionID, senderID, frame.SenderType, frame.Message)
	if err != nil {
		h.log.Errorw("message persist failed", "session_id", frame.SessionID, "error", err)
		h.sendError(conn, "failed to store message")
		return
	}

	h.hub.BindSession(frame.SessionID, conn)
	observability.IncWSEvent("chat_message")
	h.hub.Broadcast(frame.SessionID, models.ChatEvent{Type: models.FrameTypeChatMessage, Message: &msg})
}

func (h *RelayHandler) sendError(conn *websocket.Conn, text string) {
	if err := h.hub.Send(conn, models.ErrorEvent{Type: "error", Message: text}); err != nil {
		h.log.Warnw("error frame write failed", "error", err)
	}
}

func (h *RelayHandler) publishConnEvent(ctx context.Context, event string, info ConnInfo, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			return header[len(prefix):]
		}
		return ""
	}
	return c.Query("token")
}
