package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mindwell-service/internal/auth"
	"mindwell-service/internal/mocks"
	"mindwell-service/internal/models"
	"mindwell-service/internal/repositories"
)

type relayFixture struct {
	server      *httptest.Server
	tokens      *auth.TokenManager
	sessionRepo *mocks.SessionRepositoryMock
	messageRepo *mocks.MessageRepositoryMock
}

func newRelayFixture(t *testing.T, scope BroadcastScope) *relayFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	sessionRepo := new(mocks.SessionRepositoryMock)
	messageRepo := new(mocks.MessageRepositoryMock)
	hub := NewHub(zap.NewNop().Sugar(), scope)
	relay := NewRelayHandler(zap.NewNop().Sugar(), hub, sessionRepo, messageRepo, tokens)

	router := gin.New()
	router.GET("/ws", relay.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &relayFixture{server: server, tokens: tokens, sessionRepo: sessionRepo, messageRepo: messageRepo}
}

func (f *relayFixture) dial(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.Issue(userID)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Drain the handshake acknowledgement.
	var ack models.ConnectedEvent
	require.NoError(t, readFrame(t, conn, &ack))
	require.Equal(t, "connected", ack.Type)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn, v any) error {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func activeSession(id, userID string) models.ChatSession {
	return models.ChatSession{ID: id, UserID: userID, IsActive: true, CreatedAt: time.Now()}
}

func TestRelayRejectsMissingToken(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRelayPersistsAndBroadcastsToAllConnections(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	sender := "user-a"
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil).Once()
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1",
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == "user-a" }),
		models.SenderTypeUser, "hello").
		Return(models.ChatMessage{ID: "m1", SessionID: "sess-1", SenderID: &sender, SenderType: models.SenderTypeUser, Message: "hello", CreatedAt: time.Now()}, nil).Once()

	connA := f.dial(t, "user-a")
	connB := f.dial(t, "user-b")

	require.NoError(t, connA.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "hello",
	}))

	for _, conn := range []*websocket.Conn{connA, connB} {
		var event models.ChatEvent
		require.NoError(t, readFrame(t, conn, &event))
		require.Equal(t, models.FrameTypeChatMessage, event.Type)
		require.NotNil(t, event.Message)
		require.Equal(t, "hello", event.Message.Message)
		require.Equal(t, models.SenderTypeUser, event.Message.SenderType)
	}

	f.sessionRepo.AssertExpectations(t)
	f.messageRepo.AssertExpectations(t)
}

func TestRelayOverridesClientSuppliedSenderID(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	bound := "user-a"
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil).Once()
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1",
		mock.MatchedBy(func(id *string) bool { return id != nil && *id == "user-a" }),
		models.SenderTypeUser, "spoofed").
		Return(models.ChatMessage{ID: "m1", SessionID: "sess-1", SenderID: &bound, SenderType: models.SenderTypeUser, Message: "spoofed"}, nil).Once()

	conn := f.dial(t, "user-a")
	require.NoError(t, conn.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "someone-else",
		SenderType: models.SenderTypeUser, Message: "spoofed",
	}))

	var event models.ChatEvent
	require.NoError(t, readFrame(t, conn, &event))
	require.Equal(t, "user-a", *event.Message.SenderID)
	f.messageRepo.AssertExpectations(t)
}

func TestRelayInvalidSenderTypeErrorsOriginatorOnly(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	connA := f.dial(t, "user-a")
	connB := f.dial(t, "user-b")

	require.NoError(t, connA.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: "bogus", Message: "hi",
	}))

	var errEvent models.ErrorEvent
	require.NoError(t, readFrame(t, connA, &errEvent))
	require.Equal(t, "error", errEvent.Type)

	// Nothing was persisted or broadcast: the next frame connB sees is its
	// own message, not an error or the bogus one.
	f.sessionRepo.On("GetSession", mock.Anything, "sess-2").Return(activeSession("sess-2", "user-b"), nil).Once()
	senderB := "user-b"
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-2", mock.Anything, models.SenderTypeUser, "after").
		Return(models.ChatMessage{ID: "m2", SessionID: "sess-2", SenderID: &senderB, SenderType: models.SenderTypeUser, Message: "after"}, nil).Once()

	require.NoError(t, connB.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-2", SenderID: "user-b",
		SenderType: models.SenderTypeUser, Message: "after",
	}))

	var event models.ChatEvent
	require.NoError(t, readFrame(t, connB, &event))
	require.Equal(t, "after", event.Message.Message)

	f.messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, "sess-1", mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayMalformedFrameKeepsConnectionOpen(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	conn := f.dial(t, "user-a")
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var errEvent models.ErrorEvent
	require.NoError(t, readFrame(t, conn, &errEvent))
	require.Equal(t, "error", errEvent.Type)

	// The connection survives and can still relay.
	sender := "user-a"
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil).Once()
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1", mock.Anything, models.SenderTypeUser, "still here").
		Return(models.ChatMessage{ID: "m1", SessionID: "sess-1", SenderID: &sender, SenderType: models.SenderTypeUser, Message: "still here"}, nil).Once()

	require.NoError(t, conn.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "still here",
	}))

	var event models.ChatEvent
	require.NoError(t, readFrame(t, conn, &event))
	require.Equal(t, "still here", event.Message.Message)
}

func TestRelayIgnoresUnknownFrameTypes(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	conn := f.dial(t, "user-a")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))

	// No error frame comes back; the next valid frame is answered first.
	sender := "user-a"
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil).Once()
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1", mock.Anything, models.SenderTypeUser, "hello").
		Return(models.ChatMessage{ID: "m1", SessionID: "sess-1", SenderID: &sender, SenderType: models.SenderTypeUser, Message: "hello"}, nil).Once()

	require.NoError(t, conn.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "hello",
	}))

	var event models.ChatEvent
	require.NoError(t, readFrame(t, conn, &event))
	require.Equal(t, models.FrameTypeChatMessage, event.Type)
}

func TestRelayRejectsEndedSession(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	ended := time.Now()
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").
		Return(models.ChatSession{ID: "sess-1", UserID: "user-a", IsActive: false, EndedAt: &ended}, nil).Once()

	conn := f.dial(t, "user-a")
	require.NoError(t, conn.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "too late",
	}))

	var errEvent models.ErrorEvent
	require.NoError(t, readFrame(t, conn, &errEvent))
	require.Equal(t, "error", errEvent.Type)
	f.messageRepo.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRelayPersistenceFailureNotBroadcast(t *testing.T) {
	f := newRelayFixture(t, ScopeGlobal)

	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil)
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1", mock.Anything, models.SenderTypeUser, "doomed").
		Return(models.ChatMessage{}, repositories.ErrSessionNotFound).Once()

	conn := f.dial(t, "user-a")
	require.NoError(t, conn.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "doomed",
	}))

	var errEvent models.ErrorEvent
	require.NoError(t, readFrame(t, conn, &errEvent))
	require.Equal(t, "error", errEvent.Type)
}

func TestRelaySessionScopeLimitsFanOut(t *testing.T) {
	f := newRelayFixture(t, ScopeSession)

	senderA := "user-a"
	senderB := "user-b"
	f.sessionRepo.On("GetSession", mock.Anything, "sess-1").Return(activeSession("sess-1", "user-a"), nil)
	f.sessionRepo.On("GetSession", mock.Anything, "sess-2").Return(activeSession("sess-2", "user-b"), nil)
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-1", mock.Anything, models.SenderTypeUser, "for session one").
		Return(models.ChatMessage{ID: "m1", SessionID: "sess-1", SenderID: &senderA, SenderType: models.SenderTypeUser, Message: "for session one"}, nil).Once()
	f.messageRepo.On("CreateMessage", mock.Anything, "sess-2", mock.Anything, models.SenderTypeUser, "for session two").
		Return(models.ChatMessage{ID: "m2", SessionID: "sess-2", SenderID: &senderB, SenderType: models.SenderTypeUser, Message: "for session two"}, nil).Once()

	connA := f.dial(t, "user-a")
	connB := f.dial(t, "user-b")

	require.NoError(t, connA.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-1", SenderID: "user-a",
		SenderType: models.SenderTypeUser, Message: "for session one",
	}))

	var eventA models.ChatEvent
	require.NoError(t, readFrame(t, connA, &eventA))
	require.Equal(t, "sess-1", eventA.Message.SessionID)

	// connB never spoke in sess-1, so its first frame is its own sess-2
	// message rather than connA's.
	require.NoError(t, connB.WriteJSON(models.InboundFrame{
		Type: models.FrameTypeChatMessage, SessionID: "sess-2", SenderID: "user-b",
		SenderType: models.SenderTypeUser, Message: "for session two",
	}))

	var eventB models.ChatEvent
	require.NoError(t, readFrame(t, connB, &eventB))
	require.Equal(t, "sess-2", eventB.Message.SessionID)
}
