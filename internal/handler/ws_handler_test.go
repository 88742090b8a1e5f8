package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/binay-das/draw-it/internal/app/ws"
	"github.com/binay-das/draw-it/internal/configs"
	"github.com/binay-das/draw-it/internal/handler"
	"github.com/binay-das/draw-it/internal/pkg/auth/jwt"
)

const (
	testOrigin = "http://localhost:3000"
	testSecret = "handler-test-secret"
)

type recordingGateway struct {
	mu      sync.Mutex
	upserts int
	appends []appendedMessage
}

type appendedMessage struct {
	slug    string
	userID  string
	payload string
}

func (g *recordingGateway) UpsertRoom(ctx context.Context, slug string, adminID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.upserts++
	return nil
}

func (g *recordingGateway) AppendMessage(ctx context.Context, slug string, userID string, payload string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.appends = append(g.appends, appendedMessage{slug: slug, userID: userID, payload: payload})
	return nil
}

func (g *recordingGateway) ListMessages(ctx context.Context, slug string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var messages []string
	for _, a := range g.appends {
		if a.slug == slug {
			messages = append(messages, a.payload)
		}
	}
	return messages, nil
}

func (g *recordingGateway) appendCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.appends)
}

// newTestServer wires the full handler stack around an in-memory gateway.
// Every call builds fresh rate limiters, so dial budgets do not leak between tests.
func newTestServer(t *testing.T) (*httptest.Server, *handler.AppDeps, *recordingGateway) {
	t.Helper()

	cfg := &configs.AppConfig{
		Environment:    "test",
		Port:           8080,
		AllowedOrigins: []string{testOrigin},
		JWTSecret:      testSecret,
		SlugMinLen:     3,
		SlugMaxLen:     10,
	}

	gateway := &recordingGateway{}
	registry := ws.NewRegistry()
	broadcaster := ws.NewBroadcaster(registry)

	deps := &handler.AppDeps{
		Config:   cfg,
		Registry: registry,
		Router:   ws.NewRouter(registry, broadcaster, gateway),
		Codec:    ws.NewCodec(cfg.SlugMinLen, cfg.SlugMaxLen),
		Gateway:  gateway,
		Verifier: jwt.NewVerifier(testSecret),
	}

	srv := httptest.NewServer(handler.Router(deps))
	t.Cleanup(srv.Close)

	return srv, deps, gateway
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, srv *httptest.Server, origin string, token string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	if token != "" {
		header.Set("Cookie", jwt.TokenCookieName+"="+token)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func signToken(t *testing.T, userID string, lifetime time.Duration) string {
	t.Helper()

	token, err := jwt.GenerateToken(userID, testSecret, lifetime)
	require.NoError(t, err)
	return token
}

// expectClose reads until the server's close frame arrives and asserts its code.
func expectClose(t *testing.T, conn *websocket.Conn, code int) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, _, err := conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	require.Equal(t, code, closeErr.Code)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))
	return decoded
}

func requireSilent(t *testing.T, conn *websocket.Conn) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))

	_, frame, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame, got %s", frame)
}

func TestHandshakeRejectsDisallowedOrigin(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, "http://evil.example.com", signToken(t, "alice", time.Hour))
	expectClose(t, conn, websocket.ClosePolicyViolation)
}

func TestHandshakeRejectsMissingOrigin(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, "", signToken(t, "alice", time.Hour))
	expectClose(t, conn, websocket.ClosePolicyViolation)
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, testOrigin, "")
	expectClose(t, conn, ws.CloseTokenMissing)
}

func TestHandshakeRejectsExpiredToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, testOrigin, signToken(t, "alice", -time.Minute))
	expectClose(t, conn, ws.CloseTokenExpired)
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	conn := dial(t, srv, testOrigin, "not-a-real-token")
	expectClose(t, conn, ws.CloseTokenInvalid)
}

func TestHandshakeRejectsDuplicateSession(t *testing.T) {
	srv, deps, _ := newTestServer(t)
	token := signToken(t, "alice", time.Hour)

	_ = dial(t, srv, testOrigin, token)
	require.Eventually(t, func() bool {
		return deps.Registry.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	second := dial(t, srv, testOrigin, token)
	expectClose(t, second, ws.CloseSessionActive)
}

func TestChatRoundTrip(t *testing.T) {
	srv, deps, gateway := newTestServer(t)

	connA := dial(t, srv, testOrigin, signToken(t, "alice", time.Hour))
	connB := dial(t, srv, testOrigin, signToken(t, "bob", time.Hour))

	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomSlug":"abc123"}`)))
	require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomSlug":"abc123"}`)))

	require.Eventually(t, func() bool {
		return deps.Registry.IsMember("alice", "abc123") && deps.Registry.IsMember("bob", "abc123")
	}, 2*time.Second, 10*time.Millisecond)

	chat := `{"type":"chat","roomSlug":"abc123","message":{"type":"rectangle","x":1,"y":2,"width":10,"height":5}}`
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(chat)))

	for _, conn := range []*websocket.Conn{connA, connB} {
		decoded := readEnvelope(t, conn)
		require.Equal(t, "chat", decoded["type"])
		require.Equal(t, "abc123", decoded["roomSlug"])

		message, ok := decoded["message"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "rectangle", message["type"])
		require.Equal(t, float64(10), message["width"])
	}

	require.Eventually(t, func() bool {
		return gateway.appendCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	gateway.mu.Lock()
	appended := gateway.appends[0]
	gateway.mu.Unlock()

	require.Equal(t, "abc123", appended.slug)
	require.Equal(t, "alice", appended.userID)
	require.JSONEq(t, `{"type":"rectangle","x":1,"y":2,"width":10,"height":5}`, appended.payload)
}

func TestChatFromNonMemberProducesNothing(t *testing.T) {
	srv, deps, gateway := newTestServer(t)

	connA := dial(t, srv, testOrigin, signToken(t, "alice", time.Hour))
	connC := dial(t, srv, testOrigin, signToken(t, "carol", time.Hour))

	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomSlug":"abc123"}`)))
	require.Eventually(t, func() bool {
		return deps.Registry.IsMember("alice", "abc123")
	}, 2*time.Second, 10*time.Millisecond)

	// carol never joined the room.
	chat := `{"type":"chat","roomSlug":"abc123","message":{"type":"rectangle","x":1,"y":2,"width":10,"height":5}}`
	require.NoError(t, connC.WriteMessage(websocket.TextMessage, []byte(chat)))

	requireSilent(t, connA)
	require.Equal(t, 0, gateway.appendCount())
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv, deps, _ := newTestServer(t)

	connA := dial(t, srv, testOrigin, signToken(t, "alice", time.Hour))

	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","roomSlug":"abc123"}`)))
	require.Eventually(t, func() bool {
		return deps.Registry.IsMember("alice", "abc123")
	}, 2*time.Second, 10*time.Millisecond)

	// An unknown type and a frame missing roomSlug are both dropped without
	// touching registry state or the connection.
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"unknown","roomSlug":"abc123"}`)))
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat"}`)))

	chat := `{"type":"chat","roomSlug":"abc123","message":{"type":"rectangle","x":1,"y":2,"width":10,"height":5}}`
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(chat)))

	decoded := readEnvelope(t, connA)
	require.Equal(t, "chat", decoded["type"])
	require.True(t, deps.Registry.IsMember("alice", "abc123"))
}

func TestDisconnectPrunesAllRooms(t *testing.T) {
	srv, deps, _ := newTestServer(t)

	connA := dial(t, srv, testOrigin, signToken(t, "alice", time.Hour))
	connB := dial(t, srv, testOrigin, signToken(t, "bob", time.Hour))

	for _, frame := range []string{
		`{"type":"join","roomSlug":"abc123"}`,
		`{"type":"join","roomSlug":"xyz789"}`,
	} {
		require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(frame)))
		require.NoError(t, connB.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	require.Eventually(t, func() bool {
		return deps.Registry.IsMember("bob", "abc123") && deps.Registry.IsMember("bob", "xyz789")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, connB.Close())

	require.Eventually(t, func() bool {
		return deps.Registry.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	chat := `{"type":"chat","roomSlug":"abc123","message":{"type":"rectangle","x":1,"y":2,"width":10,"height":5}}`
	require.NoError(t, connA.WriteMessage(websocket.TextMessage, []byte(chat)))

	decoded := readEnvelope(t, connA)
	require.Equal(t, "chat", decoded["type"])
}
