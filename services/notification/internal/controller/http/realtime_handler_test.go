package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"storynest/pkg/jwt"
	"storynest/pkg/logger"
	"storynest/pkg/realtime"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateway struct {
	server *httptest.Server
	broker *realtime.MemoryBroker
	jwt    *jwt.Service
}

func newGateway(t *testing.T) *gateway {
	g := &gateway{
		broker: realtime.NewMemoryBroker(),
		jwt:    jwt.NewService("test-secret"),
	}
	handler := NewRealtimeHandler(g.broker, g.jwt, logger.New())

	router := setupNotificationTestRouter()
	router.GET("/realtime/ws", handler.HandleWebSocket)
	g.server = httptest.NewServer(router)
	t.Cleanup(g.server.Close)
	return g
}

func (g *gateway) dial(t *testing.T, query url.Values) (*websocket.Conn, *http.Response, error) {
	endpoint := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/realtime/ws?" + query.Encode()
	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func (g *gateway) token(t *testing.T, userID, role string) string {
	token, err := g.jwt.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func readFrame(t *testing.T, conn *websocket.Conn) realtime.Frame {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame realtime.Frame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandleWebSocket_StreamsOwnNotifications(t *testing.T) {
	g := newGateway(t)
	query := url.Values{
		"table":  {"notifications"},
		"filter": {"user_id=eq.user-1"},
		"events": {"INSERT"},
		"token":  {g.token(t, "user-1", "child")},
	}
	conn, _, err := g.dial(t, query)
	require.NoError(t, err)
	assert.Equal(t, realtime.FrameSubscribed, readFrame(t, conn).Type)

	ctx := context.Background()
	other, err := realtime.NewChange("notifications", realtime.EventInsert, realtime.Row{"user_id": "user-2", "title": "not mine"}, nil)
	require.NoError(t, err)
	mine, err := realtime.NewChange("notifications", realtime.EventInsert, realtime.Row{"user_id": "user-1", "title": "Welcome"}, nil)
	require.NoError(t, err)
	require.NoError(t, g.broker.Publish(ctx, other))
	require.NoError(t, g.broker.Publish(ctx, mine))

	frame := readFrame(t, conn)
	assert.Equal(t, realtime.FrameChange, frame.Type)
	require.NotNil(t, frame.Change)
	assert.Equal(t, "Welcome", frame.Change.New["title"])
}

func TestHandleWebSocket_PublicTableIsAnonymous(t *testing.T) {
	g := newGateway(t)
	conn, _, err := g.dial(t, url.Values{"table": {"content"}})
	require.NoError(t, err)
	assert.Equal(t, realtime.FrameSubscribed, readFrame(t, conn).Type)

	require.Eventually(t, func() bool { return g.broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return g.broker.Subscribers() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHandleWebSocket_OwnProfileOnly(t *testing.T) {
	g := newGateway(t)
	conn, _, err := g.dial(t, url.Values{
		"table":  {"profiles"},
		"filter": {"id=eq.user-1"},
		"token":  {g.token(t, "user-1", "child")},
	})
	require.NoError(t, err)
	assert.Equal(t, realtime.FrameSubscribed, readFrame(t, conn).Type)

	ctx := context.Background()
	other, err := realtime.NewChange("profiles", realtime.EventUpdate, realtime.Row{"id": "user-2", "email": "other@example.com"}, nil)
	require.NoError(t, err)
	mine, err := realtime.NewChange("profiles", realtime.EventUpdate, realtime.Row{"id": "user-1", "email": "me@example.com"}, nil)
	require.NoError(t, err)
	require.NoError(t, g.broker.Publish(ctx, other))
	require.NoError(t, g.broker.Publish(ctx, mine))

	frame := readFrame(t, conn)
	require.NotNil(t, frame.Change)
	assert.Equal(t, "me@example.com", frame.Change.New["email"])
}

func TestHandleWebSocket_AdminSeesEveryone(t *testing.T) {
	g := newGateway(t)
	conn, _, err := g.dial(t, url.Values{
		"table": {"favorites"},
		"token": {g.token(t, "admin-1", "admin")},
	})
	require.NoError(t, err)
	assert.Equal(t, realtime.FrameSubscribed, readFrame(t, conn).Type)
}

func TestHandleWebSocket_Rejections(t *testing.T) {
	g := newGateway(t)
	child := g.token(t, "user-1", "child")

	tests := []struct {
		name   string
		query  url.Values
		status int
	}{
		{"missing table", url.Values{}, http.StatusBadRequest},
		{"unknown table", url.Values{"table": {"identities"}}, http.StatusBadRequest},
		{"bad filter", url.Values{"table": {"content"}, "filter": {"title=like.x"}}, http.StatusBadRequest},
		{"bad event", url.Values{"table": {"content"}, "events": {"TRUNCATE"}}, http.StatusBadRequest},
		{"private without token", url.Values{"table": {"notifications"}, "filter": {"user_id=eq.user-1"}}, http.StatusUnauthorized},
		{"invalid token", url.Values{"table": {"content"}, "token": {"garbage"}}, http.StatusUnauthorized},
		{"someone else's rows", url.Values{"table": {"notifications"}, "filter": {"user_id=eq.user-2"}, "token": {child}}, http.StatusForbidden},
		{"unfiltered private table", url.Values{"table": {"favorites"}, "token": {child}}, http.StatusForbidden},
		{"anonymous profiles", url.Values{"table": {"profiles"}}, http.StatusUnauthorized},
		{"all profiles", url.Values{"table": {"profiles"}, "token": {child}}, http.StatusForbidden},
		{"someone else's profile", url.Values{"table": {"profiles"}, "filter": {"id=eq.user-2"}, "token": {child}}, http.StatusForbidden},
		{"profiles by user_id", url.Values{"table": {"profiles"}, "filter": {"user_id=eq.user-1"}, "token": {child}}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := g.dial(t, tt.query)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
