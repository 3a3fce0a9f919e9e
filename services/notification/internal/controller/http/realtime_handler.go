package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"storynest/pkg/apperr"
	"storynest/pkg/jwt"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// tableOwner lists the tables that can be watched. Tables with an owner
// column are private: non-admins must filter that column on their own id.
var tableOwner = map[string]string{
	"profiles":           "id",
	"content":            "",
	"feedback":           "",
	"feedback_responses": "",
	"favorites":          "user_id",
	"notifications":      "user_id",
}

type RealtimeHandler struct {
	source     realtime.Source
	jwtService *jwt.Service
	logger     *logger.Logger
}

func NewRealtimeHandler(source realtime.Source, jwtService *jwt.Service, logger *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		source:     source,
		jwtService: jwtService,
		logger:     logger,
	}
}

// authorize checks that claims (nil for anonymous callers) may watch topic.
func authorize(topic realtime.Topic, claims *jwt.Claims) error {
	owner, known := tableOwner[topic.Table]
	if !known {
		return apperr.Newf(apperr.KindInvalidInput, "Unknown table %q", topic.Table)
	}
	if owner == "" {
		return nil
	}
	if claims == nil {
		return apperr.New(apperr.KindUnauthorized, "Token required")
	}
	if claims.Role == string(models.UserTypeAdmin) {
		return nil
	}
	if topic.Filter.Column != owner || topic.Filter.Value != claims.UserID {
		return apperr.Newf(apperr.KindForbidden, "Subscribing to %s requires filter %s=eq.<your id>", topic.Table, owner)
	}
	return nil
}

// HandleWebSocket godoc
// @Summary      Watch row changes
// @Description  Upgrades to a websocket that streams change frames for one table. The first frame is "subscribed" or "error".
// @Tags         realtime
// @Security     APIKey
// @Param        table  query string true  "Table name"
// @Param        filter query string false "column=eq.value"
// @Param        events query string false "Comma separated: INSERT, UPDATE, DELETE or *"
// @Param        token  query string false "Access token, required for private tables"
// @Success      101
// @Failure      400  {object}  apperr.Error
// @Failure      401  {object}  apperr.Error
// @Failure      403  {object}  apperr.Error
// @Router       /realtime/ws [get]
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	topic, err := realtime.TopicFromQuery(c.Request.URL.Query())
	if err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, err.Error()))
		return
	}

	var claims *jwt.Claims
	if token := c.Query("token"); token != "" {
		if claims, err = h.jwtService.ValidateToken(token); err != nil {
			apperr.Abort(c, apperr.KindUnauthorized, "Invalid or expired token")
			return
		}
	}
	if err := authorize(topic, claims); err != nil {
		apperr.Respond(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	subscriber := "anonymous"
	if claims != nil {
		subscriber = claims.UserID
	}
	h.logger.Info("WebSocket connected for %s on %s", subscriber, topic.Table)

	session := &wsSession{conn: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	manager := realtime.NewManager(h.source, h.logger)
	defer manager.Unsubscribe()

	// Hold the write lock until the ack is out so no change frame precedes it.
	session.mu.Lock()
	err = manager.Subscribe(ctx, topic, func(change realtime.Change) {
		if err := session.write(realtime.Frame{Type: realtime.FrameChange, Change: &change}); err != nil {
			h.logger.Warn("Failed to write change frame: %v", err)
			cancel()
		}
	})
	if err != nil {
		session.writeLocked(realtime.Frame{
			Type:  realtime.FrameError,
			Error: "Failed to subscribe",
			Code:  string(apperr.KindUnavailable),
		})
		session.mu.Unlock()
		h.logger.Error("Failed to subscribe to %s: %v", topic.Table, err)
		return
	}
	ackErr := session.writeLocked(realtime.Frame{Type: realtime.FrameSubscribed})
	session.mu.Unlock()
	if ackErr != nil {
		return
	}

	go session.keepalive(ctx)
	session.readUntilClosed()

	h.logger.Info("WebSocket disconnected for %s on %s", subscriber, topic.Table)
}

type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) write(frame realtime.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(frame)
}

func (s *wsSession) writeLocked(frame realtime.Frame) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(frame)
}

func (s *wsSession) keepalive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains client messages; subscriptions are fixed for the
// life of the connection.
func (s *wsSession) readUntilClosed() {
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
