package client

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"storynest/pkg/apperr"
	"storynest/pkg/realtime"

	"github.com/gorilla/websocket"
)

const (
	realtimePath      = "/realtime/ws"
	handshakeTimeout  = 10 * time.Second
	realtimeBufferLen = 64
)

// Realtime returns a realtime.Source backed by the notification service's
// websocket gateway. Wrap it in a realtime.Manager to subscribe.
func (c *Client) Realtime() realtime.Source {
	return &wsSource{client: c}
}

type wsSource struct {
	client *Client
}

func (s *wsSource) Open(ctx context.Context, topic realtime.Topic) (realtime.Channel, error) {
	if err := topic.Validate(); err != nil {
		return nil, apperr.Wrap(err, apperr.KindInvalidInput, err.Error())
	}

	query := topic.Query()
	query.Set(apiKeyHeader, s.client.apiKey)
	// Public tables can be watched anonymously.
	if s.client.currentSession() != nil {
		token, err := s.client.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		query.Set("token", token)
	}

	endpoint := websocketURL(s.client.notificationURL) + apiPrefix + realtimePath + "?" + query.Encode()
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, resp, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			return nil, decodeError(resp)
		}
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "Realtime gateway unreachable")
	}

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	var ack realtime.Frame
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, apperr.Wrap(err, apperr.KindUnavailable, "Realtime handshake failed")
	}
	if ack.Type == realtime.FrameError {
		conn.Close()
		return nil, apperr.New(apperr.Kind(ack.Code), ack.Error)
	}
	conn.SetReadDeadline(time.Time{})

	ch := &wsChannel{
		conn:   conn,
		out:    make(chan realtime.Change, realtimeBufferLen),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go ch.pump()
	return ch, nil
}

func websocketURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

type wsChannel struct {
	conn   *websocket.Conn
	out    chan realtime.Change
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func (c *wsChannel) pump() {
	defer close(c.exited)
	defer close(c.out)

	for {
		var frame realtime.Frame
		if err := c.conn.ReadJSON(&frame); err != nil {
			return
		}
		if frame.Type != realtime.FrameChange || frame.Change == nil {
			continue
		}
		select {
		case c.out <- *frame.Change:
		case <-c.done:
			return
		}
	}
}

func (c *wsChannel) Changes() <-chan realtime.Change {
	return c.out
}

func (c *wsChannel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
		<-c.exited
	})
	return err
}
