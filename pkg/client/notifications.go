package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type NotificationQuery struct {
	Limit      int
	Offset     int
	UnreadOnly bool
}

// ListNotifications returns the caller's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, q NotificationQuery) (*NotificationPage, error) {
	query := url.Values{}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.UnreadOnly {
		query.Set("unread", "true")
	}

	var page NotificationPage
	err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.notificationURL, path: "/notifications", query: query}, &page)
	if err != nil {
		return nil, err
	}
	if page.Notifications == nil {
		page.Notifications = []Notification{}
	}
	return &page, nil
}

// MarkNotificationAsRead is idempotent.
func (c *Client) MarkNotificationAsRead(ctx context.Context, id string) (*Notification, error) {
	var n Notification
	err := c.sendAuthed(ctx, request{
		method: http.MethodPost,
		base:   c.notificationURL,
		path:   "/notifications/" + url.PathEscape(id) + "/read",
	}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllNotificationsAsRead returns how many notifications changed.
func (c *Client) MarkAllNotificationsAsRead(ctx context.Context) (int64, error) {
	var resp struct {
		Updated int64 `json:"updated"`
	}
	err := c.sendAuthed(ctx, request{method: http.MethodPost, base: c.notificationURL, path: "/notifications/read-all"}, &resp)
	return resp.Updated, err
}

// CreateNotification is admin only.
func (c *Client) CreateNotification(ctx context.Context, n NewNotification) (*Notification, error) {
	var created Notification
	err := c.sendAuthed(ctx, request{method: http.MethodPost, base: c.notificationURL, path: "/notifications", body: n}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// BroadcastNotification is admin only. Broadcasts to everyone are queued.
func (c *Client) BroadcastNotification(ctx context.Context, b Broadcast) (*BroadcastResult, error) {
	var result BroadcastResult
	err := c.sendAuthed(ctx, request{method: http.MethodPost, base: c.notificationURL, path: "/notifications/broadcast", body: b}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
