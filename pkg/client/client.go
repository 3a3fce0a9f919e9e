// Package client is the Go SDK for the StoryNest services. It keeps the
// current auth session in memory, refreshes it before it expires, and
// reports every failure as an *apperr.Error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storynest/pkg/apperr"
)

const (
	apiPrefix      = "/api/v1"
	apiKeyHeader   = "apikey"
	refreshLeeway  = 30 * time.Second
	defaultTimeout = 30 * time.Second
)

type Config struct {
	// BaseURL serves every API unless a per-service URL overrides it.
	BaseURL string
	APIKey  string

	AuthURL         string
	ContentURL      string
	NotificationURL string

	HTTPClient *http.Client
}

type Client struct {
	authURL         string
	contentURL      string
	notificationURL string
	apiKey          string
	http            *http.Client
	now             func() time.Time

	mu        sync.Mutex
	session   *Session
	listeners map[int]AuthListener
	nextID    int
	// serializes refreshes so a rotated token is used once
	refreshMu sync.Mutex
}

// New fails when the endpoint or API key is missing.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.New(apperr.KindConfig, "client: APIKey is required")
	}
	if cfg.BaseURL == "" && (cfg.AuthURL == "" || cfg.ContentURL == "" || cfg.NotificationURL == "") {
		return nil, apperr.New(apperr.KindConfig, "client: BaseURL is required")
	}

	resolve := func(override string) (string, error) {
		raw := override
		if raw == "" {
			raw = cfg.BaseURL
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return "", apperr.Newf(apperr.KindConfig, "client: invalid URL %q", raw)
		}
		return strings.TrimRight(raw, "/"), nil
	}

	c := &Client{
		apiKey:    cfg.APIKey,
		http:      cfg.HTTPClient,
		now:       time.Now,
		listeners: make(map[int]AuthListener),
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}

	var err error
	if c.authURL, err = resolve(cfg.AuthURL); err != nil {
		return nil, err
	}
	if c.contentURL, err = resolve(cfg.ContentURL); err != nil {
		return nil, err
	}
	if c.notificationURL, err = resolve(cfg.NotificationURL); err != nil {
		return nil, err
	}
	return c, nil
}

type request struct {
	method string
	base   string
	path   string
	query  url.Values
	body   interface{}
	// raw overrides body with a pre-encoded payload
	raw         io.Reader
	contentType string
	token       string
}

func (c *Client) send(ctx context.Context, r request, out interface{}) error {
	endpoint := r.base + apiPrefix + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.raw != nil:
		body = r.raw
	case r.body != nil:
		payload, err := json.Marshal(r.body)
		if err != nil {
			return apperr.Wrap(err, apperr.KindInvalidInput, "Failed to encode request")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInvalidInput, "Failed to build request")
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return apperr.Wrap(ctx.Err(), apperr.KindUnavailable, "Request cancelled")
		}
		return apperr.Wrap(err, apperr.KindUnavailable, "Service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "Failed to decode response")
	}
	return nil
}

// sendAuthed attaches the current access token, refreshing it first when it
// is about to expire.
func (c *Client) sendAuthed(ctx context.Context, r request, out interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	r.token = token
	return c.send(ctx, r, out)
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.Unmarshal(raw, &body)

	kind := apperr.Kind(body.Code)
	if kind == "" {
		kind = apperr.KindFromStatus(resp.StatusCode)
	}
	message := body.Error
	if message == "" {
		message = fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	return apperr.New(kind, message)
}
