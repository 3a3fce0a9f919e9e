package client

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"sync"

	"storynest/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
)

type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEvent = "USER_UPDATED"
)

// AuthListener is called after the session changes, outside any client lock.
// session is nil after sign-out. Sessions are never mutated once published.
type AuthListener func(event AuthEvent, session *Session)

type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps cancel so it runs at most once.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

func (c *Client) OnAuthStateChange(fn AuthListener) *Subscription {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners[id] = fn
	c.mu.Unlock()

	return &Subscription{cancel: func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}}
}

func (c *Client) setSession(event AuthEvent, session *Session) {
	c.mu.Lock()
	c.session = session
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]AuthListener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(event, session)
	}
}

func (c *Client) currentSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := c.send(ctx, request{
		method: http.MethodPost,
		base:   c.authURL,
		path:   "/auth/signup",
		body:   credentials{Email: email, Password: password},
	}, &session)
	if err != nil {
		return nil, err
	}
	c.setSession(EventSignedIn, &session)
	return &session, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := c.tokenGrant(ctx, "password", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	c.setSession(EventSignedIn, session)
	return session, nil
}

// SignOut revokes the session server-side when possible and always clears it
// locally.
func (c *Client) SignOut(ctx context.Context) error {
	session := c.currentSession()
	if session == nil {
		return nil
	}

	err := c.send(ctx, request{
		method: http.MethodPost,
		base:   c.authURL,
		path:   "/auth/logout",
		token:  session.AccessToken,
	}, nil)
	c.setSession(EventSignedOut, nil)

	if apperr.Is(err, apperr.KindUnauthorized) {
		return nil
	}
	return err
}

func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	return c.refresh(ctx, nil)
}

func (c *Client) ExchangeCodeForSession(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Missing authorization code")
	}
	session, err := c.tokenGrant(ctx, "authorization_code", map[string]string{"code": code})
	if err != nil {
		return nil, err
	}
	c.setSession(EventSignedIn, session)
	return session, nil
}

// SetSession adopts tokens obtained out of band, such as from a redirect
// fragment. An expired access token is exchanged using the refresh token.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Both access and refresh tokens are required")
	}

	var user User
	err := c.send(ctx, request{
		method: http.MethodGet,
		base:   c.authURL,
		path:   "/auth/user",
		token:  accessToken,
	}, &user)
	if apperr.Is(err, apperr.KindUnauthorized) {
		session, err := c.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
		if err != nil {
			return nil, err
		}
		c.setSession(EventSignedIn, session)
		return session, nil
	}
	if err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken:  accessToken,
		TokenType:    "bearer",
		RefreshToken: refreshToken,
		ExpiresAt:    tokenExpiry(accessToken),
		User:         user,
	}
	if session.ExpiresAt > 0 {
		session.ExpiresIn = int(session.ExpiresAt - c.now().Unix())
	}
	c.setSession(EventSignedIn, session)
	return session, nil
}

// HandleCallback completes a redirect sign-in. It accepts either a one-time
// code in the query string or tokens in the URL fragment, and surfaces an
// error carried in either place.
func (c *Client) HandleCallback(ctx context.Context, rawURL string) (*Session, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInvalidInput, "Invalid callback URL")
	}
	fragment, _ := url.ParseQuery(u.Fragment)
	query := u.Query()

	for _, values := range []url.Values{query, fragment} {
		if msg := values.Get("error_description"); msg != "" || values.Get("error") != "" {
			if msg == "" {
				msg = values.Get("error")
			}
			kind := apperr.Kind(values.Get("error_code"))
			if kind == "" {
				kind = apperr.KindUnauthorized
			}
			return nil, apperr.New(kind, msg)
		}
	}

	if code := query.Get("code"); code != "" {
		return c.ExchangeCodeForSession(ctx, code)
	}
	if access := fragment.Get("access_token"); access != "" {
		return c.SetSession(ctx, access, fragment.Get("refresh_token"))
	}
	return nil, apperr.New(apperr.KindInvalidInput, "Callback URL carries no code or tokens")
}

// GetSession returns the current session, refreshing it if it is about to
// expire. It returns nil without error when nobody is signed in.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	session := c.currentSession()
	if session == nil {
		return nil, nil
	}
	if !session.Expired(c.now(), refreshLeeway) {
		return session, nil
	}
	return c.refresh(ctx, session)
}

func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.authURL, path: "/auth/user"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword asks for a recovery email. It succeeds whether or not the
// address is registered.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.send(ctx, request{
		method: http.MethodPost,
		base:   c.authURL,
		path:   "/auth/recover",
		body:   map[string]string{"email": email},
	}, nil)
}

func (c *Client) UpdatePassword(ctx context.Context, password string) (*User, error) {
	var user User
	err := c.sendAuthed(ctx, request{
		method: http.MethodPut,
		base:   c.authURL,
		path:   "/auth/user",
		body:   map[string]string{"password": password},
	}, &user)
	if err != nil {
		return nil, err
	}

	if current := c.currentSession(); current != nil {
		updated := *current
		updated.User = user
		c.setSession(EventUserUpdated, &updated)
	}
	return &user, nil
}

func (c *Client) tokenGrant(ctx context.Context, grantType string, body interface{}) (*Session, error) {
	var session Session
	err := c.send(ctx, request{
		method: http.MethodPost,
		base:   c.authURL,
		path:   "/auth/token",
		query:  url.Values{"grant_type": {grantType}},
		body:   body,
	}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	session := c.currentSession()
	if session == nil {
		return "", apperr.New(apperr.KindUnauthorized, "Not signed in")
	}
	if session.Expired(c.now(), refreshLeeway) {
		var err error
		if session, err = c.refresh(ctx, session); err != nil {
			return "", err
		}
	}
	return session.AccessToken, nil
}

// refresh rotates the refresh token. stale is the session the caller saw; if
// another goroutine already replaced it the newer session is returned as is.
func (c *Client) refresh(ctx context.Context, stale *Session) (*Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	current := c.currentSession()
	if current == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "Not signed in")
	}
	if stale != nil && current != stale && !current.Expired(c.now(), refreshLeeway) {
		return current, nil
	}

	session, err := c.tokenGrant(ctx, "refresh_token", map[string]string{"refresh_token": current.RefreshToken})
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			c.setSession(EventSignedOut, nil)
		}
		return nil, err
	}
	c.setSession(EventTokenRefreshed, session)
	return session, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// services verify every token they receive.
func tokenExpiry(token string) int64 {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return 0
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}
