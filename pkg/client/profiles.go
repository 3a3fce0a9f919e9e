package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	"storynest/pkg/apperr"
	"storynest/pkg/models"
)

// GetOrCreateProfile returns the signed-in user's profile, creating the
// default one if it does not exist yet.
func (c *Client) GetOrCreateProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.authURL, path: "/profiles/me"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileForSession resolves the profile using the tokens of session rather
// than the client's current one.
func (c *Client) ProfileForSession(ctx context.Context, session *Session) (*Profile, error) {
	if session == nil {
		return nil, apperr.New(apperr.KindUnauthorized, "Not signed in")
	}
	var profile Profile
	err := c.send(ctx, request{
		method: http.MethodGet,
		base:   c.authURL,
		path:   "/profiles/me",
		token:  session.AccessToken,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := c.sendAuthed(ctx, request{
		method: http.MethodGet,
		base:   c.authURL,
		path:   "/profiles/" + url.PathEscape(id),
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Profile, error) {
	var profile Profile
	err := c.sendAuthed(ctx, request{
		method: http.MethodPatch,
		base:   c.authURL,
		path:   "/profiles/me",
		body:   update,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UploadAvatar stores the image and records its public URL on the profile.
func (c *Client) UploadAvatar(ctx context.Context, filename string, image io.Reader) (*Profile, error) {
	body, contentType, err := multipartBody("avatar", path.Base(filename), image, nil)
	if err != nil {
		return nil, err
	}

	var profile Profile
	err = c.sendAuthed(ctx, request{
		method:      http.MethodPost,
		base:        c.authURL,
		path:        "/profiles/me/avatar",
		raw:         body,
		contentType: contentType,
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles is admin only; newest first.
func (c *Client) ListProfiles(ctx context.Context) ([]Profile, error) {
	var resp struct {
		Users []Profile `json:"users"`
	}
	if err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.authURL, path: "/admin/users"}, &resp); err != nil {
		return nil, err
	}
	if resp.Users == nil {
		resp.Users = []Profile{}
	}
	return resp.Users, nil
}

// UpdateUserType is admin only.
func (c *Client) UpdateUserType(ctx context.Context, userID string, userType models.UserType) (*Profile, error) {
	var profile Profile
	err := c.sendAuthed(ctx, request{
		method: http.MethodPatch,
		base:   c.authURL,
		path:   "/admin/users/" + url.PathEscape(userID),
		body:   map[string]models.UserType{"user_type": userType},
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func multipartBody(field, filename string, file io.Reader, fields map[string]string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", apperr.Wrap(err, apperr.KindInvalidInput, "Failed to encode form")
		}
	}
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInvalidInput, "Failed to encode file")
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInvalidInput, "Failed to read file")
	}
	if err := w.Close(); err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInvalidInput, "Failed to encode form")
	}
	return buf, w.FormDataContentType(), nil
}
