package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"path"

	"storynest/pkg/apperr"
)

func (c *Client) ListContent(ctx context.Context, q ContentQuery) ([]Content, error) {
	query := url.Values{}
	if q.Type != "" {
		query.Set("type", string(q.Type))
	}
	if q.Search != "" {
		query.Set("q", q.Search)
	}

	var resp struct {
		Content []Content `json:"content"`
	}
	if err := c.send(ctx, request{method: http.MethodGet, base: c.contentURL, path: "/content", query: query}, &resp); err != nil {
		return nil, err
	}
	if resp.Content == nil {
		resp.Content = []Content{}
	}
	return resp.Content, nil
}

// ContentMetrics lists every content item with its feedback count and average
// rating. Admins only.
func (c *Client) ContentMetrics(ctx context.Context) ([]ContentMetrics, error) {
	var resp struct {
		Content []ContentMetrics `json:"content"`
	}
	if err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.contentURL, path: "/admin/content"}, &resp); err != nil {
		return nil, err
	}
	if resp.Content == nil {
		resp.Content = []ContentMetrics{}
	}
	return resp.Content, nil
}

func (c *Client) GetContent(ctx context.Context, id string) (*Content, error) {
	var content Content
	if err := c.send(ctx, request{method: http.MethodGet, base: c.contentURL, path: "/content/" + url.PathEscape(id)}, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// CreateContent publishes a content item that lives at an external URL.
// Teachers and admins only.
func (c *Client) CreateContent(ctx context.Context, item NewContent) (*Content, error) {
	if item.URL == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "Content URL is required")
	}
	var content Content
	err := c.sendAuthed(ctx, request{method: http.MethodPost, base: c.contentURL, path: "/content", body: item}, &content)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// UploadContent stores media in object storage and publishes it.
// Teachers and admins only.
func (c *Client) UploadContent(ctx context.Context, item NewContent, filename string, media io.Reader) (*Content, error) {
	body, contentType, err := multipartBody("file", path.Base(filename), media, map[string]string{
		"title": item.Title,
		"type":  string(item.Type),
	})
	if err != nil {
		return nil, err
	}

	var content Content
	err = c.sendAuthed(ctx, request{
		method:      http.MethodPost,
		base:        c.contentURL,
		path:        "/content",
		raw:         body,
		contentType: contentType,
	}, &content)
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// ToggleFavorite flips the favorite state and returns the new one.
func (c *Client) ToggleFavorite(ctx context.Context, contentID string) (bool, error) {
	var resp struct {
		Favorited bool `json:"favorited"`
	}
	err := c.sendAuthed(ctx, request{
		method: http.MethodPost,
		base:   c.contentURL,
		path:   "/favorites/" + url.PathEscape(contentID) + "/toggle",
	}, &resp)
	return resp.Favorited, err
}

func (c *Client) IsFavorited(ctx context.Context, contentID string) (bool, error) {
	var resp struct {
		Favorited bool `json:"favorited"`
	}
	err := c.sendAuthed(ctx, request{
		method: http.MethodGet,
		base:   c.contentURL,
		path:   "/favorites/" + url.PathEscape(contentID),
	}, &resp)
	return resp.Favorited, err
}

func (c *Client) ListFavorites(ctx context.Context) ([]Favorite, error) {
	var resp struct {
		Favorites []Favorite `json:"favorites"`
	}
	if err := c.sendAuthed(ctx, request{method: http.MethodGet, base: c.contentURL, path: "/favorites"}, &resp); err != nil {
		return nil, err
	}
	if resp.Favorites == nil {
		resp.Favorites = []Favorite{}
	}
	return resp.Favorites, nil
}

// SubmitFeedback creates or overwrites the caller's feedback for contentID.
// A blank comment clears it.
func (c *Client) SubmitFeedback(ctx context.Context, contentID string, submission FeedbackSubmission) (*Feedback, error) {
	if submission.Rating < 1 || submission.Rating > 5 {
		return nil, apperr.New(apperr.KindInvalidInput, "Please select a rating")
	}
	var resp struct {
		Feedback Feedback `json:"feedback"`
	}
	err := c.sendAuthed(ctx, request{
		method: http.MethodPut,
		base:   c.contentURL,
		path:   "/content/" + url.PathEscape(contentID) + "/feedback",
		body:   submission,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Feedback, nil
}

func (c *Client) ListFeedback(ctx context.Context, contentID string) (*FeedbackList, error) {
	var list FeedbackList
	err := c.send(ctx, request{
		method: http.MethodGet,
		base:   c.contentURL,
		path:   "/content/" + url.PathEscape(contentID) + "/feedback",
	}, &list)
	if err != nil {
		return nil, err
	}
	if list.Feedback == nil {
		list.Feedback = []Feedback{}
	}
	return &list, nil
}

// RespondToFeedback is admin only.
func (c *Client) RespondToFeedback(ctx context.Context, feedbackID, response string) (*FeedbackResponse, error) {
	var resp FeedbackResponse
	err := c.sendAuthed(ctx, request{
		method: http.MethodPost,
		base:   c.contentURL,
		path:   "/feedback/" + url.PathEscape(feedbackID) + "/responses",
		body:   map[string]string{"response": response},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
