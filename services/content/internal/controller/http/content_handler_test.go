package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/models"
	"storynest/pkg/validation"
	"storynest/services/content/internal/entity"
	"storynest/services/content/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContentUseCase is a mock implementation of ContentUseCase
type MockContentUseCase struct {
	mock.Mock
}

func (m *MockContentUseCase) List(ctx context.Context, filter entity.ContentFilter) ([]*entity.Content, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Content), args.Error(1)
}

func (m *MockContentUseCase) Get(ctx context.Context, id string) (*entity.Content, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Content), args.Error(1)
}

func (m *MockContentUseCase) Create(ctx context.Context, userID string, role models.UserType, draft entity.ContentDraft, upload *usecase.Upload) (*entity.Content, error) {
	args := m.Called(userID, role, draft, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Content), args.Error(1)
}

var _ usecase.ContentUseCase = (*MockContentUseCase)(nil)

// MockFavoriteUseCase is a mock implementation of FavoriteUseCase
type MockFavoriteUseCase struct {
	mock.Mock
}

func (m *MockFavoriteUseCase) Toggle(ctx context.Context, userID, contentID string) (bool, error) {
	args := m.Called(userID, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteUseCase) IsFavorited(ctx context.Context, userID, contentID string) (bool, error) {
	args := m.Called(userID, contentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteUseCase) List(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Favorite), args.Error(1)
}

var _ usecase.FavoriteUseCase = (*MockFavoriteUseCase)(nil)

// MockFeedbackUseCase is a mock implementation of FeedbackUseCase
type MockFeedbackUseCase struct {
	mock.Mock
}

func (m *MockFeedbackUseCase) Submit(ctx context.Context, userID, contentID string, rating int, comment string) (*entity.Feedback, error) {
	args := m.Called(userID, contentID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Feedback), args.Error(1)
}

func (m *MockFeedbackUseCase) List(ctx context.Context, contentID string) (*entity.FeedbackSummary, error) {
	args := m.Called(contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedbackSummary), args.Error(1)
}

func (m *MockFeedbackUseCase) Respond(ctx context.Context, adminID string, role models.UserType, feedbackID, text string) (*entity.FeedbackResponse, error) {
	args := m.Called(adminID, role, feedbackID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.FeedbackResponse), args.Error(1)
}

func (m *MockFeedbackUseCase) Metrics(ctx context.Context, role models.UserType) ([]*entity.ContentMetrics, error) {
	args := m.Called(role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ContentMetrics), args.Error(1)
}

var _ usecase.FeedbackUseCase = (*MockFeedbackUseCase)(nil)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Register()
	return gin.New()
}

func as(userID string, role models.UserType, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", string(role))
		next(c)
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	payload, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestListContent_PassesFilter(t *testing.T) {
	mockUseCase := new(MockContentUseCase)
	handler := NewContentHandler(mockUseCase, new(MockFavoriteUseCase), logger.New())

	router := setupTestRouter()
	router.GET("/content", handler.ListContent)

	filter := entity.ContentFilter{Type: models.ContentTypeStory, Search: "ark"}
	mockUseCase.On("List", filter).Return([]*entity.Content{{ID: "c1", Title: "Noah's Ark"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/content?type=story&q=ark", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	items, ok := decode(t, w)["content"].([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)
	mockUseCase.AssertExpectations(t)
}

func TestGetContent_NotFound(t *testing.T) {
	mockUseCase := new(MockContentUseCase)
	handler := NewContentHandler(mockUseCase, new(MockFavoriteUseCase), logger.New())

	router := setupTestRouter()
	router.GET("/content/:id", handler.GetContent)

	mockUseCase.On("Get", "missing").Return(nil, apperr.New(apperr.KindNotFound, "Content not found"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/content/missing", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["code"])
}

func TestCreateContent_JSON(t *testing.T) {
	mockUseCase := new(MockContentUseCase)
	handler := NewContentHandler(mockUseCase, new(MockFavoriteUseCase), logger.New())

	router := setupTestRouter()
	router.POST("/content", as("teacher-1", models.UserTypeTeacher, handler.CreateContent))

	draft := entity.ContentDraft{Title: "Noah's Ark", Type: models.ContentTypeStory, URL: "https://example.com/noah"}
	mockUseCase.On("Create", "teacher-1", models.UserTypeTeacher, draft, (*usecase.Upload)(nil)).
		Return(&entity.Content{ID: "c1", Title: draft.Title, Type: draft.Type, URL: draft.URL}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/content", gin.H{"title": "Noah's Ark", "type": "story", "url": "https://example.com/noah"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "c1", decode(t, w)["id"])
	mockUseCase.AssertExpectations(t)
}

func TestCreateContent_RejectsUnknownType(t *testing.T) {
	mockUseCase := new(MockContentUseCase)
	handler := NewContentHandler(mockUseCase, new(MockFavoriteUseCase), logger.New())

	router := setupTestRouter()
	router.POST("/content", as("teacher-1", models.UserTypeTeacher, handler.CreateContent))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/content", gin.H{"title": "x", "type": "podcast", "url": "https://example.com"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockUseCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateContent_Multipart(t *testing.T) {
	mockUseCase := new(MockContentUseCase)
	handler := NewContentHandler(mockUseCase, new(MockFavoriteUseCase), logger.New())

	router := setupTestRouter()
	router.POST("/content", as("admin-1", models.UserTypeAdmin, handler.CreateContent))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "Ark Video"))
	require.NoError(t, writer.WriteField("type", "video"))
	part, err := writer.CreateFormFile("file", "ark.mp4")
	require.NoError(t, err)
	_, _ = part.Write([]byte("fake video"))
	require.NoError(t, writer.Close())

	mockUseCase.On("Create", "admin-1", models.UserTypeAdmin,
		entity.ContentDraft{Title: "Ark Video", Type: models.ContentTypeVideo},
		mock.MatchedBy(func(u *usecase.Upload) bool { return u != nil && u.Filename == "ark.mp4" }),
	).Return(&entity.Content{ID: "c2"}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/content", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockUseCase.AssertExpectations(t)
}

func TestToggleFavorite(t *testing.T) {
	mockFavorites := new(MockFavoriteUseCase)
	handler := NewContentHandler(new(MockContentUseCase), mockFavorites, logger.New())

	router := setupTestRouter()
	router.POST("/favorites/:content_id/toggle", as("user-1", models.UserTypeChild, handler.ToggleFavorite))

	mockFavorites.On("Toggle", "user-1", "c1").Return(true, nil).Once()
	mockFavorites.On("Toggle", "user-1", "c1").Return(false, nil).Once()

	for _, want := range []bool{true, false} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/favorites/c1/toggle", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, decode(t, w)["favorited"])
	}
	mockFavorites.AssertExpectations(t)
}

func TestListFavorites_Empty(t *testing.T) {
	mockFavorites := new(MockFavoriteUseCase)
	handler := NewContentHandler(new(MockContentUseCase), mockFavorites, logger.New())

	router := setupTestRouter()
	router.GET("/favorites", as("user-1", models.UserTypeChild, handler.ListFavorites))

	mockFavorites.On("List", "user-1").Return([]*entity.Favorite{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/favorites", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
}

func TestSubmitFeedback(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.PUT("/content/:id/feedback", as("user-1", models.UserTypeChild, handler.SubmitFeedback))

	mockFeedback.On("Submit", "user-1", "c1", 4, "fun").
		Return(&entity.Feedback{ID: "f1", Rating: 4, Responses: []entity.FeedbackResponse{}}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("PUT", "/content/c1/feedback", gin.H{"rating": 4, "comment": "fun"}))

	assert.Equal(t, http.StatusOK, w.Code)
	feedback, ok := decode(t, w)["feedback"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "f1", feedback["id"])
}

func TestSubmitFeedback_RatingOutOfRange(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.PUT("/content/:id/feedback", as("user-1", models.UserTypeChild, handler.SubmitFeedback))

	for _, rating := range []int{0, 6} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, jsonRequest("PUT", "/content/c1/feedback", gin.H{"rating": rating}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	mockFeedback.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListFeedback(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.GET("/content/:id/feedback", handler.ListFeedback)

	mockFeedback.On("List", "c1").Return(&entity.FeedbackSummary{
		Feedback:      []*entity.Feedback{{ID: "f1", Rating: 5, Author: &entity.Author{Name: "Ada"}, Responses: []entity.FeedbackResponse{}}},
		AverageRating: 5,
		Count:         1,
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/content/c1/feedback", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	response := decode(t, w)
	assert.Equal(t, 5.0, response["average_rating"])
	assert.Equal(t, 1.0, response["count"])
}

func TestRespondToFeedback(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.POST("/feedback/:feedback_id/responses", as("admin-1", models.UserTypeAdmin, handler.RespondToFeedback))

	mockFeedback.On("Respond", "admin-1", models.UserTypeAdmin, "f1", "Thanks").
		Return(&entity.FeedbackResponse{ID: "r1", AdminName: "Admin", Response: "Thanks"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/feedback/f1/responses", gin.H{"response": "Thanks"}))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Admin", decode(t, w)["admin_name"])
}

func TestRespondToFeedback_Forbidden(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.POST("/feedback/:feedback_id/responses", as("teacher-1", models.UserTypeTeacher, handler.RespondToFeedback))

	mockFeedback.On("Respond", "teacher-1", models.UserTypeTeacher, "f1", "Hi").
		Return(nil, apperr.New(apperr.KindForbidden, "Only admins can respond to feedback"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/feedback/f1/responses", gin.H{"response": "Hi"}))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decode(t, w)["code"])
}

func TestContentMetrics(t *testing.T) {
	mockFeedback := new(MockFeedbackUseCase)
	handler := NewFeedbackHandler(mockFeedback)

	router := setupTestRouter()
	router.GET("/admin/content", as("admin-1", models.UserTypeAdmin, handler.ContentMetrics))

	average := 4.5
	mockFeedback.On("Metrics", models.UserTypeAdmin).Return([]*entity.ContentMetrics{
		{Content: entity.Content{ID: "c1", Title: "Noah's Ark"}, FeedbackCount: 2, AverageRating: &average},
		{Content: entity.Content{ID: "c2", Title: "David and Goliath"}},
	}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/content", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["content"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Noah's Ark", first["title"])
	assert.Equal(t, 2.0, first["feedback_count"])
	assert.Equal(t, 4.5, first["average_rating"])
	second := items[1].(map[string]interface{})
	assert.Equal(t, 0.0, second["feedback_count"])
	assert.Nil(t, second["average_rating"])
}
