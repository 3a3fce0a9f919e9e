package http

import (
	"net/http"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/logger"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/services/content/internal/entity"
	"storynest/services/content/internal/usecase"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 200 << 20

type ContentHandler struct {
	contentUseCase  usecase.ContentUseCase
	favoriteUseCase usecase.FavoriteUseCase
	logger          *logger.Logger
}

func NewContentHandler(contentUseCase usecase.ContentUseCase, favoriteUseCase usecase.FavoriteUseCase, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentUseCase:  contentUseCase,
		favoriteUseCase: favoriteUseCase,
		logger:          logger,
	}
}

type CreateContentRequest struct {
	Title string             `json:"title" form:"title" binding:"required,max=300"`
	Type  models.ContentType `json:"type" form:"type" binding:"required,content_type"`
	URL   string             `json:"url" form:"url" binding:"omitempty,url,max=1000"`
}

func bindError(c *gin.Context, err error) {
	apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, err.Error()))
}

// ListContent godoc
// @Summary      List content
// @Description  Newest first, optionally narrowed by type and a case-insensitive title search
// @Tags         content
// @Produce      json
// @Security     APIKey
// @Param        type query string false "story | video | quiz"
// @Param        q    query string false "Title search"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  apperr.Error
// @Router       /content [get]
func (h *ContentHandler) ListContent(c *gin.Context) {
	items, err := h.contentUseCase.List(c.Request.Context(), entity.ContentFilter{
		Type:   models.ContentType(c.Query("type")),
		Search: c.Query("q"),
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": items})
}

// GetContent godoc
// @Summary      Get content by ID
// @Tags         content
// @Produce      json
// @Security     APIKey
// @Param        id path string true "Content ID"
// @Success      200  {object}  entity.Content
// @Failure      404  {object}  apperr.Error
// @Router       /content/{id} [get]
func (h *ContentHandler) GetContent(c *gin.Context) {
	content, err := h.contentUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// CreateContent godoc
// @Summary      Publish content
// @Description  JSON with a URL, or multipart/form-data with a file uploaded to storage. Teachers and admins only.
// @Tags         content
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true  "Title"
// @Param        type  formData string true  "story | video | quiz"
// @Param        url   formData string false "External URL when no file is sent"
// @Param        file  formData file   false "Media file"
// @Success      201  {object}  entity.Content
// @Failure      400  {object}  apperr.Error
// @Failure      403  {object}  apperr.Error
// @Router       /content [post]
func (h *ContentHandler) CreateContent(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	role := models.UserType(c.GetString(middleware.ContextUserRole))

	var req CreateContentRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}
	draft := entity.ContentDraft{Title: req.Title, Type: req.Type, URL: req.URL}

	var upload *usecase.Upload
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err == nil {
			if file.Size > maxUploadSize {
				apperr.Abort(c, apperr.KindInvalidInput, "File must be 200MB or smaller")
				return
			}
			src, err := file.Open()
			if err != nil {
				apperr.Respond(c, apperr.Wrap(err, apperr.KindInternal, "Failed to process file"))
				return
			}
			defer src.Close()

			upload = &usecase.Upload{
				File:        src,
				Filename:    file.Filename,
				ContentType: file.Header.Get("Content-Type"),
			}
		}
	}

	content, err := h.contentUseCase.Create(c.Request.Context(), userID, role, draft, upload)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, content)
}

// ToggleFavorite godoc
// @Summary      Toggle a favorite
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        content_id path string true "Content ID"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  apperr.Error
// @Router       /favorites/{content_id}/toggle [post]
func (h *ContentHandler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.favoriteUseCase.Toggle(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("content_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// IsFavorited godoc
// @Summary      Check a favorite
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Param        content_id path string true "Content ID"
// @Success      200  {object}  map[string]bool
// @Router       /favorites/{content_id} [get]
func (h *ContentHandler) IsFavorited(c *gin.Context) {
	favorited, err := h.favoriteUseCase.IsFavorited(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("content_id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

// ListFavorites godoc
// @Summary      List my favorites
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /favorites [get]
func (h *ContentHandler) ListFavorites(c *gin.Context) {
	favorites, err := h.favoriteUseCase.List(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}
