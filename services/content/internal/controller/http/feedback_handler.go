package http

import (
	"net/http"

	"storynest/pkg/apperr"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/services/content/internal/usecase"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackUseCase usecase.FeedbackUseCase
}

func NewFeedbackHandler(feedbackUseCase usecase.FeedbackUseCase) *FeedbackHandler {
	return &FeedbackHandler{feedbackUseCase: feedbackUseCase}
}

type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type RespondRequest struct {
	Response string `json:"response" binding:"required,max=2000"`
}

// SubmitFeedback godoc
// @Summary      Rate content
// @Description  Creates or replaces the caller's feedback on a content item
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Content ID"
// @Param        request body SubmitFeedbackRequest true "Rating and comment"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  apperr.Error
// @Failure      404  {object}  apperr.Error
// @Router       /content/{id}/feedback [put]
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	feedback, err := h.feedbackUseCase.Submit(c.Request.Context(), c.GetString(middleware.ContextUserID), c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// ListFeedback godoc
// @Summary      List feedback for content
// @Description  Newest first, with authors, admin responses and the average rating
// @Tags         feedback
// @Produce      json
// @Security     APIKey
// @Param        id path string true "Content ID"
// @Success      200  {object}  entity.FeedbackSummary
// @Router       /content/{id}/feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	summary, err := h.feedbackUseCase.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RespondToFeedback godoc
// @Summary      Respond to feedback
// @Description  Admins only. The feedback author is notified.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        feedback_id path string true "Feedback ID"
// @Param        request body RespondRequest true "Response text"
// @Success      201  {object}  entity.FeedbackResponse
// @Failure      403  {object}  apperr.Error
// @Failure      404  {object}  apperr.Error
// @Router       /feedback/{feedback_id}/responses [post]
func (h *FeedbackHandler) RespondToFeedback(c *gin.Context) {
	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	response, err := h.feedbackUseCase.Respond(
		c.Request.Context(),
		c.GetString(middleware.ContextUserID),
		models.UserType(c.GetString(middleware.ContextUserRole)),
		c.Param("feedback_id"),
		req.Response,
	)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// ContentMetrics godoc
// @Summary      Content with feedback metrics
// @Description  Admins only. Every content item with its feedback count and average rating (null when unrated).
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  apperr.Error
// @Router       /admin/content [get]
func (h *FeedbackHandler) ContentMetrics(c *gin.Context) {
	metrics, err := h.feedbackUseCase.Metrics(c.Request.Context(), models.UserType(c.GetString(middleware.ContextUserRole)))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"content": metrics})
}
