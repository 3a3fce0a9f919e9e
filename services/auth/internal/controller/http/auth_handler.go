package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"storynest/pkg/apperr"
	"storynest/pkg/middleware"
	"storynest/services/auth/internal/entity"
	"storynest/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	siteURL     string
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, siteURL string) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		siteURL:     siteURL,
	}
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type CodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type RecoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

func clientInfo(c *gin.Context) entity.ClientInfo {
	return entity.ClientInfo{UserAgent: c.Request.UserAgent(), IP: c.ClientIP()}
}

func bindError(c *gin.Context, err error) {
	apperr.Respond(c, apperr.Wrap(err, apperr.KindInvalidInput, err.Error()))
}

// SignUp godoc
// @Summary      Register a new user
// @Description  Creates an identity with a default child profile and signs it in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     APIKey
// @Param        request body CredentialsRequest true "Email and password"
// @Success      201  {object}  entity.Session
// @Failure      400  {object}  apperr.Error
// @Failure      409  {object}  apperr.Error
// @Failure      429  {object}  apperr.Error
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.authUseCase.SignUp(c.Request.Context(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Token godoc
// @Summary      Issue a session
// @Description  grant_type=password takes email and password, refresh_token rotates a refresh token, authorization_code exchanges an emailed code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     APIKey
// @Param        grant_type query string true "password | refresh_token | authorization_code"
// @Success      200  {object}  entity.Session
// @Failure      400  {object}  apperr.Error
// @Failure      401  {object}  apperr.Error
// @Failure      429  {object}  apperr.Error
// @Router       /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var (
		session *entity.Session
		err     error
	)
	ctx := c.Request.Context()

	switch c.Query("grant_type") {
	case "password":
		var req CredentialsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session, err = h.authUseCase.SignInWithPassword(ctx, req.Email, req.Password, clientInfo(c))
	case "refresh_token":
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session, err = h.authUseCase.Refresh(ctx, req.RefreshToken, clientInfo(c))
	case "authorization_code":
		var req CodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		session, err = h.authUseCase.ExchangeCode(ctx, req.Code, clientInfo(c))
	default:
		apperr.Abort(c, apperr.KindInvalidInput, "Unsupported grant_type")
		return
	}

	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Callback godoc
// @Summary      Complete an email link
// @Description  Exchanges the code and redirects to the site with the session, or the error, in the URL fragment
// @Tags         auth
// @Param        code query string true "One-time code"
// @Success      302
// @Router       /auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	session, err := h.authUseCase.ExchangeCode(c.Request.Context(), c.Query("code"), clientInfo(c))
	if err != nil {
		kind := apperr.KindOf(err)
		message := apperr.UserMessage(kind)
		var appErr *apperr.Error
		if errors.As(err, &appErr) && kind != apperr.KindInternal {
			message = appErr.Message
		}
		fragment := url.Values{
			"error":             {"access_denied"},
			"error_code":        {string(kind)},
			"error_description": {message},
		}
		c.Redirect(http.StatusFound, h.siteURL+"/#"+fragment.Encode())
		return
	}

	fragment := url.Values{
		"access_token":  {session.AccessToken},
		"refresh_token": {session.RefreshToken},
		"expires_in":    {strconv.Itoa(session.ExpiresIn)},
		"expires_at":    {strconv.FormatInt(session.ExpiresAt, 10)},
		"token_type":    {session.TokenType},
	}
	c.Redirect(http.StatusFound, h.siteURL+"/#"+fragment.Encode())
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes every refresh token of the current user
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  apperr.Error
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUseCase.SignOut(c.Request.Context(), c.GetString(middleware.ContextUserID)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetUser godoc
// @Summary      Get current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      401  {object}  apperr.Error
// @Router       /auth/user [get]
func (h *AuthHandler) GetUser(c *gin.Context) {
	user, err := h.authUseCase.GetUser(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			apperr.Abort(c, apperr.KindUnauthorized, "User not found")
			return
		}
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdatePasswordRequest true "New password"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  apperr.Error
// @Router       /auth/user [put]
func (h *AuthHandler) UpdateUser(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authUseCase.UpdatePassword(c.Request.Context(), c.GetString(middleware.ContextUserID), req.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Recover godoc
// @Summary      Request a password reset email
// @Description  Always succeeds so accounts cannot be probed
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     APIKey
// @Param        request body RecoverRequest true "Email"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  apperr.Error
// @Failure      429  {object}  apperr.Error
// @Router       /auth/recover [post]
func (h *AuthHandler) Recover(c *gin.Context) {
	var req RecoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authUseCase.Recover(c.Request.Context(), req.Email); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the address is registered, a reset link is on its way"})
}
