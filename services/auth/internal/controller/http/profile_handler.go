package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"storynest/pkg/apperr"
	"storynest/pkg/middleware"
	"storynest/pkg/models"
	"storynest/services/auth/internal/entity"
	"storynest/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAvatarSize = 5 << 20

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

type ProfileHandler struct {
	profileUseCase usecase.ProfileUseCase
}

func NewProfileHandler(profileUseCase usecase.ProfileUseCase) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,max=200"`
	Bio  *string `json:"bio" binding:"omitempty,max=2000"`
}

type UpdateUserTypeRequest struct {
	UserType models.UserType `json:"user_type" binding:"required,user_type"`
}

// Me godoc
// @Summary      Get or create the current profile
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Profile
// @Failure      401  {object}  apperr.Error
// @Router       /profiles/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	profile, err := h.profileUseCase.GetOrCreate(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateMe godoc
// @Summary      Update the current profile
// @Tags         profiles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Fields to change"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  apperr.Error
// @Router       /profiles/me [patch]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileUseCase.Update(c.Request.Context(), c.GetString(middleware.ContextUserID), entity.ProfilePatch{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Stores the image and records its public URL on the profile
// @Tags         profiles
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image file"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  apperr.Error
// @Failure      503  {object}  apperr.Error
// @Router       /profiles/me/avatar [post]
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	file, err := c.FormFile("avatar")
	if err != nil {
		apperr.Abort(c, apperr.KindInvalidInput, "Avatar file is required")
		return
	}
	if file.Size > maxAvatarSize {
		apperr.Abort(c, apperr.KindInvalidInput, "Avatar must be 5MB or smaller")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		apperr.Abort(c, apperr.KindInvalidInput, "Invalid image format. Only jpg, jpeg, png, gif are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		apperr.Respond(c, apperr.Wrap(err, apperr.KindInternal, "Failed to process file"))
		return
	}
	defer src.Close()

	fileKey := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	profile, err := h.profileUseCase.UploadAvatar(c.Request.Context(), userID, src, fileKey, contentType)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetProfile godoc
// @Summary      Get a profile by ID
// @Tags         profiles
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Profile ID"
// @Success      200  {object}  entity.Profile
// @Failure      404  {object}  apperr.Error
// @Router       /profiles/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileUseCase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListUsers godoc
// @Summary      List every profile
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  apperr.Error
// @Router       /admin/users [get]
func (h *ProfileHandler) ListUsers(c *gin.Context) {
	profiles, err := h.profileUseCase.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": profiles})
}

// UpdateUserType godoc
// @Summary      Change a user's type
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Profile ID"
// @Param        request body UpdateUserTypeRequest true "New user type"
// @Success      200  {object}  entity.Profile
// @Failure      400  {object}  apperr.Error
// @Failure      403  {object}  apperr.Error
// @Router       /admin/users/{id} [patch]
func (h *ProfileHandler) UpdateUserType(c *gin.Context) {
	var req UpdateUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileUseCase.UpdateUserType(c.Request.Context(), c.Param("id"), req.UserType)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
