package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	apperrors "itongue/internal/errors"
	"itongue/internal/model"
	"itongue/internal/service"
	"itongue/internal/storage"
)

// UserHandler handles profile, avatar and language association endpoints.
type UserHandler struct {
	userService     service.UserService
	authService     service.AuthService
	languageService service.LanguageService
	avatars         *storage.AvatarStore
	stagingDir      string
}

// NewUserHandler creates a new user handler. stagingDir is where multipart
// uploads are spooled before the avatar store commits them; it must share a
// filesystem volume with the avatar store's public dir.
func NewUserHandler(
	userService service.UserService,
	authService service.AuthService,
	languageService service.LanguageService,
	avatars *storage.AvatarStore,
	stagingDir string,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		authService:     authService,
		languageService: languageService,
		avatars:         avatars,
		stagingDir:      stagingDir,
	}
}

// UpdateProfileRequest represents a profile edit. Empty fields are unchanged.
type UpdateProfileRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Bio       string `json:"bio"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}

// UpdateSlugRequest represents a custom slug submission.
type UpdateSlugRequest struct {
	Slug string `json:"slug" validate:"required"`
}

// SlugConflictResponse carries a free alternative when the requested slug is
// taken.
type SlugConflictResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	AvailableSlug string `json:"availableSlug"`
}

// AddLanguageRequest represents a language association request.
type AddLanguageRequest struct {
	LanguageID uint   `json:"languageId" validate:"required"`
	Role       string `json:"role" validate:"required"`
}

// AvatarResponse carries the committed avatar address.
type AvatarResponse struct {
	AvatarURL string `json:"avatarUrl"`
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetByID godoc
// @Summary Show a user profile by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	user, err := h.userService.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetBySlug godoc
// @Summary Show a user profile by slug
// @Tags users
// @Produce json
// @Param slug path string true "User slug"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/slug/{slug} [get]
func (h *UserHandler) GetBySlug(c echo.Context) error {
	user, err := h.userService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Edit a user profile
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} AuthResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateProfile(c.Request().Context(), id, service.ProfileUpdate{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Bio:       req.Bio,
		Password:  req.Password,
	})
	if err != nil {
		return httpError(err)
	}

	// The token snapshot may be stale after an edit, so a fresh pair is
	// issued with the response.
	accessToken, refreshToken, err := h.authService.IssueTokens(c.Request().Context(), user)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// UpdateSlug godoc
// @Summary Edit the user custom slug
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateSlugRequest true "Requested slug"
// @Success 200 {object} map[string]string
// @Failure 409 {object} SlugConflictResponse
// @Router /users/{id}/slug [put]
func (h *UserHandler) UpdateSlug(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req UpdateSlugRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slug, err := h.userService.UpdateSlug(c.Request().Context(), id, req.Slug)
	if err != nil {
		if err == apperrors.ErrSlugTaken {
			return echo.NewHTTPError(http.StatusConflict, SlugConflictResponse{
				Error:         err.Error(),
				Code:          "SLUG_TAKEN",
				AvailableSlug: slug,
			})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"slug": slug})
}

// Delete godoc
// @Summary Delete a user account
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadAvatar godoc
// @Summary Update the user profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "User ID"
// @Param avatar formData file true "Image file"
// @Success 200 {object} AvatarResponse
// @Failure 415 {object} errors.ErrorResponse
// @Router /users/{id}/avatar [post]
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return httpError(apperrors.ErrMissingUpload)
	}

	stagedPath, err := h.stageUpload(file)
	if err != nil {
		return httpError(fmt.Errorf("%w: %w", apperrors.ErrStorageIO, err))
	}

	address, err := h.avatars.Commit(c.Request().Context(), id, stagedPath, file.Header.Get("Content-Type"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, AvatarResponse{AvatarURL: address})
}

// stageUpload spools the multipart part to the staging dir so the store can
// commit it with a same-volume rename.
func (h *UserHandler) stageUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	staged, err := os.CreateTemp(h.stagingDir, "avatar-*")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	if _, err := io.Copy(staged, src); err != nil {
		staged.Close()
		os.Remove(staged.Name())
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := staged.Close(); err != nil {
		os.Remove(staged.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return staged.Name(), nil
}

// AddLanguage godoc
// @Summary Add a language to a user
// @Tags users,languages
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body AddLanguageRequest true "Language and role"
// @Success 201 {object} model.UserLanguage
// @Failure 409 {object} model.UserLanguage
// @Router /users/{id}/languages [post]
func (h *UserHandler) AddLanguage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req AddLanguageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assoc, err := h.languageService.AddUserLanguage(c.Request().Context(), id, req.LanguageID, req.Role)
	if err != nil {
		if err == apperrors.ErrLanguageRoleExists && assoc != nil {
			// Conflict payload carries the existing association so the
			// client can display it idempotently.
			return c.JSON(http.StatusConflict, map[string]*model.UserLanguage{"alreadyExists": assoc})
		}
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, assoc)
}

// RemoveLanguage godoc
// @Summary Remove a user language
// @Tags users,languages
// @Param id path int true "User ID"
// @Param languageId path int true "Language ID"
// @Param role path string true "Role (learner or teacher)"
// @Success 204
// @Router /users/{id}/languages/{languageId}/{role} [delete]
func (h *UserHandler) RemoveLanguage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	languageID, ok := pathID(c, "languageId")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid language id")
	}

	if err := h.languageService.RemoveUserLanguage(c.Request().Context(), id, languageID, c.Param("role")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
