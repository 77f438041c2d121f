package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/service"
)

// UserHandler serves profile endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest carries the display fields of a profile.
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"required"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} errors.Response{data=model.User}
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /users [post]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), id.ID, req.Name, req.AvatarURL)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, user, "")
}
