package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	userService service.UserService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, userService service.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates the account, seeds the default checklist and resource library, and signs the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	result, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, result, "user registered successfully")
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} errors.Response{data=service.AuthResult}
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Failure 500 {object} errors.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, result, "")
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	accessToken, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, map[string]string{"accessToken": accessToken}, "")
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the refresh token and blacklists the presented access token.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	claims, err := currentClaims(c)
	if err != nil {
		return fail(c, err)
	}

	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken, claims); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "logged out successfully")
}

// Verify godoc
// @Summary Current user
// @Description Returns the profile behind the bearer token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response{data=model.User}
// @Failure 401 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/verify [get]
func (h *AuthHandler) Verify(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	user, err := h.userService.GetUser(c.Request().Context(), id.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, user, "")
}

// DeleteAccount godoc
// @Summary Delete account
// @Description Removes the user with every template, category, resource, version and share they own.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/delete-account [delete]
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.userService.DeleteAccount(c.Request().Context(), id.ID); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "account deleted")
}
