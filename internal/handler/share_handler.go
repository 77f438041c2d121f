package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/service"
)

// ShareHandler serves invite links and cloning.
type ShareHandler struct {
	shares service.ShareService
	clones service.CloneService
}

// NewShareHandler creates a new share handler.
func NewShareHandler(shares service.ShareService, clones service.CloneService) *ShareHandler {
	return &ShareHandler{shares: shares, clones: clones}
}

// IssueShareRequest is the request to share the caller's content.
type IssueShareRequest struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description"`
	ExpiresInDays int      `json:"expiresInDays" validate:"min=0"`
	MaxClones     int      `json:"maxClones" validate:"min=0"`
	VersionID     string   `json:"versionId"`
	InviteEmails  []string `json:"inviteEmails" validate:"omitempty,max=20,dive,email"`
}

// CloneRequest confirms a clone. UserID is optional and must match the caller.
type CloneRequest struct {
	UserID    string `json:"userId"`
	Confirmed bool   `json:"confirmed"`
}

// Issue godoc
// @Summary Create an invite link
// @Description Shares a snapshot of the caller's content, or of one version, behind an opaque token.
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body IssueShareRequest true "Share"
// @Success 201 {object} errors.Response{data=service.IssuedShare}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /templates/share [post]
func (h *ShareHandler) Issue(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req IssueShareRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	versionID, err := optionalUUID("versionId", req.VersionID)
	if err != nil {
		return fail(c, err)
	}

	issued, err := h.shares.Issue(c.Request().Context(), caller.ID, service.IssueShareInput{
		Title:         req.Title,
		Description:   req.Description,
		ExpiresInDays: req.ExpiresInDays,
		MaxClones:     req.MaxClones,
		VersionID:     versionID,
		InviteEmails:  req.InviteEmails,
		Origin:        requestOrigin(c),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, issued, "")
}

// Resolve godoc
// @Summary Preview a shared snapshot
// @Description Public and side-effect free.
// @Tags sharing
// @Produce json
// @Param token path string true "Invite token"
// @Success 200 {object} errors.Response{data=service.SharedSnapshot}
// @Failure 404 {object} errors.Response
// @Failure 410 {object} errors.Response
// @Router /templates/shared/{token} [get]
func (h *ShareHandler) Resolve(c echo.Context) error {
	snapshot, err := h.shares.Resolve(c.Request().Context(), c.Param("token"))
	if err != nil {
		return fail(c, err)
	}
	if snapshot.Templates == nil {
		snapshot.Templates = []model.TemplateItem{}
	}
	if snapshot.JTBDResources == nil {
		snapshot.JTBDResources = []model.ResourceCategory{}
	}
	return ok(c, http.StatusOK, snapshot, "")
}

// Clone godoc
// @Summary Clone a shared snapshot into the caller's account
// @Description Answers 200 with requiresConfirmation when the caller already owns content and confirmed is false.
// @Tags sharing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token path string true "Invite token"
// @Param request body CloneRequest false "Clone options"
// @Success 200 {object} errors.Response{data=service.CloneResult}
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Failure 410 {object} errors.Response
// @Router /templates/clone/{token} [post]
func (h *ShareHandler) Clone(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req CloneRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	if req.UserID != "" && req.UserID != caller.ID.String() {
		return fail(c, errors.ErrUnauthorized)
	}

	result, message, err := h.clones.Clone(c.Request().Context(), c.Param("token"), caller.ID, req.Confirmed)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, result, message)
}

// Revoke godoc
// @Summary Revoke an invite link
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param shareId path string true "Share ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /templates/share/{shareId} [delete]
func (h *ShareHandler) Revoke(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	shareID, err := pathUUID(c, "shareId")
	if err != nil {
		return fail(c, err)
	}
	if err := h.shares.Revoke(c.Request().Context(), caller.ID, shareID); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "Shared template deactivated")
}

// ListMine godoc
// @Summary List the caller's invite links
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} errors.Response{data=[]service.OwnedShare}
// @Failure 401 {object} errors.Response
// @Router /templates/my-shares/{userId} [get]
func (h *ShareHandler) ListMine(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, err)
	}

	shares, err := h.shares.ListMine(c.Request().Context(), caller.ID, userID, requestOrigin(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, shares, "")
}

// CloneLogs godoc
// @Summary Clone history of an invite link
// @Tags sharing
// @Produce json
// @Security BearerAuth
// @Param shareId path string true "Share ID"
// @Success 200 {object} errors.Response{data=[]model.CloneLog}
// @Failure 404 {object} errors.Response
// @Router /templates/share/{shareId}/clones [get]
func (h *ShareHandler) CloneLogs(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	shareID, err := pathUUID(c, "shareId")
	if err != nil {
		return fail(c, err)
	}

	logs, err := h.shares.ListCloneLogs(c.Request().Context(), caller.ID, shareID)
	if err != nil {
		return fail(c, err)
	}
	if logs == nil {
		logs = []model.CloneLog{}
	}
	return ok(c, http.StatusOK, logs, "")
}
