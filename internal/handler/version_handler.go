package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/model"
	"onboarding/internal/service"
)

// VersionHandler serves version management.
type VersionHandler struct {
	svc service.VersionService
}

// NewVersionHandler creates a new version handler.
func NewVersionHandler(svc service.VersionService) *VersionHandler {
	return &VersionHandler{svc: svc}
}

// CreateVersionRequest names a new version and optionally a source to copy.
type CreateVersionRequest struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	CopyFromVersionID string `json:"copyFromVersionId"`
}

// List godoc
// @Summary List versions
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response{data=[]model.Version}
// @Router /versions [get]
func (h *VersionHandler) List(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	versions, err := h.svc.List(c.Request().Context(), caller.ID)
	if err != nil {
		return fail(c, err)
	}
	if versions == nil {
		versions = []model.Version{}
	}
	return ok(c, http.StatusOK, versions, "")
}

// Create godoc
// @Summary Create a version
// @Description Copies copyFromVersionId when given, otherwise seeds the default content.
// @Tags versions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateVersionRequest true "Version"
// @Success 201 {object} errors.Response{data=model.Version}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /versions [post]
func (h *VersionHandler) Create(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateVersionRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	copyFrom, err := optionalUUID("copyFromVersionId", req.CopyFromVersionID)
	if err != nil {
		return fail(c, err)
	}

	version, err := h.svc.Create(c.Request().Context(), caller.ID, service.CreateVersionInput{
		Name:              req.Name,
		Description:       req.Description,
		CopyFromVersionID: copyFrom,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, version, "")
}

// SetDefault godoc
// @Summary Make a version the default
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Version ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /versions/{id}/default [put]
func (h *VersionHandler) SetDefault(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.SetDefault(c.Request().Context(), caller.ID, id); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "default version updated")
}

// Delete godoc
// @Summary Delete a version
// @Description The default version cannot be deleted.
// @Tags versions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Version ID"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /versions/{id} [delete]
func (h *VersionHandler) Delete(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), caller.ID, id); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "version deleted")
}
