package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/model"
	"onboarding/internal/service"
)

// TemplateHandler serves the onboarding checklist.
type TemplateHandler struct {
	svc service.TemplateService
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(svc service.TemplateService) *TemplateHandler {
	return &TemplateHandler{svc: svc}
}

// CreateTemplateRequest is a new checklist item.
type CreateTemplateRequest struct {
	Period    string `json:"period" validate:"required,oneof=firstDay firstWeek secondWeek thirdWeek firstMonth"`
	Title     string `json:"title" validate:"required"`
	Priority  string `json:"priority" validate:"omitempty,oneof=high medium low"`
	VersionID string `json:"versionId"`
}

// UpdateTemplateRequest edits a checklist item.
type UpdateTemplateRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

// List godoc
// @Summary List checklist items
// @Description Without versionId every item is returned; versionId=none selects un-versioned items.
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param versionId query string false "Version ID or none"
// @Success 200 {object} errors.Response{data=[]model.TemplateItem}
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /templates/{userId} [get]
func (h *TemplateHandler) List(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	userID, err := pathUUID(c, "userId")
	if err != nil {
		return fail(c, err)
	}
	scope, err := service.ParseScope(c.QueryParam("versionId"))
	if err != nil {
		return fail(c, err)
	}

	items, err := h.svc.List(c.Request().Context(), caller.ID, userID, scope)
	if err != nil {
		return fail(c, err)
	}
	if items == nil {
		items = []model.TemplateItem{}
	}
	return ok(c, http.StatusOK, items, "")
}

// Create godoc
// @Summary Add a checklist item
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTemplateRequest true "Item"
// @Success 201 {object} errors.Response{data=model.TemplateItem}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /templates [post]
func (h *TemplateHandler) Create(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateTemplateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	versionID, err := optionalUUID("versionId", req.VersionID)
	if err != nil {
		return fail(c, err)
	}

	item, err := h.svc.Create(c.Request().Context(), caller.ID, service.CreateTemplateInput{
		Period:    model.Period(req.Period),
		Title:     req.Title,
		Priority:  model.Priority(req.Priority),
		VersionID: versionID,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, item, "")
}

// Update godoc
// @Summary Edit a checklist item
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body UpdateTemplateRequest true "Changes"
// @Success 200 {object} errors.Response{data=model.TemplateItem}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /templates/{id} [put]
func (h *TemplateHandler) Update(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req UpdateTemplateRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	item, err := h.svc.Update(c.Request().Context(), caller.ID, id, service.UpdateTemplateInput{
		Title:     req.Title,
		Completed: req.Completed,
		Priority:  model.Priority(req.Priority),
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, item, "")
}

// Delete godoc
// @Summary Delete a checklist item
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(c echo.Context) error {
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
	return ok(c, http.StatusOK, nil, "template deleted")
}
