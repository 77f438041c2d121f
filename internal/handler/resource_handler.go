package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"onboarding/internal/model"
	"onboarding/internal/service"
)

// ResourceHandler serves the JTBD resource library.
type ResourceHandler struct {
	svc service.ResourceService
}

// NewResourceHandler creates a new resource library handler.
func NewResourceHandler(svc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{svc: svc}
}

// CreateCategoryRequest is a job story for a new category.
type CreateCategoryRequest struct {
	Category  string `json:"category" validate:"required"`
	Job       string `json:"job"`
	Situation string `json:"situation"`
	Outcome   string `json:"outcome"`
	VersionID string `json:"versionId"`
}

// CreateResourceRequest is a new link in a category.
type CreateResourceRequest struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=tool guide reference template database"`
	URL  string `json:"url"`
}

// List godoc
// @Summary List resource categories
// @Tags jtbd
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param versionId query string false "Version ID or none"
// @Success 200 {object} errors.Response{data=[]model.ResourceCategory}
// @Failure 401 {object} errors.Response
// @Router /jtbd/{userId} [get]
func (h *ResourceHandler) List(c echo.Context) error {
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

	categories, err := h.svc.ListCategories(c.Request().Context(), caller.ID, userID, scope)
	if err != nil {
		return fail(c, err)
	}
	if categories == nil {
		categories = []model.ResourceCategory{}
	}
	return ok(c, http.StatusOK, categories, "")
}

// CreateCategory godoc
// @Summary Add a resource category
// @Tags jtbd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCategoryRequest true "Job story"
// @Success 201 {object} errors.Response{data=model.ResourceCategory}
// @Failure 400 {object} errors.Response
// @Router /jtbd [post]
func (h *ResourceHandler) CreateCategory(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	var req CreateCategoryRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}
	versionID, err := optionalUUID("versionId", req.VersionID)
	if err != nil {
		return fail(c, err)
	}

	category, err := h.svc.CreateCategory(c.Request().Context(), caller.ID, service.CreateCategoryInput{
		Category:  req.Category,
		Job:       req.Job,
		Situation: req.Situation,
		Outcome:   req.Outcome,
		VersionID: versionID,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, category, "")
}

// AddResource godoc
// @Summary Add a resource to a category
// @Tags jtbd
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param categoryId path string true "Category ID"
// @Param request body CreateResourceRequest true "Resource"
// @Success 201 {object} errors.Response{data=model.Resource}
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /jtbd/{categoryId}/resources [post]
func (h *ResourceHandler) AddResource(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	categoryID, err := pathUUID(c, "categoryId")
	if err != nil {
		return fail(c, err)
	}
	var req CreateResourceRequest
	if err := bind(c, &req); err != nil {
		return fail(c, err)
	}

	resource, err := h.svc.AddResource(c.Request().Context(), caller.ID, categoryID, service.CreateResourceInput{
		Name: req.Name,
		Type: model.ResourceType(req.Type),
		URL:  req.URL,
	})
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, resource, "")
}

// DeleteCategory godoc
// @Summary Delete a category and its resources
// @Tags jtbd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /jtbd/{id} [delete]
func (h *ResourceHandler) DeleteCategory(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), caller.ID, id); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "category deleted")
}

// DeleteResource godoc
// @Summary Delete a resource
// @Tags jtbd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /jtbd/resources/{id} [delete]
func (h *ResourceHandler) DeleteResource(c echo.Context) error {
	caller, err := currentIdentity(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	if err := h.svc.DeleteResource(c.Request().Context(), caller.ID, id); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, nil, "resource deleted")
}
