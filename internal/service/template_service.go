package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

var validPeriods = map[model.Period]bool{
	model.PeriodFirstDay:   true,
	model.PeriodFirstWeek:  true,
	model.PeriodSecondWeek: true,
	model.PeriodThirdWeek:  true,
	model.PeriodFirstMonth: true,
}

var validPriorities = map[model.Priority]bool{
	model.PriorityHigh:   true,
	model.PriorityMedium: true,
	model.PriorityLow:    true,
}

// ParseScope turns a versionId query value into a Scope: empty selects
// everything, "none" selects un-versioned content, anything else must be
// a version id.
func ParseScope(raw string) (model.Scope, error) {
	switch strings.TrimSpace(raw) {
	case "":
		return model.AllContent(), nil
	case "none", "null":
		return model.Unversioned(), nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return model.Scope{}, errors.NewValidationError("versionId", "must be a uuid")
	}
	return model.InVersion(id), nil
}

// CreateTemplateInput is the payload for a new checklist item.
type CreateTemplateInput struct {
	Period    model.Period
	Title     string
	Priority  model.Priority
	VersionID *uuid.UUID
}

// UpdateTemplateInput is the payload for editing a checklist item.
type UpdateTemplateInput struct {
	Title     string
	Completed bool
	Priority  model.Priority
}

// TemplateService manages a user's onboarding checklist.
type TemplateService interface {
	List(ctx context.Context, callerID, userID uuid.UUID, scope model.Scope) ([]model.TemplateItem, error)
	Create(ctx context.Context, userID uuid.UUID, in CreateTemplateInput) (*model.TemplateItem, error)
	Update(ctx context.Context, userID, id uuid.UUID, in UpdateTemplateInput) (*model.TemplateItem, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type templateService struct {
	templates repository.TemplateRepository
	versions  repository.VersionRepository
}

// NewTemplateService creates a new template service.
func NewTemplateService(templates repository.TemplateRepository, versions repository.VersionRepository) TemplateService {
	return &templateService{templates: templates, versions: versions}
}

func (s *templateService) List(ctx context.Context, callerID, userID uuid.UUID, scope model.Scope) ([]model.TemplateItem, error) {
	if callerID != userID {
		return nil, errors.ErrUnauthorized
	}
	items, err := s.templates.ListByUser(ctx, userID, scope)
	if err != nil {
		return nil, errors.Store("list templates", err)
	}
	return items, nil
}

func (s *templateService) Create(ctx context.Context, userID uuid.UUID, in CreateTemplateInput) (*model.TemplateItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.NewValidationError("title", "is required")
	}
	if !validPeriods[in.Period] {
		return nil, errors.NewValidationError("period", "is not a known period")
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !validPriorities[priority] {
		return nil, errors.NewValidationError("priority", "must be high, medium or low")
	}
	if err := ensureOwnVersion(ctx, s.versions, userID, in.VersionID); err != nil {
		return nil, err
	}

	item := &model.TemplateItem{
		UserID:    userID,
		VersionID: in.VersionID,
		Period:    in.Period,
		Title:     title,
		Priority:  priority,
	}
	if err := s.templates.Create(ctx, item); err != nil {
		return nil, errors.Store("create template", err)
	}
	return item, nil
}

func (s *templateService) Update(ctx context.Context, userID, id uuid.UUID, in UpdateTemplateInput) (*model.TemplateItem, error) {
	item, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("template")
		}
		return nil, errors.Store("find template", err)
	}
	if item.UserID != userID {
		return nil, errors.NewNotFoundError("template")
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		item.Title = title
	}
	if in.Priority != "" {
		if !validPriorities[in.Priority] {
			return nil, errors.NewValidationError("priority", "must be high, medium or low")
		}
		item.Priority = in.Priority
	}
	item.Completed = in.Completed

	if err := s.templates.Update(ctx, item); err != nil {
		return nil, errors.Store("update template", err)
	}
	return item, nil
}

func (s *templateService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("template")
		}
		return errors.Store("delete template", err)
	}
	return nil
}

// ensureOwnVersion checks that versionID, when set, names a version of userID.
func ensureOwnVersion(ctx context.Context, versions repository.VersionRepository, userID uuid.UUID, versionID *uuid.UUID) error {
	if versionID == nil {
		return nil
	}
	version, err := versions.FindByID(ctx, *versionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("version")
		}
		return errors.Store("find version", err)
	}
	if version.UserID != userID {
		return errors.NewNotFoundError("version")
	}
	return nil
}
