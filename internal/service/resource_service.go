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

var validResourceTypes = map[model.ResourceType]bool{
	model.ResourceTypeTool:      true,
	model.ResourceTypeGuide:     true,
	model.ResourceTypeReference: true,
	model.ResourceTypeTemplate:  true,
	model.ResourceTypeDatabase:  true,
}

// CreateCategoryInput is the job story for a new resource category.
type CreateCategoryInput struct {
	Category  string
	Job       string
	Situation string
	Outcome   string
	VersionID *uuid.UUID
}

// CreateResourceInput is the payload for a new library link.
type CreateResourceInput struct {
	Name string
	Type model.ResourceType
	URL  string
}

// ResourceService manages a user's JTBD resource library.
type ResourceService interface {
	ListCategories(ctx context.Context, callerID, userID uuid.UUID, scope model.Scope) ([]model.ResourceCategory, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*model.ResourceCategory, error)
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) error
	AddResource(ctx context.Context, userID, categoryID uuid.UUID, in CreateResourceInput) (*model.Resource, error)
	DeleteResource(ctx context.Context, userID, id uuid.UUID) error
}

type resourceService struct {
	categories repository.CategoryRepository
	versions   repository.VersionRepository
}

// NewResourceService creates a new resource library service.
func NewResourceService(categories repository.CategoryRepository, versions repository.VersionRepository) ResourceService {
	return &resourceService{categories: categories, versions: versions}
}

func (s *resourceService) ListCategories(ctx context.Context, callerID, userID uuid.UUID, scope model.Scope) ([]model.ResourceCategory, error) {
	if callerID != userID {
		return nil, errors.ErrUnauthorized
	}
	categories, err := s.categories.ListByUser(ctx, userID, scope)
	if err != nil {
		return nil, errors.Store("list categories", err)
	}
	return categories, nil
}

func (s *resourceService) CreateCategory(ctx context.Context, userID uuid.UUID, in CreateCategoryInput) (*model.ResourceCategory, error) {
	label := strings.TrimSpace(in.Category)
	if label == "" {
		return nil, errors.NewValidationError("category", "is required")
	}
	if err := ensureOwnVersion(ctx, s.versions, userID, in.VersionID); err != nil {
		return nil, err
	}

	category := &model.ResourceCategory{
		UserID:    userID,
		VersionID: in.VersionID,
		Category:  label,
		Job:       strings.TrimSpace(in.Job),
		Situation: strings.TrimSpace(in.Situation),
		Outcome:   strings.TrimSpace(in.Outcome),
		Resources: []model.Resource{},
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, errors.Store("create category", err)
	}
	return category, nil
}

func (s *resourceService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("category")
		}
		return errors.Store("delete category", err)
	}
	return nil
}

func (s *resourceService) AddResource(ctx context.Context, userID, categoryID uuid.UUID, in CreateResourceInput) (*model.Resource, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}
	if !validResourceTypes[in.Type] {
		return nil, errors.NewValidationError("type", "is not a known resource type")
	}

	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("category")
		}
		return nil, errors.Store("find category", err)
	}
	if category.UserID != userID {
		return nil, errors.NewNotFoundError("category")
	}

	url := strings.TrimSpace(in.URL)
	if url == "" {
		url = "#"
	}
	resource := &model.Resource{
		CategoryID: category.ID,
		Name:       name,
		Type:       in.Type,
		URL:        url,
	}
	if err := s.categories.CreateResource(ctx, resource); err != nil {
		return nil, errors.Store("create resource", err)
	}
	return resource, nil
}

func (s *resourceService) DeleteResource(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.categories.DeleteResource(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("resource")
		}
		return errors.Store("delete resource", err)
	}
	return nil
}
