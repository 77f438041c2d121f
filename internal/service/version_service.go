package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

// CreateVersionInput describes a new version. With CopyFromVersionID set
// the new version receives a full duplicate of that version's content,
// otherwise it is seeded with the baseline content.
type CreateVersionInput struct {
	Name              string
	Description       string
	CopyFromVersionID *uuid.UUID
}

// VersionService manages named content partitions.
type VersionService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Version, error)
	Create(ctx context.Context, userID uuid.UUID, in CreateVersionInput) (*model.Version, error)
	SetDefault(ctx context.Context, userID, versionID uuid.UUID) error
	Delete(ctx context.Context, userID, versionID uuid.UUID) error
}

type versionService struct {
	versions repository.VersionRepository
	content  *contentWriter
	log      zerolog.Logger
}

// NewVersionService creates a new version service.
func NewVersionService(
	versions repository.VersionRepository,
	templates repository.TemplateRepository,
	categories repository.CategoryRepository,
	log zerolog.Logger,
) VersionService {
	return &versionService{
		versions: versions,
		content:  &contentWriter{templates: templates, categories: categories, log: log},
		log:      log,
	}
}

func (s *versionService) List(ctx context.Context, userID uuid.UUID) ([]model.Version, error) {
	versions, err := s.versions.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Store("list versions", err)
	}
	return versions, nil
}

func (s *versionService) Create(ctx context.Context, userID uuid.UUID, in CreateVersionInput) (*model.Version, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errors.NewValidationError("name", "is required")
	}

	var (
		items      []model.TemplateItem
		categories []model.ResourceCategory
	)
	if in.CopyFromVersionID != nil {
		if err := ensureOwnVersion(ctx, s.versions, userID, in.CopyFromVersionID); err != nil {
			return nil, err
		}
		scope := model.InVersion(*in.CopyFromVersionID)
		var err error
		if items, err = s.content.templates.ListByUser(ctx, userID, scope); err != nil {
			return nil, errors.Store("load source templates", err)
		}
		if categories, err = s.content.categories.ListByUser(ctx, userID, scope); err != nil {
			return nil, errors.Store("load source categories", err)
		}
	}

	version := &model.Version{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.versions.Create(ctx, version); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("user")
		}
		return nil, errors.Store("create version", err)
	}

	if in.CopyFromVersionID != nil {
		stats := s.content.copyAll(ctx, items, categories, userID, &version.ID)
		s.log.Info().
			Str("version_id", version.ID.String()).
			Str("source_version_id", in.CopyFromVersionID.String()).
			Int("templates", stats.templates).
			Int("categories", stats.categories).
			Int("resources", stats.resources).
			Int("failures", stats.failures).
			Msg("version copied")
		return version, nil
	}

	if err := s.content.seedBaseline(ctx, userID, &version.ID); err != nil {
		return nil, errors.Store("seed version", err)
	}
	return version, nil
}

func (s *versionService) SetDefault(ctx context.Context, userID, versionID uuid.UUID) error {
	if err := s.versions.SetDefault(ctx, userID, versionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("version")
		}
		return errors.Store("set default version", err)
	}
	return nil
}

func (s *versionService) Delete(ctx context.Context, userID, versionID uuid.UUID) error {
	err := s.versions.DeleteCascade(ctx, userID, versionID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrVersionIsDefault):
		return errors.ErrCannotDeleteDefault
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.NewNotFoundError("version")
	default:
		return errors.Store("delete version", err)
	}
}
