package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

// CloneService materializes a shared snapshot into a target account.
type CloneService interface {
	// Clone performs at most one merge of the share behind token into
	// targetUserID. Without confirmed, a target that already owns content
	// gets a RequiresConfirmationError and nothing is written.
	Clone(ctx context.Context, token string, targetUserID uuid.UUID, confirmed bool) (*CloneResult, string, error)
}

type cloneService struct {
	shares     repository.ShareRepository
	cloneLogs  repository.CloneLogRepository
	templates  repository.TemplateRepository
	categories repository.CategoryRepository
	users      UserService
	policy     MergePolicy
	log        zerolog.Logger
}

// NewCloneService creates a new clone service using policy for every clone.
func NewCloneService(
	shares repository.ShareRepository,
	cloneLogs repository.CloneLogRepository,
	templates repository.TemplateRepository,
	categories repository.CategoryRepository,
	users UserService,
	policy MergePolicy,
	log zerolog.Logger,
) CloneService {
	return &cloneService{
		shares:     shares,
		cloneLogs:  cloneLogs,
		templates:  templates,
		categories: categories,
		users:      users,
		policy:     policy,
		log:        log,
	}
}

func (s *cloneService) Clone(ctx context.Context, token string, targetUserID uuid.UUID, confirmed bool) (*CloneResult, string, error) {
	share, err := findLiveShare(ctx, s.shares, token, timeNow())
	if err != nil {
		return nil, "", err
	}
	if share.OwnerUserID == targetUserID {
		return nil, "", errors.ErrSelfClone
	}
	if _, err := s.users.GetUser(ctx, targetUserID); err != nil {
		return nil, "", err
	}

	if !confirmed {
		existing, err := s.existingData(ctx, targetUserID)
		if err != nil {
			return nil, "", err
		}
		if existing.Templates || existing.JTBD {
			return nil, "", &errors.RequiresConfirmationError{Existing: existing}
		}
	}

	items, categories, err := loadSnapshot(ctx, s.templates, s.categories, share)
	if err != nil {
		return nil, "", err
	}

	reserved, err := s.shares.ReserveClone(ctx, share.ID, timeNow())
	if err != nil {
		return nil, "", errors.Store("reserve clone", err)
	}
	if !reserved {
		rejectErr := s.classifyRejection(ctx, share.ID)
		s.audit(ctx, &model.CloneLog{
			ShareID:      share.ID,
			TargetUserID: targetUserID,
			Policy:       s.policy.Name(),
			Status:       model.CloneStatusRejected,
			ErrorMessage: rejectErr.Error(),
		})
		return nil, "", rejectErr
	}

	result, err := s.policy.Merge(ctx, share.Title, items, categories, targetUserID)
	if err != nil {
		s.audit(ctx, &model.CloneLog{
			ShareID:      share.ID,
			TargetUserID: targetUserID,
			Policy:       s.policy.Name(),
			Status:       model.CloneStatusFailed,
			ErrorMessage: err.Error(),
		})
		return nil, "", err
	}

	s.audit(ctx, &model.CloneLog{
		ShareID:         share.ID,
		TargetUserID:    targetUserID,
		Policy:          result.Policy,
		Status:          model.CloneStatusCompleted,
		TemplatesAdded:  result.TemplatesAdded,
		CategoriesAdded: result.CategoriesAdded,
		ResourcesAdded:  result.ResourcesAdded,
		CopyFailures:    result.CopyFailures,
	})
	s.log.Info().
		Str("share_id", share.ID.String()).
		Str("target_user_id", targetUserID.String()).
		Str("policy", result.Policy).
		Int("templates_added", result.TemplatesAdded).
		Int("categories_added", result.CategoriesAdded).
		Int("resources_added", result.ResourcesAdded).
		Int("copy_failures", result.CopyFailures).
		Msg("share cloned")

	return result, CloneSummary(result), nil
}

func (s *cloneService) existingData(ctx context.Context, userID uuid.UUID) (errors.ExistingData, error) {
	templateCount, err := s.templates.CountByUser(ctx, userID, model.AllContent())
	if err != nil {
		return errors.ExistingData{}, errors.Store("count target templates", err)
	}
	categoryCount, err := s.categories.CountByUser(ctx, userID, model.AllContent())
	if err != nil {
		return errors.ExistingData{}, errors.Store("count target categories", err)
	}
	return errors.ExistingData{
		Templates:     templateCount > 0,
		JTBD:          categoryCount > 0,
		TemplateCount: templateCount,
		CategoryCount: categoryCount,
	}, nil
}

// classifyRejection explains why the conditional reservation matched no row.
func (s *cloneService) classifyRejection(ctx context.Context, shareID uuid.UUID) error {
	share, err := s.shares.FindByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("share")
		}
		return errors.Store("find share", err)
	}
	switch {
	case !share.IsActive:
		return errors.NewNotFoundError("share")
	case share.Expired(timeNow()):
		return errors.ErrExpired
	default:
		return errors.ErrLimitReached
	}
}

func (s *cloneService) audit(ctx context.Context, entry *model.CloneLog) {
	if err := s.cloneLogs.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("share_id", entry.ShareID.String()).
			Str("status", string(entry.Status)).
			Msg("write clone log failed")
	}
}

// CloneSummary renders a human readable sentence for a clone result.
func CloneSummary(r *CloneResult) string {
	var details []string
	add := func(n int, singular, plural, suffix string) {
		if n == 0 {
			return
		}
		noun := plural
		if n == 1 {
			noun = singular
		}
		details = append(details, fmt.Sprintf("%d %s %s", n, noun, suffix))
	}

	var msg string
	if r.VersionID != nil {
		msg = fmt.Sprintf("Content cloned into new version %q!", r.VersionName)
		add(r.TemplatesAdded, "template", "templates", "added")
		add(r.CategoriesAdded, "category", "categories", "added")
		add(r.ResourcesAdded, "resource", "resources", "added")
	} else {
		msg = "Content successfully merged into your account!"
		add(r.TemplatesAdded, "new template", "new templates", "added")
		add(r.TemplatesSkipped, "duplicate template", "duplicate templates", "skipped")
		add(r.CategoriesAdded, "new category", "new categories", "created")
		add(r.CategoriesMerged, "category", "categories", "merged with existing")
		add(r.ResourcesAdded, "new resource", "new resources", "added")
		add(r.ResourcesSkipped, "duplicate resource", "duplicate resources", "skipped")
	}
	add(r.CopyFailures, "item", "items", "could not be copied")

	if len(details) > 0 {
		msg += " " + strings.Join(details, ", ") + "."
	}
	return msg
}
