package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"onboarding/internal/model"
	"onboarding/internal/repository"
)

// contentWriter copies checklist items and categories into an account.
// Individual insert failures are logged and counted, never returned.
type contentWriter struct {
	templates  repository.TemplateRepository
	categories repository.CategoryRepository
	log        zerolog.Logger
}

type copyStats struct {
	templates  int
	categories int
	resources  int
	failures   int
}

func (w *contentWriter) addTemplate(ctx context.Context, stats *copyStats, src model.TemplateItem, userID uuid.UUID, versionID *uuid.UUID) {
	item := &model.TemplateItem{
		UserID:    userID,
		VersionID: versionID,
		Period:    src.Period,
		Title:     src.Title,
		Priority:  src.Priority,
	}
	if err := w.templates.Create(ctx, item); err != nil {
		stats.failures++
		w.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("title", src.Title).
			Msg("copy template item failed")
		return
	}
	stats.templates++
}

// addCategory creates an empty copy of src. It returns false on failure.
func (w *contentWriter) addCategory(ctx context.Context, stats *copyStats, src model.ResourceCategory, userID uuid.UUID, versionID *uuid.UUID) (*model.ResourceCategory, bool) {
	category := &model.ResourceCategory{
		UserID:    userID,
		VersionID: versionID,
		Category:  src.Category,
		Job:       src.Job,
		Situation: src.Situation,
		Outcome:   src.Outcome,
	}
	if err := w.categories.Create(ctx, category); err != nil {
		stats.failures++
		w.log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("category", src.Category).
			Msg("copy resource category failed")
		return nil, false
	}
	stats.categories++
	return category, true
}

func (w *contentWriter) addResource(ctx context.Context, stats *copyStats, src model.Resource, categoryID uuid.UUID) {
	resource := &model.Resource{
		CategoryID: categoryID,
		Name:       src.Name,
		Type:       src.Type,
		URL:        src.URL,
	}
	if err := w.categories.CreateResource(ctx, resource); err != nil {
		stats.failures++
		w.log.Warn().Err(err).
			Str("category_id", categoryID.String()).
			Str("resource", src.Name).
			Msg("copy resource failed")
		return
	}
	stats.resources++
}

// copyAll duplicates every item and category (with resources) into the
// destination partition without duplicate detection.
func (w *contentWriter) copyAll(ctx context.Context, items []model.TemplateItem, categories []model.ResourceCategory, userID uuid.UUID, versionID *uuid.UUID) copyStats {
	var stats copyStats
	for _, item := range items {
		w.addTemplate(ctx, &stats, item, userID, versionID)
	}
	for _, src := range categories {
		category, ok := w.addCategory(ctx, &stats, src, userID, versionID)
		if !ok {
			continue
		}
		for _, res := range src.Resources {
			w.addResource(ctx, &stats, res, category.ID)
		}
	}
	return stats
}

// seedBaseline writes the default checklist and library for a new user or
// a new empty version.
func (w *contentWriter) seedBaseline(ctx context.Context, userID uuid.UUID, versionID *uuid.UUID) error {
	if err := w.templates.CreateBatch(ctx, baselineItems(userID, versionID)); err != nil {
		return fmt.Errorf("seed templates: %w", err)
	}
	for _, category := range baselineCategories(userID, versionID) {
		c := category
		if err := w.categories.Create(ctx, &c); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}
	return nil
}
