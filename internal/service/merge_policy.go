package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"onboarding/internal/config"
	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/repository"
)

// CloneResult reports what a clone added to the target account.
type CloneResult struct {
	Policy              string     `json:"policy"`
	VersionID           *uuid.UUID `json:"versionId,omitempty"`
	VersionName         string     `json:"versionName,omitempty"`
	TemplatesProcessed  int        `json:"templatesProcessed"`
	TemplatesAdded      int        `json:"templatesAdded"`
	TemplatesSkipped    int        `json:"templatesSkipped"`
	CategoriesProcessed int        `json:"categoriesProcessed"`
	CategoriesAdded     int        `json:"categoriesAdded"`
	CategoriesMerged    int        `json:"categoriesMerged"`
	ResourcesAdded      int        `json:"resourcesAdded"`
	ResourcesSkipped    int        `json:"resourcesSkipped"`
	CopyFailures        int        `json:"copyFailures"`
}

// MergePolicy decides how shared content lands in a target account.
type MergePolicy interface {
	Name() string
	Merge(ctx context.Context, shareTitle string, items []model.TemplateItem, categories []model.ResourceCategory, targetUserID uuid.UUID) (*CloneResult, error)
}

// NewMergePolicy returns the policy configured for the deployment.
func NewMergePolicy(
	name string,
	versions repository.VersionRepository,
	templates repository.TemplateRepository,
	categories repository.CategoryRepository,
	log zerolog.Logger,
) (MergePolicy, error) {
	w := &contentWriter{templates: templates, categories: categories, log: log}
	switch name {
	case config.ClonePolicyFlat:
		return &flatMerge{content: w}, nil
	case config.ClonePolicyVersioned, "":
		return &versionedMerge{content: w, versions: versions}, nil
	default:
		return nil, fmt.Errorf("unknown clone policy %q", name)
	}
}

// flatMerge copies into the target's un-versioned space, skipping items
// already present by (title, period) and resources by (name, url), and
// folding categories into existing ones with the same label.
type flatMerge struct {
	content *contentWriter
}

func (m *flatMerge) Name() string { return config.ClonePolicyFlat }

func (m *flatMerge) Merge(ctx context.Context, _ string, items []model.TemplateItem, categories []model.ResourceCategory, targetUserID uuid.UUID) (*CloneResult, error) {
	existingItems, err := m.content.templates.ListByUser(ctx, targetUserID, model.Unversioned())
	if err != nil {
		return nil, errors.Store("load target templates", err)
	}
	existingCategories, err := m.content.categories.ListByUser(ctx, targetUserID, model.Unversioned())
	if err != nil {
		return nil, errors.Store("load target categories", err)
	}

	result := &CloneResult{
		Policy:              m.Name(),
		TemplatesProcessed:  len(items),
		CategoriesProcessed: len(categories),
	}
	var stats copyStats

	seen := make(map[string]bool, len(existingItems))
	for _, item := range existingItems {
		seen[item.DedupKey()] = true
	}
	for _, item := range items {
		if seen[item.DedupKey()] {
			result.TemplatesSkipped++
			continue
		}
		seen[item.DedupKey()] = true
		m.content.addTemplate(ctx, &stats, item, targetUserID, nil)
	}

	byLabel := make(map[string]*model.ResourceCategory, len(existingCategories))
	for i := range existingCategories {
		if _, ok := byLabel[existingCategories[i].Category]; !ok {
			byLabel[existingCategories[i].Category] = &existingCategories[i]
		}
	}
	for _, src := range categories {
		target, merged := byLabel[src.Category]
		if merged {
			result.CategoriesMerged++
		} else {
			created, ok := m.content.addCategory(ctx, &stats, src, targetUserID, nil)
			if !ok {
				continue
			}
			target = created
			byLabel[src.Category] = target
		}

		present := make(map[string]bool, len(target.Resources))
		for _, res := range target.Resources {
			present[res.DedupKey()] = true
		}
		for _, res := range src.Resources {
			if present[res.DedupKey()] {
				result.ResourcesSkipped++
				continue
			}
			present[res.DedupKey()] = true
			before := stats.resources
			m.content.addResource(ctx, &stats, res, target.ID)
			if stats.resources > before {
				target.Resources = append(target.Resources, res)
			}
		}
	}

	result.TemplatesAdded = stats.templates
	result.CategoriesAdded = stats.categories
	result.ResourcesAdded = stats.resources
	result.CopyFailures = stats.failures
	return result, nil
}

// versionedMerge creates a fresh version named after the share and copies
// everything into it. The destination is empty, so nothing is deduplicated.
type versionedMerge struct {
	content  *contentWriter
	versions repository.VersionRepository
}

func (m *versionedMerge) Name() string { return config.ClonePolicyVersioned }

func (m *versionedMerge) Merge(ctx context.Context, shareTitle string, items []model.TemplateItem, categories []model.ResourceCategory, targetUserID uuid.UUID) (*CloneResult, error) {
	version := &model.Version{
		UserID:      targetUserID,
		Name:        shareTitle,
		Description: "Cloned from a shared invite",
	}
	if err := m.versions.Create(ctx, version); err != nil {
		return nil, errors.Store("create clone version", err)
	}

	stats := m.content.copyAll(ctx, items, categories, targetUserID, &version.ID)
	return &CloneResult{
		Policy:              m.Name(),
		VersionID:           &version.ID,
		VersionName:         version.Name,
		TemplatesProcessed:  len(items),
		TemplatesAdded:      stats.templates,
		CategoriesProcessed: len(categories),
		CategoriesAdded:     stats.categories,
		ResourcesAdded:      stats.resources,
		CopyFailures:        stats.failures,
	}, nil
}
