package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/model"
)

// TemplateRepository defines checklist item persistence operations.
type TemplateRepository interface {
	Create(ctx context.Context, item *model.TemplateItem) error
	CreateBatch(ctx context.Context, items []model.TemplateItem) error
	Update(ctx context.Context, item *model.TemplateItem) error
	Delete(ctx context.Context, id, userID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TemplateItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) ([]model.TemplateItem, error)
	CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error)
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// Create creates a new checklist item.
func (r *templateRepository) Create(ctx context.Context, item *model.TemplateItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// CreateBatch inserts many items in one statement per batch.
func (r *templateRepository) CreateBatch(ctx context.Context, items []model.TemplateItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

// Update saves title, completion and priority of an item.
func (r *templateRepository) Update(ctx context.Context, item *model.TemplateItem) error {
	return r.db.WithContext(ctx).Model(item).
		Select("title", "completed", "priority").
		Updates(item).Error
}

// Delete removes an item owned by userID.
func (r *templateRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.TemplateItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds an item by ID.
func (r *templateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TemplateItem, error) {
	var item model.TemplateItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser lists a user's items in scope ordered by period then age.
func (r *templateRepository) ListByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) ([]model.TemplateItem, error) {
	var items []model.TemplateItem
	q := applyScope(r.db.WithContext(ctx).Where("user_id = ?", userID), scope)
	if err := q.Order("period").Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountByUser counts a user's items in scope.
func (r *templateRepository) CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error) {
	var count int64
	q := applyScope(r.db.WithContext(ctx).Model(&model.TemplateItem{}).Where("user_id = ?", userID), scope)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
