package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/model"
)

// CategoryRepository defines resource category and resource persistence operations.
type CategoryRepository interface {
	// Create inserts the category and any Resources attached to it.
	Create(ctx context.Context, category *model.ResourceCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ResourceCategory, error)
	ListByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) ([]model.ResourceCategory, error)
	CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	CreateResource(ctx context.Context, resource *model.Resource) error
	DeleteResource(ctx context.Context, id, userID uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.ResourceCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// FindByID finds a category by ID with its resources.
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ResourceCategory, error) {
	var category model.ResourceCategory
	if err := r.db.WithContext(ctx).Preload("Resources", orderByCreated).
		Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser lists a user's categories in scope, newest first, with resources.
func (r *categoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) ([]model.ResourceCategory, error) {
	var categories []model.ResourceCategory
	q := applyScope(r.db.WithContext(ctx).Where("user_id = ?", userID), scope)
	if err := q.Preload("Resources", orderByCreated).
		Order("created_at DESC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// CountByUser counts a user's categories in scope.
func (r *categoryRepository) CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error) {
	var count int64
	q := applyScope(r.db.WithContext(ctx).Model(&model.ResourceCategory{}).Where("user_id = ?", userID), scope)
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a category owned by userID together with its resources.
func (r *categoryRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.ResourceCategory{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("category_id = ?", id).Delete(&model.Resource{}).Error
	})
}

func (r *categoryRepository) CreateResource(ctx context.Context, resource *model.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// DeleteResource removes a resource whose category is owned by userID.
func (r *categoryRepository) DeleteResource(ctx context.Context, id, userID uuid.UUID) error {
	owned := r.db.Model(&model.ResourceCategory{}).Select("id").Where("user_id = ?", userID)
	res := r.db.WithContext(ctx).
		Where("id = ? AND category_id IN (?)", id, owned).
		Delete(&model.Resource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at")
}
