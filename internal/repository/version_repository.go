package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"onboarding/internal/model"
)

// VersionRepository defines version persistence operations. Every
// operation that touches the default flag locks the owning user row so
// default changes for one user are serialized.
type VersionRepository interface {
	// Create inserts the version; the user's first version becomes default.
	Create(ctx context.Context, version *model.Version) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Version, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Version, error)
	SetDefault(ctx context.Context, userID, versionID uuid.UUID) error
	// DeleteCascade removes a non-default version, its content, and
	// deactivates shares bound to it.
	DeleteCascade(ctx context.Context, userID, versionID uuid.UUID) error
}

// ErrVersionIsDefault is returned by DeleteCascade for the default version.
var ErrVersionIsDefault = errors.New("version is the default")

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new version repository.
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func lockUser(tx *gorm.DB, userID uuid.UUID) error {
	var user model.User
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").Where("id = ?", userID).First(&user).Error
}

func (r *versionRepository) Create(ctx context.Context, version *model.Version) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, version.UserID); err != nil {
			return err
		}
		var defaults int64
		if err := tx.Model(&model.Version{}).
			Where("user_id = ? AND is_default = ?", version.UserID, true).
			Count(&defaults).Error; err != nil {
			return err
		}
		version.IsDefault = defaults == 0
		return tx.Create(version).Error
	})
}

func (r *versionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Version, error) {
	var version model.Version
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&version).Error; err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Version, error) {
	var versions []model.Version
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

// SetDefault unsets every default of the user then sets versionID, inside
// one transaction holding the user row lock.
func (r *versionRepository) SetDefault(ctx context.Context, userID, versionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Model(&model.Version{}).
			Where("user_id = ? AND is_default = ?", userID, true).
			Update("is_default", false).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Version{}).
			Where("id = ? AND user_id = ?", versionID, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// rolls back the unset above
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *versionRepository) DeleteCascade(ctx context.Context, userID, versionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUser(tx, userID); err != nil {
			return err
		}
		var version model.Version
		if err := tx.Where("id = ? AND user_id = ?", versionID, userID).First(&version).Error; err != nil {
			return err
		}
		if version.IsDefault {
			return ErrVersionIsDefault
		}

		categoryIDs := tx.Model(&model.ResourceCategory{}).Select("id").Where("version_id = ?", versionID)
		if err := tx.Where("category_id IN (?)", categoryIDs).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("version_id = ?", versionID).Delete(&model.ResourceCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("version_id = ?", versionID).Delete(&model.TemplateItem{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.ShareRecord{}).Where("version_id = ?", versionID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Delete(&version).Error
	})
}
