package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/model"
)

// ShareRepository defines share record persistence operations.
type ShareRepository interface {
	Create(ctx context.Context, share *model.ShareRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ShareRecord, error)
	FindActiveByToken(ctx context.Context, token string) (*model.ShareRecord, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.ShareRecord, error)
	Deactivate(ctx context.Context, id, ownerID uuid.UUID) error
	// ReserveClone increments clone_count by one only while the share is
	// active, unexpired at now and under its limit. It reports whether
	// the increment happened.
	ReserveClone(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

type shareRepository struct {
	db *gorm.DB
}

// NewShareRepository creates a new share repository.
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *model.ShareRecord) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *shareRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ShareRecord, error) {
	var share model.ShareRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) FindActiveByToken(ctx context.Context, token string) (*model.ShareRecord, error) {
	var share model.ShareRecord
	if err := r.db.WithContext(ctx).
		Where("invite_token = ? AND is_active = ?", token, true).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *shareRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.ShareRecord, error) {
	var shares []model.ShareRecord
	if err := r.db.WithContext(ctx).Where("owner_user_id = ?", ownerID).
		Order("created_at DESC").Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

func (r *shareRepository) Deactivate(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.ShareRecord{}).
		Where("id = ? AND owner_user_id = ?", id, ownerID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *shareRepository) ReserveClone(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ShareRecord{}).
		Where("id = ? AND is_active = ?", id, true).
		Where("max_clones IS NULL OR clone_count < max_clones").
		Where("expires_at IS NULL OR expires_at > ?", now).
		UpdateColumn("clone_count", gorm.Expr("clone_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CloneLogRepository defines clone audit log persistence operations.
type CloneLogRepository interface {
	Create(ctx context.Context, log *model.CloneLog) error
	ListByShare(ctx context.Context, shareID uuid.UUID) ([]model.CloneLog, error)
}

type cloneLogRepository struct {
	db *gorm.DB
}

// NewCloneLogRepository creates a new clone log repository.
func NewCloneLogRepository(db *gorm.DB) CloneLogRepository {
	return &cloneLogRepository{db: db}
}

func (r *cloneLogRepository) Create(ctx context.Context, log *model.CloneLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *cloneLogRepository) ListByShare(ctx context.Context, shareID uuid.UUID) ([]model.CloneLog, error) {
	var logs []model.CloneLog
	if err := r.db.WithContext(ctx).Where("share_id = ?", shareID).
		Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
