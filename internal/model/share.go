package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareRecord grants read access to a snapshot of an owner's content and
// a bounded number of clones. InviteToken is immutable once issued.
type ShareRecord struct {
	ID          uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUserID uuid.UUID  `json:"owner_user_id" gorm:"type:char(36);not null;index"`
	VersionID   *uuid.UUID `json:"version_id,omitempty" gorm:"type:char(36);index"`
	InviteToken string     `json:"invite_token" gorm:"uniqueIndex;size:64;not null"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxClones   *int       `json:"max_clones,omitempty"`
	CloneCount  int        `json:"clone_count" gorm:"not null;default:0"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (s *ShareRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the share has an expiry at or before now.
func (s *ShareRecord) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// LimitReached reports whether the clone limit is exhausted.
func (s *ShareRecord) LimitReached() bool {
	return s.MaxClones != nil && s.CloneCount >= *s.MaxClones
}

// CloneStatus is the outcome recorded for a clone attempt.
type CloneStatus string

const (
	CloneStatusCompleted CloneStatus = "completed"
	CloneStatusRejected  CloneStatus = "rejected"
	CloneStatusFailed    CloneStatus = "failed"
)

// CloneLog records a clone attempt that reached the reservation step.
type CloneLog struct {
	ID              uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	ShareID         uuid.UUID   `json:"share_id" gorm:"type:char(36);not null;index"`
	TargetUserID    uuid.UUID   `json:"target_user_id" gorm:"type:char(36);not null;index"`
	Policy          string      `json:"policy" gorm:"type:varchar(16);not null"`
	Status          CloneStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	TemplatesAdded  int         `json:"templates_added"`
	CategoriesAdded int         `json:"categories_added"`
	ResourcesAdded  int         `json:"resources_added"`
	CopyFailures    int         `json:"copy_failures"`
	ErrorMessage    string      `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt       time.Time   `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *CloneLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
