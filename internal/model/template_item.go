package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Period is an onboarding timeline bucket.
type Period string

const (
	PeriodFirstDay   Period = "firstDay"
	PeriodFirstWeek  Period = "firstWeek"
	PeriodSecondWeek Period = "secondWeek"
	PeriodThirdWeek  Period = "thirdWeek"
	PeriodFirstMonth Period = "firstMonth"
)

// Priority of a checklist item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TemplateItem is a single onboarding checklist entry.
type TemplateItem struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;index:idx_template_scope"`
	VersionID *uuid.UUID `json:"version_id,omitempty" gorm:"type:char(36);index:idx_template_scope"`
	Period    Period     `json:"period" gorm:"type:varchar(32);not null"`
	Title     string     `json:"title" gorm:"size:512;not null"`
	Completed bool       `json:"completed" gorm:"not null;default:false"`
	Priority  Priority   `json:"priority" gorm:"type:varchar(16);not null;default:'medium'"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (t *TemplateItem) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// DedupKey identifies an item for flat-merge duplicate detection.
func (t TemplateItem) DedupKey() string {
	return string(t.Period) + "\x00" + t.Title
}
