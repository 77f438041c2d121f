package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceType classifies a library resource.
type ResourceType string

const (
	ResourceTypeTool      ResourceType = "tool"
	ResourceTypeGuide     ResourceType = "guide"
	ResourceTypeReference ResourceType = "reference"
	ResourceTypeTemplate  ResourceType = "template"
	ResourceTypeDatabase  ResourceType = "database"
)

// ResourceCategory groups resources under a job story
// (category, job, situation, outcome).
type ResourceCategory struct {
	ID        uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:char(36);not null;index:idx_category_scope"`
	VersionID *uuid.UUID `json:"version_id,omitempty" gorm:"type:char(36);index:idx_category_scope"`
	Category  string     `json:"category" gorm:"size:255;not null"`
	Job       string     `json:"job" gorm:"type:text"`
	Situation string     `json:"situation" gorm:"type:text"`
	Outcome   string     `json:"outcome" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Relations
	Resources []Resource `json:"resources" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate sets UUID before creating the record.
func (c *ResourceCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Resource is a link inside a category. Its lifetime is bounded by the category.
type Resource struct {
	ID         uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	CategoryID uuid.UUID    `json:"category_id" gorm:"type:char(36);not null;index"`
	Name       string       `json:"name" gorm:"size:255;not null"`
	Type       ResourceType `json:"type" gorm:"type:varchar(32);not null"`
	URL        string       `json:"url" gorm:"size:2048;not null"`
	CreatedAt  time.Time    `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Resource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DedupKey identifies a resource for flat-merge duplicate detection.
func (r Resource) DedupKey() string {
	return r.Name + "\x00" + r.URL
}
