package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User owns every other entity transitively.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	AvatarURL    string    `json:"avatar_url,omitempty" gorm:"size:1024"`
	PasswordHash string    `json:"-" gorm:"size:255"` // empty for identity-provider accounts
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
