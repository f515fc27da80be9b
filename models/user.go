package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an API account that can authenticate and manage leads
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`

	// Inactive accounts cannot authenticate; login answers with an
	// activation hint instead of a token. Registration creates accounts
	// active.
	IsActive bool `gorm:"not null" json:"is_active"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
