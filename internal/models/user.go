package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Name           string    `gorm:"not null"                  json:"name"`
	Email          string    `gorm:"uniqueIndex;not null"      json:"email"`
	PasswordHash   string    `gorm:"not null"                  json:"-"`
	Role           Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	GoogleID       *string   `gorm:"uniqueIndex"               json:"googleId,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	return nil
}

// ApprovedEmail grants a staff role to a Google account on first sign-in.
type ApprovedEmail struct {
	ID        uint      `gorm:"primaryKey"           json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"type:varchar(16);not null" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
