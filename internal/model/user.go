package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an applicant or staff account of the admissions backend.
type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	FullName     string         `json:"full_name" gorm:"size:255;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	RoleID       uint           `json:"role_id" gorm:"not null;index"`
	Role         RoleRecord     `json:"-" gorm:"foreignKey:RoleID"`
	Verified     bool           `json:"is_verified" gorm:"default:false"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Principal projects the user into the identity handed to clients.
// The Role association must be loaded.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:         u.ID.String(),
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       Role{ID: u.Role.ID, Name: u.Role.Name},
		IsVerified: u.Verified,
	}
}
