package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Program is a study programme applicants can apply to.
type Program struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name           string          `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Degree         string          `json:"degree" gorm:"size:64;not null"`
	ApplicationFee decimal.Decimal `json:"application_fee" gorm:"type:decimal(12,2);not null"`
	Deadline       time.Time       `json:"deadline"`
	Open           bool            `json:"open" gorm:"default:true;index"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
