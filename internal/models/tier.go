package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tier struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"unique;not null"`
	MonthlyPrice int       `gorm:"not null"`
	YearlyPrice  int       `gorm:"not null"`
	MaxMembers   int       `gorm:"not null"`
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (tier *Tier) BeforeCreate(tx *gorm.DB) (err error) {
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}
	return
}
