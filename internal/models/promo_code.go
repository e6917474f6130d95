package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

type PromoCode struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	Code          string    `gorm:"not null;unique"`
	DiscountType  string    `gorm:"not null"`
	DiscountValue int       `gorm:"not null"`
	ValidFrom     time.Time `gorm:"not null"`
	ValidUntil    time.Time `gorm:"not null"`
	MaxUses       *int
	CurrentUses   int    `gorm:"not null;default:0"`
	Active        bool   `gorm:"not null;default:true"`
	Description   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (promo *PromoCode) BeforeCreate(tx *gorm.DB) (err error) {
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	return
}
