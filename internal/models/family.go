package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Family struct {
	gorm.Model
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"not null"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null"`
	Owner   *User     `gorm:"foreignKey:OwnerID"`
	Members []FamilyMember
}

func (family *Family) BeforeCreate(tx *gorm.DB) (err error) {
	if family.ID == uuid.Nil {
		family.ID = uuid.New()
	}
	return
}

type FamilyMember struct {
	FamilyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Role      string    `gorm:"not null;default:'member'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FamilyMember) TableName() string {
	return "family_members"
}
