package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TierFree    = "free"
	TierFamily  = "family"
	TierPremium = "premium"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is a family's current plan. One row per family; renewals
// overwrite it in place rather than inserting a new one.
type Subscription struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	FamilyID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Family        *Family   `gorm:"foreignKey:FamilyID"`
	Tier          string    `gorm:"not null;default:'free'"`
	Status        string    `gorm:"not null;default:'active'"`
	BillingPeriod string    `gorm:"not null;default:'monthly'"`
	PeriodStart   time.Time
	PeriodEnd     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (sub *Subscription) BeforeCreate(tx *gorm.DB) (err error) {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	return
}

// SubscriptionHistory is an append-only audit trail of tier changes.
type SubscriptionHistory struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	FamilyID      uuid.UUID `gorm:"type:uuid;not null;index"`
	OldTier       string    `gorm:"not null"`
	NewTier       string    `gorm:"not null"`
	Action        string    `gorm:"not null"`
	ActorID       uuid.UUID `gorm:"type:uuid;not null"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}

func (SubscriptionHistory) TableName() string {
	return "subscription_histories"
}

func (hist *SubscriptionHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if hist.ID == uuid.Nil {
		hist.ID = uuid.New()
	}
	return
}
