package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

const (
	BillingPeriodMonthly = "monthly"
	BillingPeriodYearly  = "yearly"
)

// PaymentTransaction records one attempted purchase. Its ID doubles as the
// order reference sent to the payment gateway, so webhook payloads can be
// correlated back without an extra mapping table.
type PaymentTransaction struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index"`
	User            *User     `gorm:"foreignKey:UserID"`
	FamilyID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Family          *Family   `gorm:"foreignKey:FamilyID"`
	Tier            string    `gorm:"not null"`
	BillingPeriod   string    `gorm:"not null"`
	OriginalAmount  int       `gorm:"not null"`
	DiscountAmount  int       `gorm:"not null;default:0"`
	FinalAmount     int       `gorm:"not null"`
	Currency        string    `gorm:"not null;default:'IDR'"`
	PaymentMethod   string    `gorm:"not null"`
	Status          string    `gorm:"not null;default:'pending';index"`
	GatewayRef      *string   `gorm:"index"`
	GatewayResponse datatypes.JSON
	PromoCodeID     *uuid.UUID `gorm:"type:uuid"`
	PromoCode       *PromoCode `gorm:"foreignKey:PromoCodeID"`
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (txn *PaymentTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return
}
