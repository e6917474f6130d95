package payments

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/famhubid/famhub/internal/models"
)

// ApplyCompletedPayment moves the family's subscription to the paid tier.
// Renewals overwrite the period from now rather than stacking remaining
// time. Must only be called when the ledger reports a fresh transition.
func ApplyCompletedPayment(db *gorm.DB, txn *models.PaymentTransaction) error {
	now := time.Now().UTC()
	var periodEnd time.Time
	if txn.BillingPeriod == models.BillingPeriodYearly {
		periodEnd = now.AddDate(1, 0, 0)
	} else {
		periodEnd = now.AddDate(0, 1, 0)
	}

	oldTier := models.TierFree
	action := "created"
	var existing models.Subscription
	err := db.Where("family_id = ?", txn.FamilyID).First(&existing).Error
	if err == nil {
		oldTier = existing.Tier
		action = "renewed"
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	sub := models.Subscription{
		FamilyID:      txn.FamilyID,
		Tier:          txn.Tier,
		Status:        models.SubscriptionStatusActive,
		BillingPeriod: txn.BillingPeriod,
		PeriodStart:   now,
		PeriodEnd:     &periodEnd,
	}

	// Single-statement upsert on the unique family_id so two completions
	// for the same family can't race into duplicate rows.
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "family_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tier", "status", "billing_period", "period_start", "period_end", "updated_at",
		}),
	}).Create(&sub).Error
	if err != nil {
		return err
	}

	history := models.SubscriptionHistory{
		FamilyID:      txn.FamilyID,
		OldTier:       oldTier,
		NewTier:       txn.Tier,
		Action:        action,
		ActorID:       txn.UserID,
		TransactionID: txn.ID,
	}
	return db.Create(&history).Error
}
