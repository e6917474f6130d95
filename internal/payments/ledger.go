package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/models"
)

type PendingTransactionInput struct {
	UserID         uuid.UUID
	FamilyID       uuid.UUID
	Tier           string
	BillingPeriod  string
	OriginalAmount int
	DiscountAmount int
	PromoCodeID    *uuid.UUID
	PaymentMethod  string
}

// CreatePending records a new payment attempt. Every checkout gets a fresh
// row; retries create new transactions rather than reusing old ones.
func CreatePending(db *gorm.DB, in PendingTransactionInput) (*models.PaymentTransaction, error) {
	final := in.OriginalAmount - in.DiscountAmount
	if final < 0 {
		final = 0
	}

	txn := models.PaymentTransaction{
		UserID:         in.UserID,
		FamilyID:       in.FamilyID,
		Tier:           in.Tier,
		BillingPeriod:  in.BillingPeriod,
		OriginalAmount: in.OriginalAmount,
		DiscountAmount: in.DiscountAmount,
		FinalAmount:    final,
		Currency:       "IDR",
		PaymentMethod:  in.PaymentMethod,
		Status:         models.TransactionStatusPending,
		PromoCodeID:    in.PromoCodeID,
	}

	if err := db.Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// SetGatewayRef stores the provider's session reference and raw response on
// the transaction after checkout creation.
func SetGatewayRef(db *gorm.DB, txnID uuid.UUID, ref string, rawResponse []byte) error {
	updates := map[string]interface{}{"gateway_ref": ref}
	if len(rawResponse) > 0 {
		updates["gateway_response"] = datatypes.JSON(rawResponse)
	}
	return db.Model(&models.PaymentTransaction{}).Where("id = ?", txnID).Updates(updates).Error
}

// MarkCompleted moves a transaction from pending to completed. The returned
// bool reports whether this call performed the transition: true exactly once
// per transaction, false for duplicate deliveries of the same event. Callers
// must gate all downstream effects on that bool.
func MarkCompleted(db *gorm.DB, txnID uuid.UUID, gatewayResponse []byte) (bool, *models.PaymentTransaction, error) {
	return markTerminal(db, txnID, models.TransactionStatusCompleted, gatewayResponse)
}

// MarkFailed is the failure counterpart of MarkCompleted, with the same
// idempotency and terminal-state rules.
func MarkFailed(db *gorm.DB, txnID uuid.UUID, gatewayResponse []byte) (bool, *models.PaymentTransaction, error) {
	return markTerminal(db, txnID, models.TransactionStatusFailed, gatewayResponse)
}

func markTerminal(db *gorm.DB, txnID uuid.UUID, status string, gatewayResponse []byte) (bool, *models.PaymentTransaction, error) {
	updates := map[string]interface{}{"status": status}
	if status == models.TransactionStatusCompleted {
		now := time.Now().UTC()
		updates["paid_at"] = &now
	}
	if len(gatewayResponse) > 0 {
		updates["gateway_response"] = datatypes.JSON(gatewayResponse)
	}

	// Compare-and-swap on the pending status: only one caller ever sees
	// RowsAffected == 1 for a given transaction.
	result := db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status = ?", txnID, models.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, nil, result.Error
	}

	var txn models.PaymentTransaction
	if err := db.Where("id = ?", txnID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, ErrTransactionNotFound
		}
		return false, nil, err
	}

	if result.RowsAffected == 1 {
		return true, &txn, nil
	}

	// The swap lost: the transaction was already terminal. Same terminal
	// state means a duplicate delivery; the opposite one is a conflict.
	if txn.Status == status {
		return false, &txn, nil
	}
	return false, &txn, ErrTransactionConflict
}
