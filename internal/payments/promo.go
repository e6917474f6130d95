package payments

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/models"
)

type PromoDecision struct {
	Applicable     bool
	DiscountAmount int
	PromoCodeID    *uuid.UUID
	Reason         string
}

// EvaluatePromo validates a promo code against a base amount. It never
// mutates the code's usage counter; that happens only when the payment
// actually completes, so abandoned checkouts don't burn uses.
func EvaluatePromo(db *gorm.DB, code string, baseAmount int) (*PromoDecision, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	var promo models.PromoCode
	if err := db.Where("code = ?", normalized).First(&promo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &PromoDecision{Reason: "Promo code not found."}, nil
		}
		return nil, err
	}

	if !promo.Active {
		return &PromoDecision{Reason: "Promo code is inactive."}, nil
	}

	now := time.Now().UTC()
	if now.Before(promo.ValidFrom) {
		return &PromoDecision{Reason: "Promo code is not yet valid."}, nil
	}
	if now.After(promo.ValidUntil) {
		return &PromoDecision{Reason: "Promo code has expired."}, nil
	}

	if promo.MaxUses != nil && promo.CurrentUses >= *promo.MaxUses {
		return &PromoDecision{Reason: "Promo code usage limit reached."}, nil
	}

	var discount int
	switch promo.DiscountType {
	case models.DiscountTypePercentage:
		discount = baseAmount * promo.DiscountValue / 100
	case models.DiscountTypeFixed:
		discount = promo.DiscountValue
		if discount > baseAmount {
			discount = baseAmount
		}
	}

	return &PromoDecision{
		Applicable:     true,
		DiscountAmount: discount,
		PromoCodeID:    &promo.ID,
	}, nil
}

// CommitPromoUsage increments a promo code's usage counter by one. The
// increment and the cap check happen in a single UPDATE so two concurrent
// completions can never push usage past max_uses. Returns false when the
// cap was already exhausted.
func CommitPromoUsage(db *gorm.DB, promoID uuid.UUID) (bool, error) {
	result := db.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses IS NULL OR current_uses < max_uses)", promoID).
		Update("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
