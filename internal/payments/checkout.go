package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/models"
)

type CheckoutInput struct {
	Tier          string
	BillingPeriod string
	PromoCode     string
	PaymentMethod string
}

type CheckoutResult struct {
	Transaction *models.PaymentTransaction
	Session     *CheckoutSession
	PromoReason string
}

// CreateCheckout runs the synchronous half of a purchase: resolve the price,
// apply a promo if one validates, record a pending transaction, and open a
// checkout session with the selected gateway. An inapplicable promo doesn't
// block the checkout; it proceeds at full price with the reason reported.
//
// If the gateway call fails the pending transaction is left in place for
// reconciliation, and the provider's error text is surfaced via
// ErrGatewayUnavailable.
func CreateCheckout(ctx context.Context, db *gorm.DB, registry *Registry, user *models.User, familyID uuid.UUID, in CheckoutInput) (*CheckoutResult, error) {
	gateway, err := registry.Get(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	price, err := ResolvePrice(db, in.Tier, in.BillingPeriod)
	if err != nil {
		return nil, err
	}

	discount := 0
	var promoID *uuid.UUID
	promoReason := ""
	if in.PromoCode != "" {
		decision, err := EvaluatePromo(db, in.PromoCode, price)
		if err != nil {
			return nil, err
		}
		if decision.Applicable {
			discount = decision.DiscountAmount
			promoID = decision.PromoCodeID
		} else {
			promoReason = decision.Reason
		}
	}

	txn, err := CreatePending(db, PendingTransactionInput{
		UserID:         user.ID,
		FamilyID:       familyID,
		Tier:           in.Tier,
		BillingPeriod:  in.BillingPeriod,
		OriginalAmount: price,
		DiscountAmount: discount,
		PromoCodeID:    promoID,
		PaymentMethod:  in.PaymentMethod,
	})
	if err != nil {
		return nil, err
	}

	session, err := gateway.CreateCheckout(ctx, txn, Customer{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	if err := SetGatewayRef(db, txn.ID, session.Reference, session.RawResponse); err != nil {
		return nil, err
	}
	txn.GatewayRef = &session.Reference

	return &CheckoutResult{
		Transaction: txn,
		Session:     session,
		PromoReason: promoReason,
	}, nil
}
