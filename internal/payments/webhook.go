package payments

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/logger"
	"github.com/famhubid/famhub/internal/models"
)

// Notifier receives post-outcome events. Implementations are best-effort;
// they must not fail the webhook.
type Notifier interface {
	PaymentSucceeded(txn *models.PaymentTransaction)
	PaymentFailed(txn *models.PaymentTransaction)
}

type WebhookResult struct {
	Event        *NormalizedEvent
	Transaction  *models.PaymentTransaction
	Transitioned bool
}

// ProcessWebhook handles one provider callback end to end: authenticate,
// normalize, transition the ledger, and — only on the first transition —
// run the subscription upgrade, promo usage commit, and notification.
// Gateways deliver at-least-once, so duplicates land here routinely; they
// come back as successful no-ops.
func ProcessWebhook(db *gorm.DB, gateway Gateway, notifier Notifier, body []byte, header http.Header) (*WebhookResult, error) {
	if !gateway.VerifyWebhook(body, header) {
		logger.Warn("webhook signature verification failed",
			"gateway", gateway.Name(),
			"body_size", len(body),
		)
		return nil, ErrInvalidSignature
	}

	event, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}

	result := &WebhookResult{Event: event}

	if event.Outcome == OutcomePending || event.Outcome == OutcomeUnknown {
		// Intermediate statuses are acknowledged without touching state.
		return result, nil
	}

	txnID, err := uuid.Parse(event.ExternalReference)
	if err != nil {
		return nil, fmt.Errorf("invalid order reference %q: %w", event.ExternalReference, err)
	}

	// Ledger transition and its downstream effects share one database
	// transaction: a retry after a partial failure redoes all of it.
	err = db.Transaction(func(tx *gorm.DB) error {
		switch event.Outcome {
		case OutcomeCompleted:
			transitioned, txn, err := MarkCompleted(tx, txnID, event.Raw)
			if err != nil {
				return err
			}
			result.Transaction = txn
			result.Transitioned = transitioned
			if !transitioned {
				return nil
			}

			if err := ApplyCompletedPayment(tx, txn); err != nil {
				return err
			}

			if txn.PromoCodeID != nil {
				committed, err := CommitPromoUsage(tx, *txn.PromoCodeID)
				if err != nil {
					return err
				}
				if !committed {
					logger.Warn("promo usage cap reached at commit time",
						"promo_code_id", txn.PromoCodeID,
						"transaction_id", txn.ID,
					)
				}
			}
			return nil

		case OutcomeFailed:
			transitioned, txn, err := MarkFailed(tx, txnID, event.Raw)
			if err != nil {
				return err
			}
			result.Transaction = txn
			result.Transitioned = transitioned
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification is outside the transaction boundary: the payment is
	// already real, enqueue failure must not unwind it.
	if result.Transitioned && notifier != nil {
		if event.Outcome == OutcomeCompleted {
			notifier.PaymentSucceeded(result.Transaction)
		} else {
			notifier.PaymentFailed(result.Transaction)
		}
	}

	return result, nil
}
