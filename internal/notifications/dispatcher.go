package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/logger"
	"github.com/famhubid/famhub/internal/models"
)

const emailQueueKey = "famhub:emails"

type EmailJob struct {
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Dispatcher records payment outcome notifications and queues the matching
// email. Everything here is best-effort: failures are logged and swallowed,
// never bubbled into the payment path.
type Dispatcher struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewDispatcher(db *gorm.DB, redisClient *redis.Client) *Dispatcher {
	return &Dispatcher{
		db:    db,
		redis: redisClient,
	}
}

func (d *Dispatcher) PaymentSucceeded(txn *models.PaymentTransaction) {
	title := "Payment successful"
	message := fmt.Sprintf(
		"Your payment of Rp %d for the %s plan (%s) was successful. Your subscription is now active.",
		txn.FinalAmount, txn.Tier, txn.BillingPeriod,
	)
	d.dispatch(txn, models.NotificationPaymentSuccess, title, message)
}

func (d *Dispatcher) PaymentFailed(txn *models.PaymentTransaction) {
	title := "Payment failed"
	message := fmt.Sprintf(
		"Your payment of Rp %d for the %s plan (%s) could not be completed. No charges were made.",
		txn.FinalAmount, txn.Tier, txn.BillingPeriod,
	)
	d.dispatch(txn, models.NotificationPaymentFailed, title, message)
}

func (d *Dispatcher) dispatch(txn *models.PaymentTransaction, notifType, title, message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"transaction_id": txn.ID,
		"tier":           txn.Tier,
		"billing_period": txn.BillingPeriod,
		"amount":         txn.FinalAmount,
		"currency":       txn.Currency,
	})

	notification := models.Notification{
		UserID:  txn.UserID,
		Type:    notifType,
		Title:   title,
		Message: message,
		Data:    datatypes.JSON(data),
	}
	if err := d.db.Create(&notification).Error; err != nil {
		logger.Error("failed to store notification",
			"transaction_id", txn.ID, "type", notifType, "error", err)
	}

	var user models.User
	if err := d.db.Where("id = ?", txn.UserID).First(&user).Error; err != nil {
		logger.Error("failed to load user for notification email",
			"user_id", txn.UserID, "error", err)
		return
	}

	d.enqueueEmail(EmailJob{
		To:      user.Email,
		Name:    user.Name,
		Subject: title,
		Body:    message,
		Created: time.Now().UTC(),
	})
}

func (d *Dispatcher) enqueueEmail(job EmailJob) {
	if d.redis == nil {
		return
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Error("failed to marshal email job", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.redis.LPush(ctx, emailQueueKey, data).Err(); err != nil {
		logger.Error("failed to enqueue email job", "to", job.To, "error", err)
	}
}
