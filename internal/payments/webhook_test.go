package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famhubid/famhub/internal/models"
)

type fakeNotifier struct {
	succeeded []*models.PaymentTransaction
	failed    []*models.PaymentTransaction
}

func (f *fakeNotifier) PaymentSucceeded(txn *models.PaymentTransaction) {
	f.succeeded = append(f.succeeded, txn)
}

func (f *fakeNotifier) PaymentFailed(txn *models.PaymentTransaction) {
	f.failed = append(f.failed, txn)
}

func TestProcessWebhookCompletedPayment(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	maxUses := 10
	promo := createPromo(t, db, "HEMAT20", func(p *models.PromoCode) {
		p.MaxUses = &maxUses
	})
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 10000, &promo.ID)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	body := signedMidtransPayload(t, txn.ID.String(), "200", "40000.00", "settlement", "")
	result, err := ProcessWebhook(db, gw, notifier, body, nil)
	require.NoError(t, err)
	assert.True(t, result.Transitioned)
	assert.Equal(t, OutcomeCompleted, result.Event.Outcome)

	var storedTxn models.PaymentTransaction
	require.NoError(t, db.First(&storedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusCompleted, storedTxn.Status)
	assert.NotNil(t, storedTxn.PaidAt)

	var sub models.Subscription
	require.NoError(t, db.Where("family_id = ?", family.ID).First(&sub).Error)
	assert.Equal(t, models.TierFamily, sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)

	var storedPromo models.PromoCode
	require.NoError(t, db.First(&storedPromo, promo.ID).Error)
	assert.Equal(t, 1, storedPromo.CurrentUses)

	require.Len(t, notifier.succeeded, 1)
	assert.Empty(t, notifier.failed)
}

func TestProcessWebhookDuplicateDelivery(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	maxUses := 10
	promo := createPromo(t, db, "HEMAT20", func(p *models.PromoCode) {
		p.MaxUses = &maxUses
	})
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 10000, &promo.ID)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	body := signedMidtransPayload(t, txn.ID.String(), "200", "40000.00", "settlement", "")

	first, err := ProcessWebhook(db, gw, notifier, body, nil)
	require.NoError(t, err)
	assert.True(t, first.Transitioned)

	// The provider redelivers the identical event. It must be accepted,
	// but every downstream effect must have happened exactly once.
	second, err := ProcessWebhook(db, gw, notifier, body, nil)
	require.NoError(t, err)
	assert.False(t, second.Transitioned)

	var subCount int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("family_id = ?", family.ID).Count(&subCount).Error)
	assert.Equal(t, int64(1), subCount)

	var historyCount int64
	require.NoError(t, db.Model(&models.SubscriptionHistory{}).Where("family_id = ?", family.ID).Count(&historyCount).Error)
	assert.Equal(t, int64(1), historyCount)

	var storedPromo models.PromoCode
	require.NoError(t, db.First(&storedPromo, promo.ID).Error)
	assert.Equal(t, 1, storedPromo.CurrentUses)

	assert.Len(t, notifier.succeeded, 1)
}

func TestProcessWebhookTamperedSignature(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	body := signedMidtransPayload(t, txn.ID.String(), "200", "50000.00", "settlement", "")
	tampered := []byte(string(body))
	tampered[len(tampered)/2] ^= 0x01

	_, err := ProcessWebhook(db, gw, notifier, tampered, nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// Zero state mutated.
	var storedTxn models.PaymentTransaction
	require.NoError(t, db.First(&storedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusPending, storedTxn.Status)

	var subCount int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	assert.Equal(t, int64(0), subCount)
	assert.Empty(t, notifier.succeeded)
}

func TestProcessWebhookFailedOutcome(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	body := signedMidtransPayload(t, txn.ID.String(), "202", "50000.00", "expire", "")
	result, err := ProcessWebhook(db, gw, notifier, body, nil)
	require.NoError(t, err)
	assert.True(t, result.Transitioned)

	var storedTxn models.PaymentTransaction
	require.NoError(t, db.First(&storedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusFailed, storedTxn.Status)

	// A failed payment never touches the subscription.
	var subCount int64
	require.NoError(t, db.Model(&models.Subscription{}).Count(&subCount).Error)
	assert.Equal(t, int64(0), subCount)

	require.Len(t, notifier.failed, 1)
	assert.Empty(t, notifier.succeeded)
}

func TestProcessWebhookPendingIsNoOp(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	body := signedMidtransPayload(t, txn.ID.String(), "201", "50000.00", "pending", "")
	result, err := ProcessWebhook(db, gw, notifier, body, nil)
	require.NoError(t, err)
	assert.False(t, result.Transitioned)

	var storedTxn models.PaymentTransaction
	require.NoError(t, db.First(&storedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusPending, storedTxn.Status)
}

func TestProcessWebhookConflictingTerminalStates(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)

	gw := NewMidtransGateway(testServerKey, "client-key", false)
	notifier := &fakeNotifier{}

	completed := signedMidtransPayload(t, txn.ID.String(), "200", "50000.00", "settlement", "")
	_, err := ProcessWebhook(db, gw, notifier, completed, nil)
	require.NoError(t, err)

	// The provider then claims the same transaction expired: that's a
	// data-integrity problem, not a silent overwrite.
	expired := signedMidtransPayload(t, txn.ID.String(), "202", "50000.00", "expire", "")
	_, err = ProcessWebhook(db, gw, notifier, expired, nil)
	assert.ErrorIs(t, err, ErrTransactionConflict)

	var storedTxn models.PaymentTransaction
	require.NoError(t, db.First(&storedTxn, txn.ID).Error)
	assert.Equal(t, models.TransactionStatusCompleted, storedTxn.Status)
}

func TestProcessWebhookUnknownTransaction(t *testing.T) {
	db := newTestDB(t)

	gw := NewMidtransGateway(testServerKey, "client-key", false)

	body := signedMidtransPayload(t, "9f2c6b1e-0000-4000-8000-000000000000", "200", "50000.00", "settlement", "")
	_, err := ProcessWebhook(db, gw, &fakeNotifier{}, body, nil)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
