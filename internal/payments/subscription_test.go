package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famhubid/famhub/internal/models"
)

func TestApplyCompletedPaymentCreatesSubscription(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierPremium, models.BillingPeriodYearly, 1000000, 0, nil)

	require.NoError(t, ApplyCompletedPayment(db, txn))

	var sub models.Subscription
	require.NoError(t, db.Where("family_id = ?", family.ID).First(&sub).Error)
	assert.Equal(t, models.TierPremium, sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.BillingPeriodYearly, sub.BillingPeriod)
	require.NotNil(t, sub.PeriodEnd)
	assert.WithinDuration(t, time.Now().UTC().AddDate(1, 0, 0), *sub.PeriodEnd, time.Minute)

	var history models.SubscriptionHistory
	require.NoError(t, db.Where("family_id = ?", family.ID).First(&history).Error)
	assert.Equal(t, models.TierFree, history.OldTier)
	assert.Equal(t, models.TierPremium, history.NewTier)
	assert.Equal(t, "created", history.Action)
	assert.Equal(t, txn.ID, history.TransactionID)
	assert.Equal(t, user.ID, history.ActorID)
}

func TestApplyCompletedPaymentMonthlyPeriod(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)
	txn := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)

	require.NoError(t, ApplyCompletedPayment(db, txn))

	var sub models.Subscription
	require.NoError(t, db.Where("family_id = ?", family.ID).First(&sub).Error)
	require.NotNil(t, sub.PeriodEnd)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 1, 0), *sub.PeriodEnd, time.Minute)
}

func TestApplyCompletedPaymentOverwritesExisting(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	family := createTestFamily(t, db, user)

	first := createPendingTxn(t, db, user, family, models.TierFamily, models.BillingPeriodMonthly, 50000, 0, nil)
	require.NoError(t, ApplyCompletedPayment(db, first))

	second := createPendingTxn(t, db, user, family, models.TierPremium, models.BillingPeriodYearly, 1000000, 0, nil)
	require.NoError(t, ApplyCompletedPayment(db, second))

	// Still exactly one subscription row per family.
	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("family_id = ?", family.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var sub models.Subscription
	require.NoError(t, db.Where("family_id = ?", family.ID).First(&sub).Error)
	assert.Equal(t, models.TierPremium, sub.Tier)
	assert.Equal(t, models.BillingPeriodYearly, sub.BillingPeriod)
	require.NotNil(t, sub.PeriodEnd)
	// Renewal overwrites the period from now; remaining time does not stack.
	assert.WithinDuration(t, time.Now().UTC().AddDate(1, 0, 0), *sub.PeriodEnd, time.Minute)

	var histories []models.SubscriptionHistory
	require.NoError(t, db.Where("family_id = ?", family.ID).Order("created_at ASC").Find(&histories).Error)
	require.Len(t, histories, 2)
	assert.Equal(t, "created", histories[0].Action)
	assert.Equal(t, "renewed", histories[1].Action)
	assert.Equal(t, models.TierFamily, histories[1].OldTier)
	assert.Equal(t, models.TierPremium, histories[1].NewTier)
}
