package payments

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famhubid/famhub/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Family{},
		&models.FamilyMember{},
		&models.Tier{},
		&models.PromoCode{},
		&models.PaymentTransaction{},
		&models.Subscription{},
		&models.SubscriptionHistory{},
		&models.Notification{},
	)
	require.NoError(t, err)

	tiers := []models.Tier{
		{Name: models.TierFree, MonthlyPrice: 0, YearlyPrice: 0, MaxMembers: 4},
		{Name: models.TierFamily, MonthlyPrice: 50000, YearlyPrice: 500000, MaxMembers: 8},
		{Name: models.TierPremium, MonthlyPrice: 100000, YearlyPrice: 1000000, MaxMembers: 15},
	}
	require.NoError(t, db.Create(&tiers).Error)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	role := models.Role{Name: fmt.Sprintf("role-%s", uuid.NewString()[:8])}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Name:        "Budi Santoso",
		Email:       fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		Password:    "hashed",
		PhoneNumber: "+628123456789",
		RoleID:      role.ID,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestFamily(t *testing.T, db *gorm.DB, owner *models.User) *models.Family {
	t.Helper()

	family := models.Family{Name: "Keluarga Santoso", OwnerID: owner.ID}
	require.NoError(t, db.Create(&family).Error)
	member := models.FamilyMember{FamilyID: family.ID, UserID: owner.ID, Role: "owner"}
	require.NoError(t, db.Create(&member).Error)
	return &family
}

func createPendingTxn(t *testing.T, db *gorm.DB, user *models.User, family *models.Family, tier, period string, amount, discount int, promoID *uuid.UUID) *models.PaymentTransaction {
	t.Helper()

	txn, err := CreatePending(db, PendingTransactionInput{
		UserID:         user.ID,
		FamilyID:       family.ID,
		Tier:           tier,
		BillingPeriod:  period,
		OriginalAmount: amount,
		DiscountAmount: discount,
		PromoCodeID:    promoID,
		PaymentMethod:  "midtrans",
	})
	require.NoError(t, err)
	return txn
}

func createPromo(t *testing.T, db *gorm.DB, code string, mutate func(*models.PromoCode)) *models.PromoCode {
	t.Helper()

	now := time.Now().UTC()
	promo := models.PromoCode{
		Code:          code,
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		ValidFrom:     now.Add(-time.Hour),
		ValidUntil:    now.Add(24 * time.Hour),
		Active:        true,
	}
	if mutate != nil {
		mutate(&promo)
	}
	require.NoError(t, db.Create(&promo).Error)
	return &promo
}
