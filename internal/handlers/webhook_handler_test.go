package handlers

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/famhubid/famhub/internal/middleware"
	"github.com/famhubid/famhub/internal/models"
	"github.com/famhubid/famhub/internal/payments"
)

const webhookTestServerKey = "SB-Mid-server-testkey"

func newWebhookTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Family{},
		&models.Tier{},
		&models.PromoCode{},
		&models.PaymentTransaction{},
		&models.Subscription{},
		&models.SubscriptionHistory{},
		&models.Notification{},
	))

	registry := payments.NewRegistry(
		payments.NewMidtransGateway(webhookTestServerKey, "SB-Mid-client-testkey", false),
	)

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.GatewayMiddleware(registry))
	r.POST("/webhooks/midtrans", HandleGatewayWebhook("midtrans"))
	return r, db
}

func seedWebhookTxn(t *testing.T, db *gorm.DB) *models.PaymentTransaction {
	t.Helper()

	role := models.Role{Name: "parent"}
	require.NoError(t, db.Create(&role).Error)

	user := models.User{
		Name:     "Budi Santoso",
		Email:    "budi@example.com",
		Password: "hashed",
		RoleID:   role.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	family := models.Family{Name: "Keluarga Santoso", OwnerID: user.ID}
	require.NoError(t, db.Create(&family).Error)

	txn := models.PaymentTransaction{
		UserID:         user.ID,
		FamilyID:       family.ID,
		Tier:           models.TierPremium,
		BillingPeriod:  models.BillingPeriodYearly,
		OriginalAmount: 1000000,
		FinalAmount:    1000000,
		Currency:       "IDR",
		PaymentMethod:  "midtrans",
		Status:         models.TransactionStatusPending,
	}
	require.NoError(t, db.Create(&txn).Error)
	return &txn
}

func signedNotification(t *testing.T, orderID, status string) []byte {
	t.Helper()

	statusCode := "200"
	grossAmount := "1000000.00"
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + webhookTestServerKey))

	body, err := json.Marshal(map[string]string{
		"order_id":           orderID,
		"status_code":        statusCode,
		"gross_amount":       grossAmount,
		"signature_key":      hex.EncodeToString(sum[:]),
		"transaction_status": status,
	})
	require.NoError(t, err)
	return body
}

func postWebhook(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/midtrans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleGatewayWebhookSettlement(t *testing.T) {
	r, db := newWebhookTestRouter(t)
	txn := seedWebhookTxn(t, db)

	w := postWebhook(r, signedNotification(t, txn.ID.String(), "settlement"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	var updated models.PaymentTransaction
	require.NoError(t, db.First(&updated, "id = ?", txn.ID).Error)
	assert.Equal(t, models.TransactionStatusCompleted, updated.Status)
	require.NotNil(t, updated.PaidAt)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "family_id = ?", txn.FamilyID).Error)
	assert.Equal(t, models.TierPremium, sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestHandleGatewayWebhookDuplicateDelivery(t *testing.T) {
	r, db := newWebhookTestRouter(t)
	txn := seedWebhookTxn(t, db)
	body := signedNotification(t, txn.ID.String(), "settlement")

	require.Equal(t, http.StatusOK, postWebhook(r, body).Code)
	require.Equal(t, http.StatusOK, postWebhook(r, body).Code)

	var histories int64
	require.NoError(t, db.Model(&models.SubscriptionHistory{}).
		Where("family_id = ?", txn.FamilyID).Count(&histories).Error)
	assert.Equal(t, int64(1), histories)
}

func TestHandleGatewayWebhookTamperedSignature(t *testing.T) {
	r, db := newWebhookTestRouter(t)
	txn := seedWebhookTxn(t, db)

	body := signedNotification(t, txn.ID.String(), "settlement")
	body = bytes.Replace(body, []byte(`"gross_amount":"1000000.00"`), []byte(`"gross_amount":"1.00"`), 1)

	w := postWebhook(r, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var updated models.PaymentTransaction
	require.NoError(t, db.First(&updated, "id = ?", txn.ID).Error)
	assert.Equal(t, models.TransactionStatusPending, updated.Status)
}

func TestHandleGatewayWebhookUnknownOrder(t *testing.T) {
	r, _ := newWebhookTestRouter(t)

	w := postWebhook(r, signedNotification(t, "b7a9e210-0000-4000-8000-000000000000", "settlement"))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGatewayWebhookUnknownGateway(t *testing.T) {
	r, _ := newWebhookTestRouter(t)
	r.POST("/webhooks/doku", HandleGatewayWebhook("doku"))

	req := httptest.NewRequest("POST", "/webhooks/doku", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
