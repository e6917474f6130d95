package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/middleware"
	"github.com/famhubid/famhub/internal/models"
	"github.com/famhubid/famhub/internal/payments"
)

type CheckoutRequest struct {
	Tier          string `json:"tier" binding:"required"`
	BillingPeriod string `json:"billing_period" binding:"required,oneof=monthly yearly"`
	PromoCode     string `json:"promo_code"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

func CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}
	userUUID := userID.(uuid.UUID)

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	registry := middleware.GetGatewayRegistry(c)
	if registry == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Payment gateways not configured.")
		return
	}

	var user models.User
	if err := gormDB.First(&user, userUUID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	familyID, err := lookupFamilyID(gormDB, userUUID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "You must belong to a family before subscribing.")
		return
	}

	result, err := payments.CreateCheckout(c.Request.Context(), gormDB, registry, &user, familyID, payments.CheckoutInput{
		Tier:          req.Tier,
		BillingPeriod: req.BillingPeriod,
		PromoCode:     req.PromoCode,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrTierNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Subscription tier not found.")
		case errors.Is(err, payments.ErrUnknownGateway):
			helpers.RespondWithError(c, http.StatusBadRequest, "Unsupported payment method.")
		case errors.Is(err, payments.ErrGatewayUnavailable):
			helpers.RespondWithError(c, http.StatusBadGateway, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create checkout.")
		}
		return
	}

	resp := gin.H{
		"transaction_id":        result.Transaction.ID,
		"checkout_redirect_url": result.Session.RedirectURL,
		"provider_client_key":   result.Session.ClientKey,
		"is_production":         result.Session.IsProduction,
	}
	if result.PromoReason != "" {
		resp["promo_rejected"] = result.PromoReason
	}

	c.JSON(http.StatusOK, resp)
}

func GetTransaction(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid transaction ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var txn models.PaymentTransaction
	if err := gormDB.First(&txn, txnID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Transaction not found.")
		return
	}

	if txn.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this transaction.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              txn.ID,
		"tier":            txn.Tier,
		"billing_period":  txn.BillingPeriod,
		"original_amount": txn.OriginalAmount,
		"discount_amount": txn.DiscountAmount,
		"final_amount":    txn.FinalAmount,
		"currency":        txn.Currency,
		"payment_method":  txn.PaymentMethod,
		"status":          txn.Status,
		"paid_at":         txn.PaidAt,
		"created_at":      txn.CreatedAt,
	})
}

// checkoutRedirectURL digs the hosted checkout URL out of the stored gateway
// response. Midtrans calls it redirect_url, Xendit invoice_url.
func checkoutRedirectURL(txn *models.PaymentTransaction) string {
	if len(txn.GatewayResponse) == 0 {
		return ""
	}

	var stored struct {
		RedirectURL string `json:"redirect_url"`
		InvoiceURL  string `json:"invoice_url"`
	}
	if err := json.Unmarshal(txn.GatewayResponse, &stored); err != nil {
		return ""
	}

	if stored.RedirectURL != "" {
		return stored.RedirectURL
	}
	return stored.InvoiceURL
}

// GenerateCheckoutQR renders the stored checkout redirect URL as a QR code
// so the payment can be finished on another device.
func GenerateCheckoutQR(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid transaction ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var txn models.PaymentTransaction
	if err := gormDB.First(&txn, txnID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Transaction not found.")
		return
	}

	if txn.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to view this transaction.")
		return
	}

	if txn.Status != models.TransactionStatusPending {
		helpers.RespondWithError(c, http.StatusForbidden, "Transaction is no longer payable.")
		return
	}

	redirectURL := checkoutRedirectURL(&txn)
	if redirectURL == "" {
		helpers.RespondWithError(c, http.StatusNotFound, "No checkout session found for this transaction.")
		return
	}

	qrImage, err := qrcode.Encode(redirectURL, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}
