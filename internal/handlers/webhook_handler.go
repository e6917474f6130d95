package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/logger"
	"github.com/famhubid/famhub/internal/middleware"
	"github.com/famhubid/famhub/internal/payments"
)

// HandleGatewayWebhook processes a provider callback for the named gateway.
// Idempotent no-ops still answer 200: the provider treats anything else as
// "retry later", and a duplicate delivery is not worth a retry storm.
func HandleGatewayWebhook(gatewayName string) gin.HandlerFunc {
	return func(c *gin.Context) {
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

		gateway, err := registry.Get(gatewayName)
		if err != nil {
			helpers.RespondWithError(c, http.StatusNotFound, "Unknown payment gateway.")
			return
		}

		body, err := c.GetRawData()
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Failed to read webhook body.")
			return
		}

		result, err := payments.ProcessWebhook(gormDB, gateway, middleware.GetNotifier(c), body, c.Request.Header)
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrInvalidSignature):
				helpers.RespondWithError(c, http.StatusBadRequest, "Invalid webhook signature.")
			case errors.Is(err, payments.ErrTransactionNotFound):
				helpers.RespondWithError(c, http.StatusBadRequest, "Unknown transaction reference.")
			case errors.Is(err, payments.ErrTransactionConflict):
				logger.Error("webhook hit conflicting terminal state",
					"gateway", gatewayName, "error", err)
				helpers.RespondWithError(c, http.StatusBadRequest, "Transaction state conflict.")
			default:
				helpers.RespondWithError(c, http.StatusBadRequest, "Failed to process webhook.")
			}
			return
		}

		logger.Info("webhook processed",
			"gateway", gatewayName,
			"outcome", result.Event.Outcome,
			"transitioned", result.Transitioned,
		)

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
