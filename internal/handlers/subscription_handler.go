package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/models"
)

func GetMySubscription(c *gin.Context) {
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

	familyID, err := lookupFamilyID(gormDB, userUUID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "You don't belong to a family yet.")
		return
	}

	var subscription models.Subscription
	if err := gormDB.Where("family_id = ?", familyID).First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No payment yet means the family is on the free tier.
			c.JSON(http.StatusOK, gin.H{
				"family_id": familyID,
				"tier":      models.TierFree,
				"status":    models.SubscriptionStatusActive,
			})
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving subscription.")
		return
	}

	c.JSON(http.StatusOK, subscription)
}
