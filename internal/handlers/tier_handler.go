package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/models"
)

func ListTiers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var tiers []models.Tier
	if err := gormDB.Order("monthly_price ASC").Find(&tiers).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving tiers.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tiers": tiers})
}
