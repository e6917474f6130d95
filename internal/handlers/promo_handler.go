package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/helpers"
	"github.com/famhubid/famhub/internal/models"
)

type PromoRequest struct {
	Code          string    `json:"code" binding:"required"`
	DiscountType  string    `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue int       `json:"discount_value" binding:"required,min=1"`
	ValidFrom     time.Time `json:"valid_from" binding:"required"`
	ValidUntil    time.Time `json:"valid_until" binding:"required"`
	MaxUses       *int      `json:"max_uses"`
	Active        *bool     `json:"active"`
	Description   *string   `json:"description"`
}

func CreatePromo(c *gin.Context) {
	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	promo := models.PromoCode{
		ID:            uuid.New(),
		Code:          strings.ToUpper(strings.TrimSpace(req.Code)),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		MaxUses:       req.MaxUses,
		Active:        active,
		Description:   req.Description,
	}

	if err := gormDB.Create(&promo).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create promo code.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Promo code created successfully.",
		"promo_id": promo.ID,
	})
}

func ListPromos(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	pageNum, err := helpers.StringToInt(page)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.PromoCode{})
	var totalCount int64
	query.Count(&totalCount)

	var promos []models.PromoCode
	offset := (pageNum - 1) * limitNum
	err = query.Offset(offset).Limit(limitNum).Order("created_at DESC").Find(&promos).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving promo codes.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"promos":      promos,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	})
}

func GetPromo(c *gin.Context) {
	promoID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var promo models.PromoCode
	if err := gormDB.Where("id = ?", promoID).First(&promo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Promo code not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving promo code.")
		return
	}

	c.JSON(http.StatusOK, promo)
}

func UpdatePromo(c *gin.Context) {
	promoID := c.Param("id")

	var req PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var promo models.PromoCode
	if err := gormDB.Where("id = ?", promoID).First(&promo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Promo code not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding promo code.")
		return
	}

	promo.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	promo.DiscountType = req.DiscountType
	promo.DiscountValue = req.DiscountValue
	promo.ValidFrom = req.ValidFrom
	promo.ValidUntil = req.ValidUntil
	promo.MaxUses = req.MaxUses
	if req.Active != nil {
		promo.Active = *req.Active
	}
	promo.Description = req.Description

	if err := gormDB.Save(&promo).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update promo code.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code updated successfully.",
		"promo":   promo,
	})
}

func DeletePromo(c *gin.Context) {
	promoID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("id = ?", promoID).Delete(&models.PromoCode{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete promo code.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "Promo code not found.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Promo code deleted successfully.",
	})
}
