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

type FamilyRequest struct {
	Name string `json:"name" binding:"required"`
}

// lookupFamilyID resolves the family an authenticated user belongs to.
func lookupFamilyID(db *gorm.DB, userID uuid.UUID) (uuid.UUID, error) {
	var member models.FamilyMember
	if err := db.Where("user_id = ?", userID).First(&member).Error; err != nil {
		return uuid.Nil, err
	}
	return member.FamilyID, nil
}

func CreateFamily(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}
	userUUID := userID.(uuid.UUID)

	var req FamilyRequest
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

	if _, err := lookupFamilyID(gormDB, userUUID); err == nil {
		helpers.RespondWithError(c, http.StatusConflict, "You already belong to a family.")
		return
	}

	family := models.Family{
		Name:    req.Name,
		OwnerID: userUUID,
	}

	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&family).Error; err != nil {
			return err
		}
		member := models.FamilyMember{
			FamilyID: family.ID,
			UserID:   userUUID,
			Role:     "owner",
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create family.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Family created successfully.",
		"family_id": family.ID,
	})
}

func GetMyFamily(c *gin.Context) {
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
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "You don't belong to a family yet.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving family membership.")
		return
	}

	var family models.Family
	if err := gormDB.Preload("Members").First(&family, familyID).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Family not found.")
		return
	}

	c.JSON(http.StatusOK, family)
}
