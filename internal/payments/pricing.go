package payments

import (
	"errors"

	"gorm.io/gorm"

	"github.com/famhubid/famhub/internal/models"
)

// ResolvePrice returns the catalog price for a tier and billing period.
func ResolvePrice(db *gorm.DB, tierName, billingPeriod string) (int, error) {
	var tier models.Tier
	if err := db.Where("name = ?", tierName).First(&tier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTierNotFound
		}
		return 0, err
	}

	if billingPeriod == models.BillingPeriodYearly {
		return tier.YearlyPrice, nil
	}
	return tier.MonthlyPrice, nil
}
