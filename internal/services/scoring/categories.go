package scoring

import "CoinSage/internal/domain/models"

// BuyCategory maps a buy score into its actionable bucket.
func BuyCategory(score int) models.Category {
	switch {
	case score >= 75:
		return models.CategoryStrongBuy
	case score >= 60:
		return models.CategoryBuy
	case score >= 45:
		return models.CategoryHold
	case score >= 30:
		return models.CategoryWait
	}
	return models.CategoryAvoid
}

// SellCategory maps a sell score. Low sell scores mean "keep holding",
// so the floor bucket is HOLD rather than AVOID.
func SellCategory(score int) models.Category {
	switch {
	case score >= 75:
		return models.CategoryStrongSell
	case score >= 60:
		return models.CategorySell
	case score >= 45:
		return models.CategoryHold
	case score >= 30:
		return models.CategoryWait
	}
	return models.CategoryHold
}
