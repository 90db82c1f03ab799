package service

import "price-aggregator/internal/models"

// Stock thresholds for HIGH_DEMAND products
const (
	ampleStockAbove = 100
	lowStockAtMost  = 30
)

// Multipliers applied to the base price of HIGH_DEMAND products
const (
	ampleStockMultiplier  = 1.0
	mediumStockMultiplier = 1.2
	lowStockMultiplier    = 1.5
)

// Pricing tier labels, used as metric label values
const (
	TierPassThrough = "pass_through"
	TierAmple       = "ample_stock"
	TierMedium      = "medium_stock"
	TierLow         = "low_stock"
)

// PricingTier returns the tier a product falls into given its total stock
func PricingTier(demand models.DemandType, totalStock int64) string {
	if demand != models.DemandHigh {
		return TierPassThrough
	}
	switch {
	case totalStock > ampleStockAbove:
		return TierAmple
	case totalStock > lowStockAtMost:
		return TierMedium
	default:
		return TierLow
	}
}

// AdjustedPrice applies the demand pricing rule. Only HIGH_DEMAND products
// are repriced; everything else keeps its base price.
func AdjustedPrice(demand models.DemandType, basePrice float64, totalStock int64) float64 {
	switch PricingTier(demand, totalStock) {
	case TierAmple:
		return basePrice * ampleStockMultiplier
	case TierMedium:
		return basePrice * mediumStockMultiplier
	case TierLow:
		return basePrice * lowStockMultiplier
	default:
		return basePrice
	}
}

// StockBySKU sums inventory quantities across zones for each SKU
func StockBySKU(inventories []models.Inventory) map[string]int64 {
	totals := make(map[string]int64, len(inventories))
	for _, inv := range inventories {
		totals[inv.SKU] += inv.Quantity
	}
	return totals
}
