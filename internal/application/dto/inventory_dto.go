package dto

import "github.com/shopspring/decimal"

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU cuyo total en todas
// las ubicaciones está en o por debajo de su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	CurrentStock        int             `json:"current_stock"`
	ReorderPoint        int             `json:"reorder_point"`
	IdealStock          int             `json:"ideal_stock"`          // ceil(ReorderPoint * 1.5)
	SuggestedOrderQty   int             `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost            decimal.Decimal `json:"unit_cost"`
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days int             `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}
