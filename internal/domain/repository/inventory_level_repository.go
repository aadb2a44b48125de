package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReplenishmentItem resultado crudo del repositorio para un producto bajo reorden.
type ReplenishmentItem struct {
	ProductID    string
	SKU          string
	ProductName  string
	CurrentStock int // total en todas las ubicaciones
	ReorderPoint int
	UnitCost     decimal.Decimal
	Price        decimal.Decimal
}

// InventoryLevelRepository lecturas agregadas de stock sobre todos los tipos de ubicación.
type InventoryLevelRepository interface {
	// GetProductsBelowReorderPoint devuelve los productos cuyo total en todas las ubicaciones
	// es menor o igual a su punto de reorden, ordenados por mayor déficit primero.
	GetProductsBelowReorderPoint(ctx context.Context) ([]ReplenishmentItem, error)
}
