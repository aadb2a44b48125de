package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto o SKU del catálogo (solo lectura para el motor de movimientos).
// ReorderPoint es el umbral de reposición sobre el total de todas las ubicaciones.
type Product struct {
	ID           string
	SKU          string
	Name         string
	Category     string
	Subcategory  *string
	Price        decimal.Decimal // precio de venta
	UnitCost     decimal.Decimal // costo unitario de compra
	ReorderPoint int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
