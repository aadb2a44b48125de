package entity

import "time"

// LocationInventory cantidad física de un producto en una ubicación.
// Misma forma para todos los tipos de ubicación; cada tipo vive en su propia tabla.
// Las máquinas por slot pueden registrar categoría/subcategoría en lugar de producto.
type LocationInventory struct {
	ID          string
	Kind        LocationKind
	LocationID  string
	ProductID   string // vacío si el registro es por categoría
	Category    *string
	Subcategory *string
	Quantity    int // nunca negativo (CHECK en BD)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasProduct indica si el registro está atado a un SKU concreto.
func (i *LocationInventory) HasProduct() bool {
	return i.ProductID != ""
}
