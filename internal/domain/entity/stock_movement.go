package entity

import "time"

// MovementReason motivo de un cambio de cantidad.
type MovementReason string

// Motivos de movimiento (enumeración cerrada).
const (
	ReasonInitialStock MovementReason = "INITIAL_STOCK"
	ReasonRestock      MovementReason = "RESTOCK"
	ReasonSale         MovementReason = "SALE"
	ReasonDamage       MovementReason = "DAMAGE"
	ReasonAdjustment   MovementReason = "ADJUSTMENT"
	ReasonReturn       MovementReason = "RETURN"
	ReasonTransfer     MovementReason = "TRANSFER"
)

var movementReasons = map[MovementReason]struct{}{
	ReasonInitialStock: {},
	ReasonRestock:      {},
	ReasonSale:         {},
	ReasonDamage:       {},
	ReasonAdjustment:   {},
	ReasonReturn:       {},
	ReasonTransfer:     {},
}

// Valid indica si el motivo pertenece a la enumeración.
func (r MovementReason) Valid() bool {
	_, ok := movementReasons[r]
	return ok
}

// Claves de metadata usadas por el motor.
const (
	MetaInventoryID = "inventory_id"
	MetaNotes       = "notes"
	MetaTransfer    = "transfer"
	MetaFromKind    = "from_location_type" // solo en transferencias entre tipos
	MetaToKind      = "to_location_type"
)

// StockMovement fila inmutable del ledger: un cambio de cantidad en una ubicación.
// Invariante: CurrentQuantity = PreviousQuantity + QuantityChange y CurrentQuantity >= 0.
type StockMovement struct {
	ID               string
	ItemID           string
	LocationKind     LocationKind
	FromLocationID   *string
	ToLocationID     *string
	PreviousQuantity int
	CurrentQuantity  int
	QuantityChange   int
	Reason           MovementReason
	ActorID          *string
	At               time.Time
	Metadata         map[string]any
}

// StockMovementView movimiento con datos de producto para auditoría.
type StockMovementView struct {
	StockMovement
	ItemSKU  string
	ItemName string
}

// FromKind tipo de la ubicación de origen; en transferencias puede diferir de LocationKind.
func (m *StockMovement) FromKind() LocationKind {
	return m.metaKind(MetaFromKind)
}

// ToKind tipo de la ubicación de destino.
func (m *StockMovement) ToKind() LocationKind {
	return m.metaKind(MetaToKind)
}

func (m *StockMovement) metaKind(key string) LocationKind {
	switch v := m.Metadata[key].(type) {
	case LocationKind:
		return v
	case string:
		if v != "" {
			return LocationKind(v)
		}
	}
	return m.LocationKind
}
