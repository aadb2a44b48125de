package dto

import "time"

// AdjustRequest body para POST /api/stock-movements/:locationType/:inventoryId/adjust.
type AdjustRequest struct {
	QuantityChange int     `json:"quantityChange"`
	Reason         string  `json:"reason"`
	ActorID        *string `json:"actorId,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// TransferRequest body para POST /api/stock-movements/transfer.
// Se requiere destinationInventoryId o destinationLocationId.
type TransferRequest struct {
	SourceLocationType      string  `json:"sourceLocationType"`
	SourceInventoryID       string  `json:"sourceInventoryId"`
	DestinationLocationType string  `json:"destinationLocationType"`
	DestinationInventoryID  string  `json:"destinationInventoryId,omitempty"`
	DestinationLocationID   string  `json:"destinationLocationId,omitempty"`
	Quantity                int     `json:"quantity"`
	ActorID                 *string `json:"actorId,omitempty"`
	Notes                   *string `json:"notes,omitempty"`
}

// StockMovementResponse fila del ledger expuesta por la API.
type StockMovementResponse struct {
	ID               string         `json:"id"`
	ItemID           string         `json:"itemId"`
	ItemSKU          string         `json:"itemSku,omitempty"`
	ItemName         string         `json:"itemName,omitempty"`
	LocationType     string         `json:"locationType"`
	FromLocationID   *string        `json:"fromLocationId,omitempty"`
	FromLocationCode *string        `json:"fromLocationCode,omitempty"`
	ToLocationID     *string        `json:"toLocationId,omitempty"`
	ToLocationCode   *string        `json:"toLocationCode,omitempty"`
	PreviousQuantity int            `json:"previousQuantity"`
	CurrentQuantity  int            `json:"currentQuantity"`
	QuantityChange   int            `json:"quantityChange"`
	Reason           string         `json:"reason"`
	ActorID          *string        `json:"actorId,omitempty"`
	At               time.Time      `json:"at"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// TransferResponse los dos movimientos de una transferencia.
type TransferResponse struct {
	Withdrawal StockMovementResponse `json:"withdrawal"`
	Deposit    StockMovementResponse `json:"deposit"`
}

// StockMovementPage página de movimientos.
type StockMovementPage struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// AuditLogQuery filtros de GET /api/stock-movements/audit-log. Fechas en RFC3339 o YYYY-MM-DD.
type AuditLogQuery struct {
	Search   string `query:"search"`
	ActorID  string `query:"actorId"`
	Reason   string `query:"reason"`
	FromDate string `query:"fromDate"`
	ToDate   string `query:"toDate"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}
