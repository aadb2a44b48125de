package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo lecturas agregadas sobre todas las tablas de inventario.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// allInventoryUnion UNION ALL (product_id, quantity) de todos los tipos, en orden estable.
func allInventoryUnion() string {
	parts := make([]string, 0, len(kindTables))
	for _, kind := range entity.LocationKinds {
		t, ok := kindTables[kind]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("SELECT product_id, quantity FROM %s WHERE product_id IS NOT NULL", t.inventory))
	}
	return strings.Join(parts, "\n\t\t\tUNION ALL\n\t\t\t")
}

// GetProductsBelowReorderPoint productos cuyo total en todas las ubicaciones es <= punto de reorden.
// Ordena por déficit descendente (mayor quiebre primero).
func (r *InventoryLevelRepo) GetProductsBelowReorderPoint(ctx context.Context) ([]repository.ReplenishmentItem, error) {
	query := fmt.Sprintf(`
		WITH stock AS (
			%s
		)
		SELECT
			p.id,
			p.sku,
			p.name,
			COALESCE(SUM(s.quantity), 0) AS current_stock,
			p.reorder_point,
			p.unit_cost,
			p.price
		FROM products p
		LEFT JOIN stock s ON s.product_id = p.id
		WHERE p.reorder_point > 0
		GROUP BY p.id, p.sku, p.name, p.reorder_point, p.unit_cost, p.price
		HAVING COALESCE(SUM(s.quantity), 0) <= p.reorder_point
		ORDER BY (p.reorder_point - COALESCE(SUM(s.quantity), 0)) DESC, p.sku`, allInventoryUnion())

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get products below reorder point: %w", err)
	}
	defer rows.Close()

	var items []repository.ReplenishmentItem
	for rows.Next() {
		var (
			item  repository.ReplenishmentItem
			stock int64
		)
		if err := rows.Scan(
			&item.ProductID, &item.SKU, &item.ProductName,
			&stock, &item.ReorderPoint,
			&item.UnitCost, &item.Price,
		); err != nil {
			return nil, fmt.Errorf("scan replenishment item: %w", err)
		}
		item.CurrentStock = int(stock)
		items = append(items, item)
	}
	return items, rows.Err()
}
