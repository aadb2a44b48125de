package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lee: las filas no se actualizan ni se borran.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `m.id, m.item_id, m.location_kind, m.from_location_id, m.to_location_id,
	m.previous_quantity, m.current_quantity, m.quantity_change, m.reason, m.actor_id, m.at, m.metadata`

// Create persiste un movimiento del ledger.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	metadata := m.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	query := `
		INSERT INTO stock_movements (id, item_id, location_kind, from_location_id, to_location_id,
			previous_quantity, current_quantity, quantity_change, reason, actor_id, at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ItemID, string(m.LocationKind), m.FromLocationID, m.ToLocationID,
		m.PreviousQuantity, m.CurrentQuantity, m.QuantityChange, string(m.Reason), m.ActorID,
		m.At, metadata,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row, extra ...any) (*entity.StockMovement, error) {
	var (
		m      entity.StockMovement
		kind   string
		reason string
	)
	dest := []any{
		&m.ID, &m.ItemID, &kind, &m.FromLocationID, &m.ToLocationID,
		&m.PreviousQuantity, &m.CurrentQuantity, &m.QuantityChange, &reason, &m.ActorID, &m.At, &m.Metadata,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	m.LocationKind = entity.LocationKind(kind)
	m.Reason = entity.MovementReason(reason)
	return &m, nil
}

// ListByProduct página de movimientos del producto, más reciente primero, y total de filas.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockMovement, int, error) {
	if !isUUID(productID) {
		return []*entity.StockMovement{}, 0, nil
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements WHERE item_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements by product: %w", err)
	}
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m WHERE m.item_id = $1
		ORDER BY m.at DESC, m.id DESC LIMIT $2 OFFSET $3`
	list, err := r.list(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *StockMovementRepo) ListAllByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if !isUUID(productID) {
		return []*entity.StockMovement{}, nil
	}
	query := `SELECT ` + movementColumns + `
		FROM stock_movements m WHERE m.item_id = $1
		ORDER BY m.at DESC, m.id DESC`
	return r.list(ctx, query, productID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// buildFilter arma el WHERE dinámico del log de auditoría ($1..$n).
func buildFilter(f repository.MovementFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(p.name ILIKE $%d OR p.sku ILIKE $%d)", n, n))
	}
	if f.ActorID != nil {
		add("m.actor_id = $%d", *f.ActorID)
	}
	if f.Reason != nil {
		add("m.reason = $%d", string(*f.Reason))
	}
	if f.From != nil {
		add("m.at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.at <= $%d", *f.To)
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Search log de auditoría con datos del producto; más reciente primero.
func (r *StockMovementRepo) Search(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.StockMovementView, int, error) {
	where, args := buildFilter(f)
	from := ` FROM stock_movements m JOIN products p ON p.id = m.item_id`

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit log: %w", err)
	}

	pos := len(args) + 1
	query := `SELECT ` + movementColumns + `, p.sku, p.name` + from + where +
		fmt.Sprintf(" ORDER BY m.at DESC, m.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search audit log: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovementView, 0)
	for rows.Next() {
		var v entity.StockMovementView
		m, err := scanMovement(rows, &v.ItemSKU, &v.ItemName)
		if err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		v.StockMovement = *m
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UnitsSoldSince unidades vendidas por producto (quantity_change negativo con reason SALE).
func (r *StockMovementRepo) UnitsSoldSince(ctx context.Context, since time.Time) (map[string]int, error) {
	query := `
		SELECT item_id, COALESCE(SUM(-quantity_change), 0)
		FROM stock_movements
		WHERE reason = $1 AND at >= $2 AND quantity_change < 0
		GROUP BY item_id`
	rows, err := r.q.Query(ctx, query, string(entity.ReasonSale), since)
	if err != nil {
		return nil, fmt.Errorf("units sold since: %w", err)
	}
	defer rows.Close()
	sold := make(map[string]int)
	for rows.Next() {
		var (
			id string
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan units sold: %w", err)
		}
		sold[id] = int(n)
	}
	return sold, rows.Err()
}
