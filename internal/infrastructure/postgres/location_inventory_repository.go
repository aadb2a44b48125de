package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.LocationInventoryRepository = (*LocationInventoryRepo)(nil)

// LocationInventoryRepo inventario de un tipo de ubicación (usable con pool o tx).
type LocationInventoryRepo struct {
	q    Querier
	kind entity.LocationKind
	t    kindTable
}

// NewLocationInventoryRepository construye el store de un tipo. ok es false si el tipo no tiene tabla.
func NewLocationInventoryRepository(q Querier, kind entity.LocationKind) (*LocationInventoryRepo, bool) {
	t, ok := kindTables[kind]
	if !ok {
		return nil, false
	}
	return &LocationInventoryRepo{q: q, kind: kind, t: t}, true
}

// NewLocationInventoryStores registra un store por cada tipo con tabla propia.
func NewLocationInventoryStores(q Querier) ports.Stores {
	stores := make(ports.Stores, len(kindTables))
	for kind := range kindTables {
		repo, _ := NewLocationInventoryRepository(q, kind)
		stores[kind] = repo
	}
	return stores
}

func (r *LocationInventoryRepo) Kind() entity.LocationKind { return r.kind }

func (r *LocationInventoryRepo) selectColumns() string {
	return fmt.Sprintf(`id, %s, product_id, category, subcategory, quantity, created_at, updated_at`, r.t.locationColumn)
}

func (r *LocationInventoryRepo) scan(row pgx.Row) (*entity.LocationInventory, error) {
	var (
		inv       entity.LocationInventory
		productID *string
	)
	if err := row.Scan(
		&inv.ID, &inv.LocationID, &productID, &inv.Category, &inv.Subcategory,
		&inv.Quantity, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if productID != nil {
		inv.ProductID = *productID
	}
	inv.Kind = r.kind
	return &inv, nil
}

func (r *LocationInventoryRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.LocationInventory, error) {
	inv, err := r.scan(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s %s: %w", op, r.t.inventory, err)
	}
	return inv, nil
}

func (r *LocationInventoryRepo) GetByID(ctx context.Context, id string) (*entity.LocationInventory, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.selectColumns(), r.t.inventory)
	return r.getOne(ctx, "get", query, id)
}

// GetForUpdate bloquea la fila hasta el Commit/Rollback de la tx.
func (r *LocationInventoryRepo) GetForUpdate(ctx context.Context, id string) (*entity.LocationInventory, error) {
	if !isUUID(id) {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 FOR UPDATE`, r.selectColumns(), r.t.inventory)
	return r.getOne(ctx, "get for update", query, id)
}

func (r *LocationInventoryRepo) FindByLocationAndProduct(ctx context.Context, locationID, productID string) (*entity.LocationInventory, error) {
	if !isUUID(locationID) || !isUUID(productID) {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND product_id = $2 FOR UPDATE`,
		r.selectColumns(), r.t.inventory, r.t.locationColumn)
	return r.getOne(ctx, "find by location", query, locationID, productID)
}

// Create inserta el registro. Si otra tx creó el mismo (ubicación, producto) devuelve ErrConflict.
func (r *LocationInventoryRepo) Create(ctx context.Context, inv *entity.LocationInventory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, %s, product_id, category, subcategory, quantity, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8)`, r.t.inventory, r.t.locationColumn)
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.LocationID, inv.ProductID, inv.Category, inv.Subcategory,
		inv.Quantity, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: registro de inventario duplicado en %s", domain.ErrConflict, r.t.inventory)
		}
		return fmt.Errorf("create %s: %w", r.t.inventory, err)
	}
	return nil
}

func (r *LocationInventoryRepo) UpdateQuantity(ctx context.Context, inv *entity.LocationInventory) error {
	query := fmt.Sprintf(`UPDATE %s SET quantity = $2, updated_at = $3 WHERE id = $1`, r.t.inventory)
	tag, err := r.q.Exec(ctx, query, inv.ID, inv.Quantity, inv.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("%w: cantidad negativa rechazada en %s", domain.ErrInsufficientStock, r.t.inventory)
		}
		return fmt.Errorf("update %s: %w", r.t.inventory, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("registro de inventario %s", inv.ID)
	}
	return nil
}

func (r *LocationInventoryRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	query := fmt.Sprintf(`SELECT COALESCE(SUM(quantity), 0) FROM %s WHERE product_id = $1`, r.t.inventory)
	var total int64
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s: %w", r.t.inventory, err)
	}
	return int(total), nil
}
