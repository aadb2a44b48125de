package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo lectura de ubicaciones de todos los tipos.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Acepta pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func (r *LocationRepo) table(kind entity.LocationKind) (kindTable, error) {
	t, ok := kindTables[kind]
	if !ok {
		return kindTable{}, domain.Invalid("tipo de ubicación no soportado: %q", kind)
	}
	return t, nil
}

func (r *LocationRepo) GetByID(ctx context.Context, kind entity.LocationKind, id string) (*entity.Location, error) {
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT id, %s, name, created_at, updated_at FROM %s WHERE id = $1`, t.codeColumn, t.locations)
	var l entity.Location
	err = r.q.QueryRow(ctx, query, id).Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", t.locations, err)
	}
	l.Kind = kind
	return &l, nil
}

// CodesByIDs una sola consulta por tipo; ids desconocidos no aparecen en el mapa.
func (r *LocationRepo) CodesByIDs(ctx context.Context, kind entity.LocationKind, ids []string) (map[string]string, error) {
	codes := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return codes, nil
	}
	t, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT id, %s FROM %s WHERE id = ANY($1::uuid[])`, t.codeColumn, t.locations)
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("codes %s: %w", t.locations, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("scan location code: %w", err)
		}
		codes[id] = code
	}
	return codes, rows.Err()
}
