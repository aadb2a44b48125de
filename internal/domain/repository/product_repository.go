package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository puerto de lectura del catálogo de productos.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
