package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ItemRepository puerto de lectura del catálogo de artículos (DIP).
// GetByID devuelve (nil, nil) si el artículo no existe.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
}
