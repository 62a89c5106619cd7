package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelRepository define el puerto para consultar/actualizar stock por (artículo, ubicación).
// Usado dentro de transacciones para garantizar consistencia.
type StockLevelRepository interface {
	// Get devuelve el nivel actual; si no existe fila devuelve cantidad 0.
	Get(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea el par (artículo, ubicación) hasta el fin de la transacción.
	// Si no existe fila devuelve cantidad 0 con el par igualmente bloqueado.
	GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error)
	Upsert(ctx context.Context, level *entity.StockLevel) error
}

// StockView fila de stock unida con los datos del catálogo, para vistas de lectura.
type StockView struct {
	ItemID       string
	ItemName     string
	LocationID   string
	LocationName string
	Quantity     int64
	MinQuantity  int64
	UpdatedAt    time.Time
}

// ItemQuantity cantidad total de un artículo dentro de un alcance (una ubicación o todas).
type ItemQuantity struct {
	ItemID      string
	Quantity    int64
	MinQuantity int64
}

// StockTotals agregados de stock dentro de un alcance.
type StockTotals struct {
	TotalItems       int64
	TotalQuantity    int64
	TotalCostValue   decimal.Decimal // Σ cantidad × costo unitario
	TotalRetailValue decimal.Decimal // Σ cantidad × precio unitario
}

// StockQueryRepository consultas read-only sobre stock_levels unidas al catálogo.
// locationID nil significa todas las ubicaciones.
type StockQueryRepository interface {
	ListStock(ctx context.Context, locationID *string) ([]StockView, error)
	ItemQuantities(ctx context.Context, locationID *string) ([]ItemQuantity, error)
	StockTotals(ctx context.Context, locationID *string) (StockTotals, error)
}
