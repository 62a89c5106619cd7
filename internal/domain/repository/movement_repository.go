package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros opcionales para consultar el historial de movimientos.
// Campos vacíos o nil no filtran. DateFrom y DateTo son inclusivos.
type MovementFilter struct {
	ItemID     string
	LocationID string
	Type       entity.MovementType
	ActorID    string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// MovementTotals agregados de un conjunto de movimientos.
type MovementTotals struct {
	TotalIn     int64 // Σ delta de movimientos positivos
	TotalOut    int64 // Σ |delta| de movimientos negativos
	Count       int64
	CountByType map[entity.MovementType]int64
}

// MovementRepository puerto de persistencia del log de movimientos (solo inserción).
// No existe operación de actualización ni borrado.
type MovementRepository interface {
	// Append inserta el movimiento y completa ID (y CreatedAt si venía vacío).
	Append(ctx context.Context, movement *entity.Movement) error
	// List devuelve una página ordenada por fecha descendente junto con el total filtrado.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.Movement, int64, error)
	Totals(ctx context.Context, filter MovementFilter) (MovementTotals, error)
	ListByReference(ctx context.Context, referenceID string) ([]*entity.Movement, error)
	// History devuelve todos los movimientos del par en orden cronológico (fecha, id).
	History(ctx context.Context, itemID, locationID string) ([]*entity.Movement, error)
}
