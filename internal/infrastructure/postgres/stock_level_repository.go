package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de niveles. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene el nivel actual del par; 0 si aún no hay fila.
func (r *StockLevelRepo) Get(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	const query = `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_levels WHERE item_id = $1 AND location_id = $2`
	return r.scanOne(ctx, "get stock level", query, itemID, locationID)
}

// GetForUpdate bloquea el par hasta el fin de la transacción.
// El advisory lock cubre también pares sin fila, donde FOR UPDATE no tendría nada que bloquear.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	if _, err := r.q.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || '/' || $2, 0))`,
		itemID, locationID,
	); err != nil {
		return nil, wrapErr("lock stock level", err)
	}
	const query = `
		SELECT item_id, location_id, quantity, updated_at
		FROM stock_levels WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, "get stock level for update", query, itemID, locationID)
}

// Upsert inserta o actualiza la cantidad del par.
func (r *StockLevelRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	const query = `
		INSERT INTO stock_levels (item_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`
	if _, err := r.q.Exec(ctx, query, level.ItemID, level.LocationID, level.Quantity, level.UpdatedAt); err != nil {
		return wrapErr("upsert stock level", err)
	}
	return nil
}

func (r *StockLevelRepo) scanOne(ctx context.Context, op, query, itemID, locationID string) (*entity.StockLevel, error) {
	var l entity.StockLevel
	err := r.q.QueryRow(ctx, query, itemID, locationID).Scan(&l.ItemID, &l.LocationID, &l.Quantity, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{ItemID: itemID, LocationID: locationID}, nil
		}
		return nil, wrapErr(op, err)
	}
	return &l, nil
}
