package postgres

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockQueryRepository = (*StockQueryRepo)(nil)

// StockQueryRepo consultas de solo lectura de stock unidas al catálogo (estados y estadísticas).
type StockQueryRepo struct {
	q Querier
}

// NewStockQueryRepository construye el adaptador.
func NewStockQueryRepository(q Querier) *StockQueryRepo {
	return &StockQueryRepo{q: q}
}

// ListStock lista los niveles existentes con nombres de artículo y ubicación.
func (r *StockQueryRepo) ListStock(ctx context.Context, locationID *string) ([]repository.StockView, error) {
	const query = `
		SELECT sl.item_id, i.name, sl.location_id, l.name, sl.quantity, i.min_quantity, sl.updated_at
		FROM stock_levels sl
		JOIN items     i ON i.id = sl.item_id
		JOIN locations l ON l.id = sl.location_id
		WHERE ($1::TEXT IS NULL OR sl.location_id = $1)`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, wrapErr("list stock", err)
	}
	defer rows.Close()
	views := make([]repository.StockView, 0)
	for rows.Next() {
		var v repository.StockView
		if err := rows.Scan(&v.ItemID, &v.ItemName, &v.LocationID, &v.LocationName, &v.Quantity, &v.MinQuantity, &v.UpdatedAt); err != nil {
			return nil, wrapErr("scan stock view", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// ItemQuantities suma la cantidad de cada artículo dentro del alcance.
func (r *StockQueryRepo) ItemQuantities(ctx context.Context, locationID *string) ([]repository.ItemQuantity, error) {
	const query = `
		SELECT sl.item_id, SUM(sl.quantity)::BIGINT, i.min_quantity
		FROM stock_levels sl
		JOIN items i ON i.id = sl.item_id
		WHERE ($1::TEXT IS NULL OR sl.location_id = $1)
		GROUP BY sl.item_id, i.min_quantity
		ORDER BY sl.item_id`
	rows, err := r.q.Query(ctx, query, locationID)
	if err != nil {
		return nil, wrapErr("item quantities", err)
	}
	defer rows.Close()
	out := make([]repository.ItemQuantity, 0)
	for rows.Next() {
		var q repository.ItemQuantity
		if err := rows.Scan(&q.ItemID, &q.Quantity, &q.MinQuantity); err != nil {
			return nil, wrapErr("scan item quantity", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// StockTotals agrega unidades y valorización a costo y a precio de venta.
func (r *StockQueryRepo) StockTotals(ctx context.Context, locationID *string) (repository.StockTotals, error) {
	const query = `
		SELECT COUNT(DISTINCT sl.item_id),
		       COALESCE(SUM(sl.quantity), 0)::BIGINT,
		       COALESCE(SUM(sl.quantity * i.unit_cost), 0),
		       COALESCE(SUM(sl.quantity * i.unit_price), 0)
		FROM stock_levels sl
		JOIN items i ON i.id = sl.item_id
		WHERE ($1::TEXT IS NULL OR sl.location_id = $1)`
	var t repository.StockTotals
	err := r.q.QueryRow(ctx, query, locationID).Scan(&t.TotalItems, &t.TotalQuantity, &t.TotalCostValue, &t.TotalRetailValue)
	if err != nil {
		return t, wrapErr("stock totals", err)
	}
	return t, nil
}
