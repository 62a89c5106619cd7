// Package analytics contiene los casos de uso de lectura para dashboards sobre el libro de stock.
package analytics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StatisticsUseCase calcula los agregados del dashboard de inventario.
//
// Fuente de datos: StockQueryRepository (consultas read-only).
// No hay snapshot persistido: cada llamada es tan fresca como las filas de stock leídas.
type StatisticsUseCase struct {
	stockQuery repository.StockQueryRepository
}

// NewStatisticsUseCase construye el caso de uso.
func NewStatisticsUseCase(stockQuery repository.StockQueryRepository) *StatisticsUseCase {
	return &StatisticsUseCase{stockQuery: stockQuery}
}

// Statistics devuelve totales de una ubicación (o de todas si locationID es nil).
//
// Dos consultas en paralelo:
//  1. StockTotals      → artículos, unidades, valor a costo y a precio de venta
//  2. ItemQuantities   → cantidad por artículo para contar bajo stock / agotados
//
// El estado se evalúa por artículo sobre su cantidad sumada dentro del alcance.
func (uc *StatisticsUseCase) Statistics(ctx context.Context, locationID *string) (*dto.StatisticsDTO, error) {
	var (
		totals     repository.StockTotals
		quantities []repository.ItemQuantity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := uc.stockQuery.StockTotals(gctx, locationID)
		if err != nil {
			return fmt.Errorf("estadísticas: totales de stock: %w", err)
		}
		totals = t
		return nil
	})
	g.Go(func() error {
		q, err := uc.stockQuery.ItemQuantities(gctx, locationID)
		if err != nil {
			return fmt.Errorf("estadísticas: cantidades por artículo: %w", err)
		}
		quantities = q
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.StatisticsDTO{
		TotalItems:       totals.TotalItems,
		TotalQuantity:    totals.TotalQuantity,
		TotalCostValue:   totals.TotalCostValue.Round(2),
		TotalRetailValue: totals.TotalRetailValue.Round(2),
	}
	if locationID != nil {
		out.LocationID = *locationID
	}
	for _, q := range quantities {
		switch inventory.EvaluateStatus(q.Quantity, q.MinQuantity) {
		case entity.StockStatusLowStock:
			out.LowStockCount++
		case entity.StockStatusOutOfStock:
			out.OutOfStockCount++
		}
	}
	return out, nil
}
