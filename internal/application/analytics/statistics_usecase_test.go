package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.Seed(
		[]entity.Item{
			{ID: "A", Name: "Tornillo", MinQuantity: 10, Active: true, UnitCost: decimal.RequireFromString("1.50"), UnitPrice: decimal.NewFromInt(2)},
			{ID: "B", Name: "Tuerca", MinQuantity: 5, Active: true, UnitCost: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
			{ID: "C", Name: "Arandela", MinQuantity: 1, Active: true, UnitCost: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		},
		[]entity.Location{{ID: "L1", Name: "Bodega", Active: true}, {ID: "L2", Name: "Tienda", Active: true}},
		map[string]map[string]int64{
			"A": {"L1": 8, "L2": 12},
			"B": {"L1": 3},
		},
		"seed",
	)
	return s
}

func TestStatistics_TodasLasUbicaciones(t *testing.T) {
	uc := analytics.NewStatisticsUseCase(newStore().StockQuery())

	out, err := uc.Statistics(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.TotalItems)
	assert.Equal(t, int64(23), out.TotalQuantity)
	// A suma 20 > 10 en total; B tiene 3 ≤ 5
	assert.Equal(t, int64(1), out.LowStockCount)
	assert.Equal(t, int64(0), out.OutOfStockCount)
	assert.True(t, decimal.NewFromInt(33).Equal(out.TotalCostValue), out.TotalCostValue.String())
	assert.True(t, decimal.NewFromInt(43).Equal(out.TotalRetailValue), out.TotalRetailValue.String())
	assert.Empty(t, out.LocationID)
}

func TestStatistics_PorUbicacion(t *testing.T) {
	uc := analytics.NewStatisticsUseCase(newStore().StockQuery())
	l1 := "L1"

	out, err := uc.Statistics(context.Background(), &l1)
	require.NoError(t, err)
	assert.Equal(t, "L1", out.LocationID)
	assert.Equal(t, int64(11), out.TotalQuantity)
	assert.Equal(t, int64(2), out.LowStockCount)
}
