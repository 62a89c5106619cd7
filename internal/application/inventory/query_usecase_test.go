package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestListByStatus_OrdenaPorCantidadAscendente(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "L1", 8)
	f.seed(t, "A", "L2", 3)

	rows, err := f.status.ListByStatus(context.Background(), nil, entity.StockStatusLowStock)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "L2", rows[0].LocationID)
	assert.Equal(t, "L1", rows[1].LocationID)
	assert.Equal(t, "Tornillo", rows[0].ItemName)
	assert.Equal(t, string(entity.StockStatusLowStock), rows[0].Status)
}

func TestListByStatus_AgotadoTrasVenderTodo(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "L1", 4)
	_, err := f.ledger.Adjust(context.Background(), inventory.AdjustInput{
		ItemID: "A", LocationID: "L1", Delta: -4, Type: entity.MovementTypeSale, ActorID: actor,
	})
	require.NoError(t, err)

	rows, err := f.status.ListByStatus(context.Background(), nil, entity.StockStatusOutOfStock)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(0), rows[0].Quantity)
}

func TestListByStatus_EstadoInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.status.ListByStatus(context.Background(), nil, "agotadisimo")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMovementQuery_FiltraPaginaYTotaliza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "A", "L1", 50)
	_, _, err := f.ledger.Transfer(ctx, inventory.TransferInput{ItemID: "A", FromLocationID: "L1", ToLocationID: "L2", Quantity: 10, ActorID: actor})
	require.NoError(t, err)
	_, err = f.ledger.Adjust(ctx, inventory.AdjustInput{ItemID: "A", LocationID: "L1", Delta: -5, Type: entity.MovementTypeSale, ActorID: "U2"})
	require.NoError(t, err)

	uc := inventory.NewMovementQueryUseCase(f.store.Movements())

	page, err := uc.ListMovements(ctx, dto.MovementQuery{LocationID: "L1", PageRequest: dto.PageRequest{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "sale", page.Items[0].Type)

	byActor, err := uc.ListMovements(ctx, dto.MovementQuery{ActorID: "U2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), byActor.Page.Total)
	assert.Equal(t, dto.DefaultPageSize, byActor.Page.PageSize)

	totals, err := uc.Totals(ctx, dto.MovementQuery{LocationID: "L1"})
	require.NoError(t, err)
	assert.Equal(t, int64(50), totals.TotalIn)
	assert.Equal(t, int64(15), totals.TotalOut)
	assert.Equal(t, int64(35), totals.Net)
	assert.Equal(t, int64(1), totals.CountByType["transfer-out"])

	legs, err := uc.ListByReference(ctx, page.Items[1].ReferenceID)
	require.NoError(t, err)
	assert.Len(t, legs, 2)
}

func TestMovementQuery_FiltrosInvalidos(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewMovementQueryUseCase(f.store.Movements())

	_, err := uc.ListMovements(context.Background(), dto.MovementQuery{Type: "regalo"})
	assert.ErrorIs(t, err, domain.ErrInvalidMovementType)

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = uc.ListMovements(context.Background(), dto.MovementQuery{DateFrom: &from, DateTo: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ListByReference(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLecturas_RepetidasSinEscriturasDevuelvenLoMismo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "A", "L1", 8)
	f.seed(t, "A", "L2", 30)
	stats := analytics.NewStatisticsUseCase(f.store.StockQuery())
	movementsBefore := f.store.MovementCount()

	firstQty := f.qty(t, "A", "L1")
	firstRows, err := f.status.ListByStatus(ctx, nil, entity.StockStatusLowStock)
	require.NoError(t, err)
	firstStats, err := stats.Statistics(ctx, nil)
	require.NoError(t, err)

	secondQty := f.qty(t, "A", "L1")
	secondRows, err := f.status.ListByStatus(ctx, nil, entity.StockStatusLowStock)
	require.NoError(t, err)
	secondStats, err := stats.Statistics(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, firstQty, secondQty)
	assert.Equal(t, firstRows, secondRows)
	assert.Equal(t, firstStats.TotalItems, secondStats.TotalItems)
	assert.Equal(t, firstStats.TotalQuantity, secondStats.TotalQuantity)
	assert.Equal(t, firstStats.LowStockCount, secondStats.LowStockCount)
	assert.Equal(t, firstStats.OutOfStockCount, secondStats.OutOfStockCount)
	assert.True(t, firstStats.TotalCostValue.Equal(secondStats.TotalCostValue))
	assert.True(t, firstStats.TotalRetailValue.Equal(secondStats.TotalRetailValue))
	assert.Equal(t, movementsBefore, f.store.MovementCount())
}
