package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func TestTxRunner_ErrorDescartaStaging(t *testing.T) {
	s := NewStore()
	runner := NewTxRunner(s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := runner.Run(ctx, func(levels repository.StockLevelRepository, movs repository.MovementRepository) error {
		l, err := levels.GetForUpdate(ctx, "A", "L1")
		require.NoError(t, err)
		l.Quantity = 10
		require.NoError(t, levels.Upsert(ctx, l))
		require.NoError(t, movs.Append(ctx, &entity.Movement{ItemID: "A", LocationID: "L1", Delta: 10, QuantityAfter: 10}))

		// Dentro de la tx se ve lo escrito
		got, _ := levels.Get(ctx, "A", "L1")
		assert.Equal(t, int64(10), got.Quantity)
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Levels().Get(ctx, "A", "L1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Quantity)
	assert.Equal(t, 0, s.MovementCount())
}

func TestTxRunner_CommitAsignaIDs(t *testing.T) {
	s := NewStore()
	runner := NewTxRunner(s)
	ctx := context.Background()

	m := &entity.Movement{ItemID: "A", LocationID: "L1", Delta: 3, QuantityAfter: 3}
	err := runner.Run(ctx, func(levels repository.StockLevelRepository, movs repository.MovementRepository) error {
		return movs.Append(ctx, m)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.False(t, m.CreatedAt.IsZero())
}

func TestAcquire_TimeoutDevuelveErrSerialization(t *testing.T) {
	s := NewStore(WithLockTimeout(10 * time.Millisecond))
	key := pairKey{"A", "L1"}
	require.NoError(t, s.acquire(context.Background(), key))
	defer s.release(key)

	err := s.acquire(context.Background(), key)
	assert.ErrorIs(t, err, repository.ErrSerialization)
}

func TestMovementRepo_ListFiltraYPagina(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := s.Movements()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &entity.Movement{
			ItemID: "A", LocationID: "L1", Delta: 1, QuantityBefore: int64(i), QuantityAfter: int64(i + 1),
			Type: entity.MovementTypePurchase, ActorID: "U1", CreatedAt: t0.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Append(ctx, &entity.Movement{
		ItemID: "B", LocationID: "L1", Delta: -1, Type: entity.MovementTypeSale, ActorID: "U2", CreatedAt: t0,
	}))

	list, total, err := repo.List(ctx, repository.MovementFilter{ItemID: "A"}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.Equal(t, int64(4), list[0].ID)
	assert.Equal(t, int64(3), list[1].ID)

	from := t0.Add(3 * time.Hour)
	list, total, err = repo.List(ctx, repository.MovementFilter{DateFrom: &from}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)

	_, total, err = repo.List(ctx, repository.MovementFilter{}, 10, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	totals, err := repo.Totals(ctx, repository.MovementFilter{LocationID: "L1"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), totals.TotalIn)
	assert.Equal(t, int64(1), totals.TotalOut)
	assert.Equal(t, int64(1), totals.CountByType[entity.MovementTypeSale])
}

func TestMovementRepo_HistoryOrdenCronologico(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	repo := s.Movements()
	require.NoError(t, repo.Append(ctx, &entity.Movement{ItemID: "A", LocationID: "L1", Delta: 2, QuantityBefore: 5, QuantityAfter: 7, CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, repo.Append(ctx, &entity.Movement{ItemID: "A", LocationID: "L1", Delta: 5, QuantityAfter: 5, CreatedAt: t0}))

	history, err := repo.History(ctx, "A", "L1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, int64(5), history[0].Delta)
	assert.Equal(t, int64(2), history[1].Delta)
}

func TestSeed_RegistraMovimientosIniciales(t *testing.T) {
	s := NewStore()
	s.Seed(
		[]entity.Item{{ID: "A", Name: "Tornillo", Active: true}},
		[]entity.Location{{ID: "L1", Name: "Bodega", Active: true}},
		map[string]map[string]int64{"A": {"L1": 12}},
		"seed",
	)
	l, err := s.Levels().Get(context.Background(), "A", "L1")
	require.NoError(t, err)
	assert.Equal(t, int64(12), l.Quantity)
	assert.Equal(t, 1, s.MovementCount())

	item, err := s.Items().GetByID(context.Background(), "A")
	require.NoError(t, err)
	require.NotNil(t, item)
	missing, err := s.Locations().GetByID(context.Background(), "LX")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
