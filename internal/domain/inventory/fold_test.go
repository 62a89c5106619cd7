package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func mov(id int64, before, delta int64, at time.Time) *entity.Movement {
	return &entity.Movement{
		ID:             id,
		Delta:          delta,
		QuantityBefore: before,
		QuantityAfter:  before + delta,
		CreatedAt:      at,
	}
}

func TestFoldMovements_SumaEnOrdenCronologico(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	// Se entregan desordenados a propósito
	history := []*entity.Movement{
		mov(3, 70, -30, t0.Add(2*time.Minute)),
		mov(1, 0, 50, t0),
		mov(2, 50, 20, t0.Add(time.Minute)),
	}

	qty, err := inventory.FoldMovements(history)
	require.NoError(t, err)
	assert.Equal(t, int64(40), qty)
}

func TestFoldMovements_EmpateDeFechaUsaID(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	history := []*entity.Movement{
		mov(2, 5, 5, t0),
		mov(1, 0, 5, t0),
	}
	qty, err := inventory.FoldMovements(history)
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)
}

func TestFoldMovements_HistorialVacioEsCero(t *testing.T) {
	qty, err := inventory.FoldMovements(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty)
}

func TestFoldMovements_DetectaCadenaRota(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	history := []*entity.Movement{
		mov(1, 0, 50, t0),
		mov(2, 40, 10, t0.Add(time.Minute)), // before debería ser 50
	}
	_, err := inventory.FoldMovements(history)
	assert.Error(t, err)
}

func TestFoldMovements_DetectaAfterInconsistente(t *testing.T) {
	m := mov(1, 0, 50, time.Now())
	m.QuantityAfter = 49
	_, err := inventory.FoldMovements([]*entity.Movement{m})
	assert.Error(t, err)
}
