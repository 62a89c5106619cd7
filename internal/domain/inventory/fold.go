package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// FoldMovements reconstruye la cantidad de un par (artículo, ubicación) sumando los deltas
// en orden cronológico. Verifica además la cadena before/after de cada movimiento:
// el primero parte de 0 y cada QuantityBefore coincide con el QuantityAfter anterior.
func FoldMovements(movements []*entity.Movement) (int64, error) {
	ordered := make([]*entity.Movement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var qty int64
	for _, m := range ordered {
		if m.QuantityAfter != m.QuantityBefore+m.Delta {
			return 0, fmt.Errorf("movimiento %d: after (%d) != before (%d) + delta (%d)",
				m.ID, m.QuantityAfter, m.QuantityBefore, m.Delta)
		}
		if m.QuantityBefore != qty {
			return 0, fmt.Errorf("movimiento %d: before (%d) no coincide con el acumulado (%d)",
				m.ID, m.QuantityBefore, qty)
		}
		qty += m.Delta
	}
	return qty, nil
}
