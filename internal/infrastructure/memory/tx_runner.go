package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con escrituras en staging; se aplican juntas al confirmar.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn. Si fn falla, las escrituras en staging se descartan y nada queda visible.
func (r *TxRunner) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	movRepo repository.MovementRepository,
) error) error {
	tx := &memTx{
		s:      r.s,
		held:   make(map[pairKey]bool),
		levels: make(map[pairKey]entity.StockLevel),
	}
	defer tx.releaseAll()

	if err := fn(&txLevelRepo{tx: tx}, &txMovementRepo{tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

type memTx struct {
	s         *Store
	held      map[pairKey]bool
	levels    map[pairKey]entity.StockLevel
	movements []*entity.Movement
}

func (tx *memTx) lock(ctx context.Context, key pairKey) error {
	if tx.held[key] {
		return nil
	}
	if err := tx.s.acquire(ctx, key); err != nil {
		return err
	}
	tx.held[key] = true
	return nil
}

func (tx *memTx) releaseAll() {
	for key := range tx.held {
		tx.s.release(key)
	}
	tx.held = nil
}

func (tx *memTx) level(key pairKey) entity.StockLevel {
	if l, ok := tx.levels[key]; ok {
		return l
	}
	return tx.s.level(key)
}

// commit aplica niveles y movimientos bajo el mismo candado de escritura del store.
func (tx *memTx) commit() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for key, l := range tx.levels {
		tx.s.levels[key] = l
	}
	for _, m := range tx.movements {
		tx.s.appendLocked(m)
	}
}

var _ repository.StockLevelRepository = (*txLevelRepo)(nil)

type txLevelRepo struct {
	tx *memTx
}

func (r *txLevelRepo) Get(_ context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	l := r.tx.level(pairKey{itemID, locationID})
	return &l, nil
}

func (r *txLevelRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	key := pairKey{itemID, locationID}
	if err := r.tx.lock(ctx, key); err != nil {
		return nil, err
	}
	l := r.tx.level(key)
	return &l, nil
}

func (r *txLevelRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	key := pairKey{level.ItemID, level.LocationID}
	if err := r.tx.lock(ctx, key); err != nil {
		return err
	}
	r.tx.levels[key] = *level
	return nil
}

var _ repository.MovementRepository = (*txMovementRepo)(nil)

type txMovementRepo struct {
	tx *memTx
}

func (r *txMovementRepo) Append(_ context.Context, movement *entity.Movement) error {
	r.tx.movements = append(r.tx.movements, movement)
	return nil
}

func (r *txMovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int64, error) {
	return r.tx.s.Movements().List(ctx, filter, limit, offset)
}

func (r *txMovementRepo) Totals(ctx context.Context, filter repository.MovementFilter) (repository.MovementTotals, error) {
	return r.tx.s.Movements().Totals(ctx, filter)
}

func (r *txMovementRepo) ListByReference(ctx context.Context, referenceID string) ([]*entity.Movement, error) {
	return r.tx.s.Movements().ListByReference(ctx, referenceID)
}

// History incluye los movimientos aún en staging del mismo par.
func (r *txMovementRepo) History(ctx context.Context, itemID, locationID string) ([]*entity.Movement, error) {
	list, err := r.tx.s.Movements().History(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	for _, m := range r.tx.movements {
		if m.ItemID == itemID && m.LocationID == locationID {
			cp := *m
			list = append(list, &cp)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}
