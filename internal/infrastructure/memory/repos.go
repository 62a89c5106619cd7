package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository       = (*ItemRepo)(nil)
	_ repository.LocationRepository   = (*LocationRepo)(nil)
	_ repository.StockLevelRepository = (*LevelRepo)(nil)
	_ repository.MovementRepository   = (*MovementRepo)(nil)
	_ repository.StockQueryRepository = (*StockQueryRepo)(nil)
)

// ItemRepo lectura del catálogo en memoria.
type ItemRepo struct{ s *Store }

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// LocationRepo lectura de ubicaciones en memoria.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	loc, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

// LevelRepo acceso a niveles fuera de transacción. GetForUpdate no bloquea aquí:
// el bloqueo por par solo existe dentro de TxRunner.Run.
type LevelRepo struct{ s *Store }

func (r *LevelRepo) Get(_ context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	l := r.s.level(pairKey{itemID, locationID})
	return &l, nil
}

func (r *LevelRepo) GetForUpdate(ctx context.Context, itemID, locationID string) (*entity.StockLevel, error) {
	return r.Get(ctx, itemID, locationID)
}

func (r *LevelRepo) Upsert(_ context.Context, level *entity.StockLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.levels[pairKey{level.ItemID, level.LocationID}] = *level
	return nil
}

// MovementRepo acceso al log fuera de transacción.
type MovementRepo struct{ s *Store }

func (r *MovementRepo) Append(_ context.Context, movement *entity.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendLocked(movement)
	return nil
}

func (r *MovementRepo) List(_ context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int64, error) {
	matched := r.filter(filter)
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return []*entity.Movement{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (r *MovementRepo) Totals(_ context.Context, filter repository.MovementFilter) (repository.MovementTotals, error) {
	totals := repository.MovementTotals{CountByType: make(map[entity.MovementType]int64)}
	for _, m := range r.filter(filter) {
		if m.Delta > 0 {
			totals.TotalIn += m.Delta
		} else {
			totals.TotalOut += -m.Delta
		}
		totals.Count++
		totals.CountByType[m.Type]++
	}
	return totals, nil
}

func (r *MovementRepo) ListByReference(_ context.Context, referenceID string) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Movement
	for i := range r.s.movements {
		if r.s.movements[i].ReferenceID == referenceID {
			m := r.s.movements[i]
			list = append(list, &m)
		}
	}
	return list, nil
}

func (r *MovementRepo) History(_ context.Context, itemID, locationID string) ([]*entity.Movement, error) {
	list := r.filter(repository.MovementFilter{ItemID: itemID, LocationID: locationID})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *MovementRepo) filter(f repository.MovementFilter) []*entity.Movement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Movement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if !matches(&m, f) {
			continue
		}
		out = append(out, &m)
	}
	return out
}

func matches(m *entity.Movement, f repository.MovementFilter) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && m.LocationID != f.LocationID {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.ActorID != "" && m.ActorID != f.ActorID {
		return false
	}
	if f.DateFrom != nil && m.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.CreatedAt.After(*f.DateTo) {
		return false
	}
	return true
}

// StockQueryRepo consultas de lectura de stock unidas al catálogo.
type StockQueryRepo struct{ s *Store }

func (r *StockQueryRepo) ListStock(_ context.Context, locationID *string) ([]repository.StockView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	views := make([]repository.StockView, 0, len(r.s.levels))
	for key, l := range r.s.levels {
		if locationID != nil && key.locationID != *locationID {
			continue
		}
		item := r.s.items[key.itemID]
		loc := r.s.locations[key.locationID]
		views = append(views, repository.StockView{
			ItemID:       key.itemID,
			ItemName:     item.Name,
			LocationID:   key.locationID,
			LocationName: loc.Name,
			Quantity:     l.Quantity,
			MinQuantity:  item.MinQuantity,
			UpdatedAt:    l.UpdatedAt,
		})
	}
	return views, nil
}

func (r *StockQueryRepo) ItemQuantities(_ context.Context, locationID *string) ([]repository.ItemQuantity, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byItem := make(map[string]int64)
	for key, l := range r.s.levels {
		if locationID != nil && key.locationID != *locationID {
			continue
		}
		byItem[key.itemID] += l.Quantity
	}
	out := make([]repository.ItemQuantity, 0, len(byItem))
	for itemID, qty := range byItem {
		out = append(out, repository.ItemQuantity{
			ItemID:      itemID,
			Quantity:    qty,
			MinQuantity: r.s.items[itemID].MinQuantity,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r *StockQueryRepo) StockTotals(_ context.Context, locationID *string) (repository.StockTotals, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	totals := repository.StockTotals{TotalCostValue: decimal.Zero, TotalRetailValue: decimal.Zero}
	seen := make(map[string]bool)
	for key, l := range r.s.levels {
		if locationID != nil && key.locationID != *locationID {
			continue
		}
		seen[key.itemID] = true
		item := r.s.items[key.itemID]
		qty := decimal.NewFromInt(l.Quantity)
		totals.TotalQuantity += l.Quantity
		totals.TotalCostValue = totals.TotalCostValue.Add(qty.Mul(item.UnitCost))
		totals.TotalRetailValue = totals.TotalRetailValue.Add(qty.Mul(item.UnitPrice))
	}
	totals.TotalItems = int64(len(seen))
	return totals, nil
}

// Seed carga catálogo y stock inicial de ejemplo para LEDGER_STORAGE=memory.
// El stock inicial se registra como movimientos "initial" para que el log siga siendo la fuente de verdad.
func (s *Store) Seed(items []entity.Item, locations []entity.Location, initial map[string]map[string]int64, actorID string) {
	now := time.Now().UTC()
	for _, it := range items {
		s.PutItem(it)
	}
	for _, loc := range locations {
		s.PutLocation(loc)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for itemID, byLoc := range initial {
		for locID, qty := range byLoc {
			if qty <= 0 {
				continue
			}
			key := pairKey{itemID, locID}
			before := s.levels[key].Quantity
			s.levels[key] = entity.StockLevel{ItemID: itemID, LocationID: locID, Quantity: before + qty, UpdatedAt: now}
			s.appendLocked(&entity.Movement{
				ItemID:         itemID,
				LocationID:     locID,
				Delta:          qty,
				QuantityBefore: before,
				QuantityAfter:  before + qty,
				Type:           entity.MovementTypeInitial,
				Reason:         "carga inicial",
				ActorID:        actorID,
				CreatedAt:      now,
			})
		}
	}
}
