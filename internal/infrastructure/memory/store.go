// Package memory implementa los puertos del libro de stock en memoria.
// Sirve para desarrollo local (LEDGER_STORAGE=memory) y para los tests de los casos de uso.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const defaultLockTimeout = 2 * time.Second

type pairKey struct {
	itemID     string
	locationID string
}

// Store guarda catálogo, niveles y movimientos. Los niveles solo cambian vía TxRunner.Run,
// que toma un candado por par (artículo, ubicación) y confirma todo de una vez.
type Store struct {
	mu        sync.RWMutex
	items     map[string]entity.Item
	locations map[string]entity.Location
	levels    map[pairKey]entity.StockLevel
	movements []entity.Movement
	nextID    int64

	keyMu       sync.Mutex
	keyLocks    map[pairKey]chan struct{}
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout fija cuánto espera una transacción por el candado de un par antes de
// devolver repository.ErrSerialization.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore crea un store vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items:       make(map[string]entity.Item),
		locations:   make(map[string]entity.Location),
		levels:      make(map[pairKey]entity.StockLevel),
		keyLocks:    make(map[pairKey]chan struct{}),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutItem inserta o reemplaza un artículo del catálogo.
func (s *Store) PutItem(item entity.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
}

// PutLocation inserta o reemplaza una ubicación.
func (s *Store) PutLocation(loc entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[loc.ID] = loc
}

// Items devuelve el adaptador de catálogo.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Locations devuelve el adaptador de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Levels devuelve el adaptador de niveles fuera de transacción (lecturas).
func (s *Store) Levels() *LevelRepo { return &LevelRepo{s: s} }

// Movements devuelve el adaptador del log fuera de transacción (lecturas).
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// StockQuery devuelve el adaptador de consultas de stock.
func (s *Store) StockQuery() *StockQueryRepo { return &StockQueryRepo{s: s} }

// MovementCount número de movimientos confirmados.
func (s *Store) MovementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}

func (s *Store) acquire(ctx context.Context, key pairKey) error {
	s.keyMu.Lock()
	ch, ok := s.keyLocks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.keyLocks[key] = ch
	}
	s.keyMu.Unlock()

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: lock_timeout en %s/%s", repository.ErrSerialization, key.itemID, key.locationID)
	}
}

func (s *Store) release(key pairKey) {
	s.keyMu.Lock()
	ch := s.keyLocks[key]
	s.keyMu.Unlock()
	<-ch
}

func (s *Store) level(key pairKey) entity.StockLevel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.levels[key]; ok {
		return l
	}
	return entity.StockLevel{ItemID: key.itemID, LocationID: key.locationID}
}

// appendLocked agrega el movimiento asignando ID. Requiere s.mu tomado en escritura.
func (s *Store) appendLocked(m *entity.Movement) {
	s.nextID++
	m.ID = s.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	s.movements = append(s.movements, *m)
}
