package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LedgerConfig parámetros de reintento e idempotencia del libro.
type LedgerConfig struct {
	MaxRetries     int           // intentos totales ante conflicto de concurrencia
	RetryBackoff   time.Duration // espera base entre intentos (lineal)
	IdempotencyTTL time.Duration
}

// DefaultLedgerConfig valores por defecto.
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		MaxRetries:     5,
		RetryBackoff:   10 * time.Millisecond,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// LedgerOption configura opciones de LedgerUseCase.
type LedgerOption func(*LedgerUseCase)

// WithClock sustituye el reloj usado para fechar niveles y movimientos.
func WithClock(now func() time.Time) LedgerOption {
	return func(uc *LedgerUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// LedgerUseCase es el núcleo del libro de stock: ajustes, traslados y conteos físicos.
// Cada mutación lee, valida y escribe StockLevel + Movement en una sola transacción,
// con el par (artículo, ubicación) bloqueado mientras dura.
type LedgerUseCase struct {
	txRunner     TxRunner
	itemRepo     repository.ItemRepository
	locationRepo repository.LocationRepository
	levelRepo    repository.StockLevelRepository
	movementRepo repository.MovementRepository
	idempotency  repository.IdempotencyStore // opcional
	cfg          LedgerConfig
	log          zerolog.Logger
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso. idempotency puede ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	locationRepo repository.LocationRepository,
	levelRepo repository.StockLevelRepository,
	movementRepo repository.MovementRepository,
	idempotency repository.IdempotencyStore,
	cfg LedgerConfig,
	log zerolog.Logger,
	opts ...LedgerOption,
) *LedgerUseCase {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	uc := &LedgerUseCase{
		txRunner:     txRunner,
		itemRepo:     itemRepo,
		locationRepo: locationRepo,
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		idempotency:  idempotency,
		cfg:          cfg,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// AdjustInput entrada de Adjust. Delta con signo y distinto de cero.
type AdjustInput struct {
	ItemID         string
	LocationID     string
	Delta          int64
	Type           entity.MovementType
	Reason         string
	ActorID        string
	ReferenceID    string // venta/compra origen (opcional)
	AllowNegative  bool   // solo correcciones administrativas
	IdempotencyKey string
}

// TransferInput entrada de Transfer. Quantity > 0.
type TransferInput struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	Quantity       int64
	ActorID        string
	Reason         string
	IdempotencyKey string
}

// SetAbsoluteInput entrada de SetAbsolute (conciliación contra conteo físico).
type SetAbsoluteInput struct {
	ItemID         string
	LocationID     string
	NewQuantity    int64
	Reason         string
	ActorID        string
	IdempotencyKey string
}

// movementLeg describe una pata a aplicar dentro de una transacción ya abierta.
type movementLeg struct {
	itemID        string
	locationID    string
	delta         int64
	typ           entity.MovementType
	reason        string
	actorID       string
	referenceID   string
	allowNegative bool
}

// Adjust aplica un delta a (artículo, ubicación) y registra el movimiento.
// Si la cantidad resultante fuese negativa y AllowNegative es false, falla con ErrInsufficientStock
// sin escribir nada.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput) (*entity.Movement, error) {
	if in.ItemID == "" || in.LocationID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Delta == 0 {
		return nil, domain.NewStockError(domain.ErrInvalidQuantity, in.ItemID, in.LocationID, in.Delta, 0)
	}
	if !in.Type.IsValid() || in.Type.IsTransfer() {
		return nil, domain.ErrInvalidMovementType
	}
	if in.Type == entity.MovementTypeCorrection && strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrMissingReason
	}
	if err := uc.checkItem(ctx, in.ItemID); err != nil {
		return nil, err
	}
	if err := uc.checkLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}

	leg := movementLeg{
		itemID:        in.ItemID,
		locationID:    in.LocationID,
		delta:         in.Delta,
		typ:           in.Type,
		reason:        strings.TrimSpace(in.Reason),
		actorID:       in.ActorID,
		referenceID:   in.ReferenceID,
		allowNegative: in.AllowNegative,
	}

	var result *entity.Movement
	err := uc.idempotent(ctx, "adjust", in.ActorID, in.IdempotencyKey, func() error {
		return uc.withRetry(ctx, "adjust", func() error {
			return uc.txRunner.Run(ctx, func(
				levelRepo repository.StockLevelRepository,
				movRepo repository.MovementRepository,
			) error {
				mov, err := applyMovement(ctx, levelRepo, movRepo, leg, uc.now)
				if err != nil {
					return err
				}
				result = mov
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("movement_id", result.ID).
		Str("item_id", result.ItemID).
		Str("location_id", result.LocationID).
		Int64("delta", result.Delta).
		Int64("quantity_after", result.QuantityAfter).
		Str("type", result.Type.String()).
		Str("actor_id", result.ActorID).
		Msg("movimiento registrado")
	return result, nil
}

// Transfer mueve quantity unidades de una ubicación a otra en una sola transacción.
// Produce dos movimientos (transfer-out y transfer-in) con el mismo ReferenceID; la cantidad total
// del artículo en el sistema no cambia. Si alguna pata falla no se confirma ninguna.
func (uc *LedgerUseCase) Transfer(ctx context.Context, in TransferInput) (*entity.Movement, *entity.Movement, error) {
	if in.ItemID == "" || in.FromLocationID == "" || in.ToLocationID == "" || in.ActorID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return nil, nil, domain.NewStockError(domain.ErrInvalidQuantity, in.ItemID, in.FromLocationID, in.Quantity, 0)
	}
	if in.FromLocationID == in.ToLocationID {
		return nil, nil, domain.ErrSameLocation
	}
	if err := uc.checkItem(ctx, in.ItemID); err != nil {
		return nil, nil, err
	}
	if err := uc.checkLocation(ctx, in.FromLocationID); err != nil {
		return nil, nil, err
	}
	if err := uc.checkLocation(ctx, in.ToLocationID); err != nil {
		return nil, nil, err
	}

	referenceID := uuid.New().String()
	reason := strings.TrimSpace(in.Reason)

	var outMov, inMov *entity.Movement
	err := uc.idempotent(ctx, "transfer", in.ActorID, in.IdempotencyKey, func() error {
		return uc.withRetry(ctx, "transfer", func() error {
			return uc.txRunner.Run(ctx, func(
				levelRepo repository.StockLevelRepository,
				movRepo repository.MovementRepository,
			) error {
				// Bloquea ambos pares en orden de ubicación para que dos traslados cruzados no se bloqueen mutuamente
				pairs := []string{in.FromLocationID, in.ToLocationID}
				if pairs[1] < pairs[0] {
					pairs[0], pairs[1] = pairs[1], pairs[0]
				}
				var source *entity.StockLevel
				for _, locationID := range pairs {
					level, err := levelRepo.GetForUpdate(ctx, in.ItemID, locationID)
					if err != nil {
						return err
					}
					if locationID == in.FromLocationID {
						source = level
					}
				}
				if source.Quantity < in.Quantity {
					return domain.NewStockError(domain.ErrInsufficientStock, in.ItemID, in.FromLocationID, in.Quantity, source.Quantity)
				}

				// Ambas patas comparten la fecha, tomada con los dos pares ya bloqueados
				now := uc.now()
				stamp := func() time.Time { return now }
				out, err := applyMovement(ctx, levelRepo, movRepo, movementLeg{
					itemID:      in.ItemID,
					locationID:  in.FromLocationID,
					delta:       -in.Quantity,
					typ:         entity.MovementTypeTransferOut,
					reason:      reason,
					actorID:     in.ActorID,
					referenceID: referenceID,
				}, stamp)
				if err != nil {
					return err
				}
				dest, err := applyMovement(ctx, levelRepo, movRepo, movementLeg{
					itemID:      in.ItemID,
					locationID:  in.ToLocationID,
					delta:       in.Quantity,
					typ:         entity.MovementTypeTransferIn,
					reason:      reason,
					actorID:     in.ActorID,
					referenceID: referenceID,
				}, stamp)
				if err != nil {
					return err
				}
				outMov, inMov = out, dest
				return nil
			})
		})
	})
	if err != nil {
		return nil, nil, err
	}

	uc.log.Info().
		Str("reference_id", referenceID).
		Str("item_id", in.ItemID).
		Str("from_location_id", in.FromLocationID).
		Str("to_location_id", in.ToLocationID).
		Int64("quantity", in.Quantity).
		Str("actor_id", in.ActorID).
		Msg("traslado registrado")
	return outMov, inMov, nil
}

// SetAbsolute fija la cantidad de (artículo, ubicación) a NewQuantity registrando una corrección
// por la diferencia. El delta se calcula con el par bloqueado, no con una lectura previa.
// El motivo es obligatorio: es la única operación que puede ocultar pérdidas o hallazgos.
func (uc *LedgerUseCase) SetAbsolute(ctx context.Context, in SetAbsoluteInput) (*entity.Movement, error) {
	if in.ItemID == "" || in.LocationID == "" || in.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}
	if in.NewQuantity < 0 {
		return nil, domain.NewStockError(domain.ErrInvalidQuantity, in.ItemID, in.LocationID, in.NewQuantity, 0)
	}
	if err := uc.checkItem(ctx, in.ItemID); err != nil {
		return nil, err
	}
	if err := uc.checkLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}

	var result *entity.Movement
	err := uc.idempotent(ctx, "set-absolute", in.ActorID, in.IdempotencyKey, func() error {
		return uc.withRetry(ctx, "set-absolute", func() error {
			return uc.txRunner.Run(ctx, func(
				levelRepo repository.StockLevelRepository,
				movRepo repository.MovementRepository,
			) error {
				current, err := levelRepo.GetForUpdate(ctx, in.ItemID, in.LocationID)
				if err != nil {
					return err
				}
				delta := in.NewQuantity - current.Quantity
				if delta == 0 {
					// Sin diferencia no hay movimiento que registrar
					return domain.NewStockError(domain.ErrInvalidQuantity, in.ItemID, in.LocationID, in.NewQuantity, current.Quantity)
				}
				mov, err := applyMovement(ctx, levelRepo, movRepo, movementLeg{
					itemID:     in.ItemID,
					locationID: in.LocationID,
					delta:      delta,
					typ:        entity.MovementTypeCorrection,
					reason:     reason,
					actorID:    in.ActorID,
				}, uc.now)
				if err != nil {
					return err
				}
				result = mov
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("movement_id", result.ID).
		Str("item_id", result.ItemID).
		Str("location_id", result.LocationID).
		Int64("quantity_before", result.QuantityBefore).
		Int64("quantity_after", result.QuantityAfter).
		Str("actor_id", result.ActorID).
		Str("reason", result.Reason).
		Msg("conteo físico aplicado")
	return result, nil
}

// CurrentQuantity devuelve la cantidad actual (0 si el par nunca tuvo movimientos).
func (uc *LedgerUseCase) CurrentQuantity(ctx context.Context, itemID, locationID string) (int64, error) {
	if itemID == "" || locationID == "" {
		return 0, domain.ErrInvalidInput
	}
	level, err := uc.levelRepo.Get(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// VerifyConsistency compara la cantidad cacheada del par con el fold de su historial.
// Se ejecuta con el par bloqueado para no comparar contra una escritura a medias.
func (uc *LedgerUseCase) VerifyConsistency(ctx context.Context, itemID, locationID string) (*dto.ConsistencyReport, error) {
	if itemID == "" || locationID == "" {
		return nil, domain.ErrInvalidInput
	}
	report := &dto.ConsistencyReport{ItemID: itemID, LocationID: locationID}
	err := uc.withRetry(ctx, "verify", func() error {
		return uc.txRunner.Run(ctx, func(
			levelRepo repository.StockLevelRepository,
			movRepo repository.MovementRepository,
		) error {
			level, err := levelRepo.GetForUpdate(ctx, itemID, locationID)
			if err != nil {
				return err
			}
			history, err := movRepo.History(ctx, itemID, locationID)
			if err != nil {
				return err
			}
			report.Quantity = level.Quantity
			report.Movements = len(history)
			folded, foldErr := inventory.FoldMovements(history)
			report.FoldedQuantity = folded
			report.Consistent = foldErr == nil && folded == level.Quantity
			if foldErr != nil {
				report.Error = foldErr.Error()
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		uc.log.Error().
			Str("item_id", itemID).
			Str("location_id", locationID).
			Int64("quantity", report.Quantity).
			Int64("folded_quantity", report.FoldedQuantity).
			Str("detail", report.Error).
			Msg("libro inconsistente")
	}
	return report, nil
}

// applyMovement bloquea el par, valida la cantidad resultante, actualiza StockLevel y agrega el Movement.
// Debe llamarse dentro de TxRunner.Run. El reloj se lee con el par ya bloqueado: así el orden por fecha
// del historial coincide con el orden en que se encadenan before/after.
func applyMovement(
	ctx context.Context,
	levelRepo repository.StockLevelRepository,
	movRepo repository.MovementRepository,
	leg movementLeg,
	clock func() time.Time,
) (*entity.Movement, error) {
	level, err := levelRepo.GetForUpdate(ctx, leg.itemID, leg.locationID)
	if err != nil {
		return nil, err
	}
	now := clock()
	before := level.Quantity
	after := before + leg.delta
	if after < 0 && !leg.allowNegative {
		return nil, domain.NewStockError(domain.ErrInsufficientStock, leg.itemID, leg.locationID, -leg.delta, before)
	}

	level.Quantity = after
	level.UpdatedAt = now
	if err := levelRepo.Upsert(ctx, level); err != nil {
		return nil, err
	}

	mov := &entity.Movement{
		ItemID:         leg.itemID,
		LocationID:     leg.locationID,
		Delta:          leg.delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Type:           leg.typ,
		Reason:         leg.reason,
		ActorID:        leg.actorID,
		ReferenceID:    leg.referenceID,
		CreatedAt:      now,
	}
	if err := movRepo.Append(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (uc *LedgerUseCase) checkItem(ctx context.Context, itemID string) error {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("leer artículo: %w", err)
	}
	if item == nil || !item.Active {
		return domain.ErrItemNotFound
	}
	return nil
}

func (uc *LedgerUseCase) checkLocation(ctx context.Context, locationID string) error {
	loc, err := uc.locationRepo.GetByID(ctx, locationID)
	if err != nil {
		return fmt.Errorf("leer ubicación: %w", err)
	}
	if loc == nil || !loc.Active {
		return domain.ErrLocationNotFound
	}
	return nil
}

// withRetry reintenta fn mientras el almacenamiento reporte conflicto de concurrencia.
// Al agotar MaxRetries devuelve ErrConcurrentModification.
func (uc *LedgerUseCase) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.cfg.MaxRetries; attempt++ {
		err = fn()
		if !errors.Is(err, repository.ErrSerialization) {
			return err
		}
		uc.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		if attempt == uc.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(uc.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	uc.log.Warn().Err(err).Str("op", op).Int("attempts", uc.cfg.MaxRetries).Msg("reintentos agotados")
	return fmt.Errorf("%w: %v", domain.ErrConcurrentModification, err)
}

// idempotent reserva la clave antes de ejecutar fn y la libera si fn falla.
// La clave se acota por operación y actor: dos usuarios pueden repetir el mismo valor sin chocar.
func (uc *LedgerUseCase) idempotent(ctx context.Context, op, actorID, key string, fn func() error) error {
	if key == "" || uc.idempotency == nil {
		return fn()
	}
	fullKey := idempotencyKey(op, actorID, key)
	fresh, err := uc.idempotency.MarkProcessed(ctx, fullKey, uc.cfg.IdempotencyTTL)
	if err != nil {
		return fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	if !fresh {
		return domain.ErrDuplicateRequest
	}
	if err := fn(); err != nil {
		if relErr := uc.idempotency.Release(ctx, fullKey); relErr != nil {
			uc.log.Warn().Err(relErr).Str("key", fullKey).Msg("no se pudo liberar la clave de idempotencia")
		}
		return err
	}
	return nil
}

func idempotencyKey(op, actorID, key string) string {
	return op + ":" + actorID + ":" + key
}
