package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// MovementQueryUseCase consultas sobre el log de movimientos (auditoría y conciliación).
type MovementQueryUseCase struct {
	movementRepo repository.MovementRepository
}

// NewMovementQueryUseCase construye el caso de uso.
func NewMovementQueryUseCase(movementRepo repository.MovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movementRepo: movementRepo}
}

// ListMovements devuelve una página de movimientos filtrados, más recientes primero.
func (uc *MovementQueryUseCase) ListMovements(ctx context.Context, q dto.MovementQuery) (*dto.MovementPage, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	q.DefaultPage()

	list, total, err := uc.movementRepo.List(ctx, filter, q.PageSize, q.Offset())
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return &dto.MovementPage{
		Items: items,
		Page:  dto.PageResponse{Page: q.Page, PageSize: q.PageSize, Total: total},
	}, nil
}

// Totals devuelve entradas, salidas y conteo por tipo para el mismo conjunto de filtros.
func (uc *MovementQueryUseCase) Totals(ctx context.Context, q dto.MovementQuery) (*dto.MovementTotalsDTO, error) {
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	totals, err := uc.movementRepo.Totals(ctx, filter)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]int64, len(totals.CountByType))
	for t, n := range totals.CountByType {
		byType[string(t)] = n
	}
	return &dto.MovementTotalsDTO{
		TotalIn:     totals.TotalIn,
		TotalOut:    totals.TotalOut,
		Net:         totals.TotalIn - totals.TotalOut,
		Count:       totals.Count,
		CountByType: byType,
	}, nil
}

// ListByReference devuelve los movimientos que comparten un reference id (las dos patas de un traslado).
func (uc *MovementQueryUseCase) ListByReference(ctx context.Context, referenceID string) ([]dto.MovementResponse, error) {
	if referenceID == "" {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.movementRepo.ListByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	return items, nil
}

func toFilter(q dto.MovementQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ItemID:     q.ItemID,
		LocationID: q.LocationID,
		ActorID:    q.ActorID,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.Type != "" {
		t := entity.MovementType(q.Type)
		if !t.IsValid() {
			return f, domain.ErrInvalidMovementType
		}
		f.Type = t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, domain.ErrInvalidInput
	}
	return f, nil
}

// ToMovementResponse convierte la entidad en su representación de respuesta.
func ToMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		ItemID:         m.ItemID,
		LocationID:     m.LocationID,
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Type:           string(m.Type),
		Reason:         m.Reason,
		ActorID:        m.ActorID,
		ReferenceID:    m.ReferenceID,
		CreatedAt:      m.CreatedAt,
	}
}
