package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Errores del libro de stock. Todos son recuperables por el llamador.
	ErrItemNotFound           = errors.New("artículo no encontrado o inactivo")
	ErrLocationNotFound       = errors.New("ubicación no encontrada o inactiva")
	ErrInvalidQuantity        = errors.New("cantidad inválida")
	ErrInvalidMovementType    = errors.New("tipo de movimiento inválido")
	ErrSameLocation           = errors.New("la ubicación de origen y destino es la misma")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrMissingReason          = errors.New("el motivo es obligatorio")
	ErrConcurrentModification = errors.New("modificación concurrente: reintentos agotados")
	ErrDuplicateRequest       = errors.New("solicitud duplicada")
)

// StockError acompaña un error del libro con el detalle necesario para un mensaje accionable.
// errors.Is(err, ErrInsufficientStock) sigue funcionando gracias a Unwrap.
type StockError struct {
	Err        error
	ItemID     string
	LocationID string
	Requested  int64 // delta o cantidad solicitada
	Available  int64 // cantidad disponible al momento de validar
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s (item=%s, ubicación=%s, solicitado=%d, disponible=%d)",
		e.Err.Error(), e.ItemID, e.LocationID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Err }

// NewStockError construye un StockError para el par (item, ubicación).
func NewStockError(err error, itemID, locationID string, requested, available int64) *StockError {
	return &StockError{
		Err:        err,
		ItemID:     itemID,
		LocationID: locationID,
		Requested:  requested,
		Available:  available,
	}
}
