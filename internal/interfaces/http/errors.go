package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorMapping relaciona cada error de dominio con su status y código HTTP.
var errorMapping = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "cantidad inválida"},
	{domain.ErrInvalidMovementType, fiber.StatusBadRequest, "INVALID_MOVEMENT_TYPE", "tipo de movimiento inválido"},
	{domain.ErrMissingReason, fiber.StatusBadRequest, "MISSING_REASON", "el motivo es obligatorio"},
	{domain.ErrSameLocation, fiber.StatusBadRequest, "SAME_LOCATION", "origen y destino deben ser distintos"},
	{domain.ErrItemNotFound, fiber.StatusNotFound, "ITEM_NOT_FOUND", "artículo no encontrado o inactivo"},
	{domain.ErrLocationNotFound, fiber.StatusNotFound, "LOCATION_NOT_FOUND", "ubicación no encontrada o inactiva"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrConcurrentModification, fiber.StatusConflict, "CONCURRENT_MODIFICATION", "conflicto de concurrencia, reintente"},
	{domain.ErrDuplicateRequest, fiber.StatusConflict, "DUPLICATE_REQUEST", "request ya procesado (Idempotency-Key repetida)"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autenticado"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado"},
}

// writeError traduce err a la respuesta HTTP. StockError agrega sus cantidades en details.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		resp := dto.ErrorResponse{Code: m.code, Message: m.message}
		var stockErr *domain.StockError
		if errors.As(err, &stockErr) {
			resp.Details = map[string]any{
				"item_id":     stockErr.ItemID,
				"location_id": stockErr.LocationID,
				"requested":   stockErr.Requested,
				"available":   stockErr.Available,
			}
		}
		return c.Status(m.status).JSON(resp)
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}
