package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

// HeaderIdempotencyKey header opcional para que un reenvío no aplique dos veces el mismo movimiento.
const HeaderIdempotencyKey = "Idempotency-Key"

// LedgerHandler maneja las mutaciones del libro de stock (protegido).
type LedgerHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(ledger *inventory.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Adjust godoc
// @Summary      Registrar ajuste de stock
// @Description  Compra, venta, devolución, corrección o carga inicial. allow_negative solo para admin.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string             false  "clave de idempotencia"
// @Param        body             body    dto.AdjustRequest  true   "item_id, location_id, delta con signo, type"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/adjustments [post]
func (h *LedgerHandler) Adjust(c *fiber.Ctx) error {
	var req dto.AdjustRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if req.AllowNegative && GetRole(c) != jwt.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "allow_negative requiere rol admin"})
	}
	mov, err := h.ledger.Adjust(c.Context(), inventory.AdjustInput{
		ItemID:         req.ItemID,
		LocationID:     req.LocationID,
		Delta:          req.Delta,
		Type:           entity.MovementType(req.Type),
		Reason:         req.Reason,
		ActorID:        GetUserID(c),
		ReferenceID:    req.ReferenceID,
		AllowNegative:  req.AllowNegative,
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Dos movimientos (transfer-out / transfer-in) con el mismo reference_id, en una sola transacción.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "clave de idempotencia"
// @Param        body             body    dto.TransferRequest  true   "item_id, from_location_id, to_location_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/transfers [post]
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var req dto.TransferRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	out, in, err := h.ledger.Transfer(c.Context(), inventory.TransferInput{
		ItemID:         req.ItemID,
		FromLocationID: req.FromLocationID,
		ToLocationID:   req.ToLocationID,
		Quantity:       req.Quantity,
		ActorID:        GetUserID(c),
		Reason:         req.Reason,
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		ReferenceID: out.ReferenceID,
		Out:         inventory.ToMovementResponse(out),
		In:          inventory.ToMovementResponse(in),
	})
}

// SetAbsolute godoc
// @Summary      Aplicar conteo físico
// @Description  Fija la cantidad al valor contado registrando una corrección por la diferencia. reason obligatorio.
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                  false  "clave de idempotencia"
// @Param        body             body    dto.SetAbsoluteRequest  true   "item_id, location_id, new_quantity, reason"
// @Success      201  {object}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ledger/counts [post]
func (h *LedgerHandler) SetAbsolute(c *fiber.Ctx) error {
	var req dto.SetAbsoluteRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	mov, err := h.ledger.SetAbsolute(c.Context(), inventory.SetAbsoluteInput{
		ItemID:         req.ItemID,
		LocationID:     req.LocationID,
		NewQuantity:    *req.NewQuantity,
		Reason:         req.Reason,
		ActorID:        GetUserID(c),
		IdempotencyKey: c.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(mov))
}

// GetQuantity godoc
// @Summary      Cantidad actual de un artículo en una ubicación
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "artículo"
// @Param        location_id  path  string  true  "ubicación"
// @Success      200  {object}  dto.StockQuantityResponse
// @Router       /api/ledger/stock/{item_id}/{location_id} [get]
func (h *LedgerHandler) GetQuantity(c *fiber.Ctx) error {
	itemID, locationID := c.Params("item_id"), c.Params("location_id")
	qty, err := h.ledger.CurrentQuantity(c.Context(), itemID, locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockQuantityResponse{ItemID: itemID, LocationID: locationID, Quantity: qty})
}

// Verify godoc
// @Summary      Verificar consistencia del par contra su historial
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      path  string  true  "artículo"
// @Param        location_id  path  string  true  "ubicación"
// @Success      200  {object}  dto.ConsistencyReport
// @Router       /api/ledger/stock/{item_id}/{location_id}/verify [get]
func (h *LedgerHandler) Verify(c *fiber.Ctx) error {
	report, err := h.ledger.VerifyConsistency(c.Context(), c.Params("item_id"), c.Params("location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
