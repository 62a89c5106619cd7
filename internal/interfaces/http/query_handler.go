package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// QueryHandler consultas de solo lectura: estados, movimientos y estadísticas.
type QueryHandler struct {
	status     *inventory.StockStatusUseCase
	movements  *inventory.MovementQueryUseCase
	statistics *analytics.StatisticsUseCase
}

// NewQueryHandler construye el handler.
func NewQueryHandler(
	status *inventory.StockStatusUseCase,
	movements *inventory.MovementQueryUseCase,
	statistics *analytics.StatisticsUseCase,
) *QueryHandler {
	return &QueryHandler{status: status, movements: movements, statistics: statistics}
}

// ListByStatus godoc
// @Summary      Pares por estado de stock
// @Description  in_stock, low_stock u out_of_stock; ordenado por cantidad ascendente.
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  true   "in_stock | low_stock | out_of_stock"
// @Param        location_id  query  string  false  "filtrar por ubicación"
// @Success      200  {array}   dto.StockStatusRow
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/status [get]
func (h *QueryHandler) ListByStatus(c *fiber.Ctx) error {
	rows, err := h.status.ListByStatus(c.Context(), optionalQuery(c, "location_id"), entity.StockStatus(c.Query("status")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(rows), "items": rows})
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "artículo"
// @Param        location_id  query  string  false  "ubicación"
// @Param        type         query  string  false  "tipo de movimiento"
// @Param        actor_id     query  string  false  "actor"
// @Param        date_from    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        date_to      query  string  false  "RFC3339 o YYYY-MM-DD (inclusive)"
// @Param        page         query  int     false  "página (desde 1)"
// @Param        page_size    query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.MovementPage
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [get]
func (h *QueryHandler) ListMovements(c *fiber.Ctx) error {
	q, err := parseMovementQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	page, err := h.movements.ListMovements(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

// MovementTotals godoc
// @Summary      Totales de entradas y salidas
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        item_id      query  string  false  "artículo"
// @Param        location_id  query  string  false  "ubicación"
// @Param        date_from    query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        date_to      query  string  false  "RFC3339 o YYYY-MM-DD (inclusive)"
// @Success      200  {object}  dto.MovementTotalsDTO
// @Router       /api/ledger/movements/totals [get]
func (h *QueryHandler) MovementTotals(c *fiber.Ctx) error {
	q, err := parseMovementQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	totals, err := h.movements.Totals(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(totals)
}

// ListByReference godoc
// @Summary      Movimientos de una misma referencia (patas de un traslado)
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        reference_id  path  string  true  "reference id"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/ledger/movements/reference/{reference_id} [get]
func (h *QueryHandler) ListByReference(c *fiber.Ctx) error {
	list, err := h.movements.ListByReference(c.Context(), c.Params("reference_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}

// Statistics godoc
// @Summary      Estadísticas de inventario
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "ubicación; vacío = todas"
// @Success      200  {object}  dto.StatisticsDTO
// @Router       /api/ledger/statistics [get]
func (h *QueryHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.statistics.Statistics(c.Context(), optionalQuery(c, "location_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	return &v
}

func parseMovementQuery(c *fiber.Ctx) (dto.MovementQuery, error) {
	q := dto.MovementQuery{
		ItemID:     c.Query("item_id"),
		LocationID: c.Query("location_id"),
		Type:       c.Query("type"),
		ActorID:    c.Query("actor_id"),
		PageRequest: dto.PageRequest{
			Page:     c.QueryInt("page", 1),
			PageSize: c.QueryInt("page_size", dto.DefaultPageSize),
		},
	}
	if err := validate.Struct(q.PageRequest); err != nil {
		return q, domain.ErrInvalidInput
	}
	var err error
	if q.DateFrom, err = parseDate(c.Query("date_from"), false); err != nil {
		return q, err
	}
	if q.DateTo, err = parseDate(c.Query("date_to"), true); err != nil {
		return q, err
	}
	return q, nil
}

// parseDate acepta RFC3339 o YYYY-MM-DD. Con endOfDay, una fecha sin hora cubre el día completo.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
