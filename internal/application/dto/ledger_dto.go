package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustRequest body para POST /api/ledger/adjustments.
type AdjustRequest struct {
	ItemID        string `json:"item_id" validate:"required"`
	LocationID    string `json:"location_id" validate:"required"`
	Delta         int64  `json:"delta"`
	Type          string `json:"type" validate:"required,oneof=purchase sale return correction initial"`
	Reason        string `json:"reason,omitempty" validate:"max=255"`
	ReferenceID   string `json:"reference_id,omitempty" validate:"max=100"`
	AllowNegative bool   `json:"allow_negative,omitempty"`
}

// TransferRequest body para POST /api/ledger/transfers.
type TransferRequest struct {
	ItemID         string `json:"item_id" validate:"required"`
	FromLocationID string `json:"from_location_id" validate:"required"`
	ToLocationID   string `json:"to_location_id" validate:"required"`
	Quantity       int64  `json:"quantity"`
	Reason         string `json:"reason,omitempty" validate:"max=255"`
}

// SetAbsoluteRequest body para POST /api/ledger/counts (conteo físico).
type SetAbsoluteRequest struct {
	ItemID      string `json:"item_id" validate:"required"`
	LocationID  string `json:"location_id" validate:"required"`
	NewQuantity *int64 `json:"new_quantity" validate:"required"`
	Reason      string `json:"reason" validate:"required,max=255"`
}

// MovementResponse representación de un movimiento del libro.
type MovementResponse struct {
	ID             int64     `json:"id"`
	ItemID         string    `json:"item_id"`
	LocationID     string    `json:"location_id"`
	Delta          int64     `json:"delta"`
	QuantityBefore int64     `json:"quantity_before"`
	QuantityAfter  int64     `json:"quantity_after"`
	Type           string    `json:"type"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        string    `json:"actor_id"`
	ReferenceID    string    `json:"reference_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TransferResponse las dos patas de un traslado.
type TransferResponse struct {
	ReferenceID string           `json:"reference_id"`
	Out         MovementResponse `json:"out"`
	In          MovementResponse `json:"in"`
}

// StockQuantityResponse respuesta de GET /api/ledger/stock/:item_id/:location_id.
type StockQuantityResponse struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Quantity   int64  `json:"quantity"`
}

// ConsistencyReport compara la cantidad cacheada con el fold del historial.
type ConsistencyReport struct {
	ItemID         string `json:"item_id"`
	LocationID     string `json:"location_id"`
	Quantity       int64  `json:"quantity"`        // valor en stock_levels
	FoldedQuantity int64  `json:"folded_quantity"` // Σ delta del historial
	Movements      int    `json:"movements"`
	Consistent     bool   `json:"consistent"`
	Error          string `json:"error,omitempty"`
}

// StockStatusRow fila de GET /api/ledger/status.
type StockStatusRow struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Quantity     int64  `json:"quantity"`
	MinQuantity  int64  `json:"min_quantity"`
	Status       string `json:"status"`
}

// MovementQuery filtros + paginación de GET /api/ledger/movements.
type MovementQuery struct {
	ItemID     string
	LocationID string
	Type       string
	ActorID    string
	DateFrom   *time.Time
	DateTo     *time.Time
	PageRequest
}

// MovementPage página de movimientos.
type MovementPage struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementTotalsDTO agregados para conciliación ("total entradas" vs "total salidas").
type MovementTotalsDTO struct {
	TotalIn     int64            `json:"total_in"`
	TotalOut    int64            `json:"total_out"`
	Net         int64            `json:"net"`
	Count       int64            `json:"count"`
	CountByType map[string]int64 `json:"count_by_type"`
}

// StatisticsDTO respuesta de GET /api/ledger/statistics.
type StatisticsDTO struct {
	LocationID       string          `json:"location_id,omitempty"` // vacío = todas las ubicaciones
	TotalItems       int64           `json:"total_items"`
	TotalQuantity    int64           `json:"total_quantity"`
	LowStockCount    int64           `json:"low_stock_count"`
	OutOfStockCount  int64           `json:"out_of_stock_count"`
	TotalCostValue   decimal.Decimal `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal `json:"total_retail_value"`
}
