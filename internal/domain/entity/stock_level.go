package entity

import "time"

// StockLevel es la cantidad actual de un artículo en una ubicación.
// Es una proyección cacheada del historial de movimientos; la ausencia de fila equivale a cantidad 0.
type StockLevel struct {
	ItemID     string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}
