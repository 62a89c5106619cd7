package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del catálogo. El libro de stock solo lo lee.
type Item struct {
	ID          string
	SKU         string
	Name        string
	UnitCost    decimal.Decimal // costo unitario
	UnitPrice   decimal.Decimal // precio de venta
	MinQuantity int64           // umbral de stock bajo
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
