package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// EvaluateStatus deriva el estado de stock a partir de la cantidad y el umbral mínimo (servicio de dominio).
//
//	cantidad <= 0            → OutOfStock
//	0 < cantidad <= mínimo   → LowStock
//	en otro caso             → InStock
//
// Una cantidad negativa solo es posible tras una corrección administrativa y se trata como agotado.
func EvaluateStatus(quantity, minQuantity int64) entity.StockStatus {
	switch {
	case quantity <= 0:
		return entity.StockStatusOutOfStock
	case quantity <= minQuantity:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}
