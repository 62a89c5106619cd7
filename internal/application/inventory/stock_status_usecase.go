package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// StockStatusUseCase lista pares (artículo, ubicación) por estado de stock.
// El estado se deriva en cada consulta; nunca se lee de una columna persistida.
type StockStatusUseCase struct {
	stockQuery repository.StockQueryRepository
}

// NewStockStatusUseCase construye el caso de uso.
func NewStockStatusUseCase(stockQuery repository.StockQueryRepository) *StockStatusUseCase {
	return &StockStatusUseCase{stockQuery: stockQuery}
}

// ListByStatus devuelve los pares con el estado pedido, ordenados por cantidad ascendente
// (lo más urgente primero). locationID nil considera todas las ubicaciones.
func (uc *StockStatusUseCase) ListByStatus(
	ctx context.Context,
	locationID *string,
	status entity.StockStatus,
) ([]dto.StockStatusRow, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	views, err := uc.stockQuery.ListStock(ctx, locationID)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.StockStatusRow, 0, len(views))
	for _, v := range views {
		st := inventory.EvaluateStatus(v.Quantity, v.MinQuantity)
		if st != status {
			continue
		}
		rows = append(rows, dto.StockStatusRow{
			ItemID:       v.ItemID,
			ItemName:     v.ItemName,
			LocationID:   v.LocationID,
			LocationName: v.LocationName,
			Quantity:     v.Quantity,
			MinQuantity:  v.MinQuantity,
			Status:       string(st),
		})
	}

	// Orden estable y total: cantidad, luego artículo, luego ubicación
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		if a.ItemID != b.ItemID {
			return a.ItemID < b.ItemID
		}
		return a.LocationID < b.LocationID
	})
	return rows, nil
}
