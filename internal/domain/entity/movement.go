package entity

import "time"

// MovementType tipo de movimiento del libro de stock.
type MovementType string

const (
	MovementTypePurchase    MovementType = "purchase"     // recepción de compra
	MovementTypeSale        MovementType = "sale"         // venta
	MovementTypeReturn      MovementType = "return"       // devolución
	MovementTypeCorrection  MovementType = "correction"   // ajuste por conteo físico
	MovementTypeTransferOut MovementType = "transfer-out" // salida por traslado
	MovementTypeTransferIn  MovementType = "transfer-in"  // entrada por traslado
	MovementTypeInitial     MovementType = "initial"      // carga inicial
)

// IsValid indica si el tipo es uno de los tipos enumerados.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase,
		MovementTypeSale,
		MovementTypeReturn,
		MovementTypeCorrection,
		MovementTypeTransferOut,
		MovementTypeTransferIn,
		MovementTypeInitial:
		return true
	}
	return false
}

// IsTransfer indica si el tipo solo puede producirlo un traslado.
func (t MovementType) IsTransfer() bool {
	return t == MovementTypeTransferOut || t == MovementTypeTransferIn
}

func (t MovementType) String() string { return string(t) }

// Movement es un registro inmutable de un cambio de cantidad.
// Invariante: QuantityAfter = QuantityBefore + Delta.
type Movement struct {
	ID             int64
	ItemID         string
	LocationID     string
	Delta          int64 // positivo entrada, negativo salida; nunca 0
	QuantityBefore int64
	QuantityAfter  int64
	Type           MovementType
	Reason         string
	ActorID        string
	ReferenceID    string // une las dos patas de un traslado o apunta a la venta/compra origen
	CreatedAt      time.Time
}
