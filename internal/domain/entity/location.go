package entity

import "time"

// Location representa una bodega, sucursal o punto de venta donde se guarda stock.
type Location struct {
	ID        string
	Name      string
	Address   string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
