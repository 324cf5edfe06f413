package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
// Una sucursal puede vender contra cualquier bodega; el stock siempre se
// descuenta de la bodega indicada en la transacción.
type Warehouse struct {
	ID        string
	BranchID  string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
