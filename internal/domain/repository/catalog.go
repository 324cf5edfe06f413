package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// CatalogProvider es el puerto de solo lectura hacia el catálogo (colaborador
// externo al núcleo). Se consulta una vez por línea de venta.
type CatalogProvider interface {
	GetItem(ctx context.Context, itemID, variantID string) (*entity.ItemRef, error)
}

// CustomerProvider es el puerto opcional de consulta de clientes; el núcleo
// nunca los muta.
type CustomerProvider interface {
	GetCustomer(ctx context.Context, id string) (*entity.CustomerRef, error)
}

// BranchRepository consulta sucursales, cajas y bodegas para validación de
// referencias en los documentos.
type BranchRepository interface {
	GetBranch(ctx context.Context, id string) (*entity.Branch, error)
	GetRegister(ctx context.Context, id string) (*entity.Register, error)
	GetWarehouse(ctx context.Context, id string) (*entity.Warehouse, error)
}
