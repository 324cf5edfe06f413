package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// TransactionRepository define el puerto de persistencia de transacciones,
// sus líneas y sus pagos. Las transacciones nunca se borran: la anulación
// cambia el estado y deja el registro.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	Update(ctx context.Context, tx *entity.Transaction) error
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate bloquea la fila de la transacción (anulaciones y pagos
	// concurrentes contra el mismo documento deben serializar).
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)

	CreateItem(ctx context.Context, item *entity.TransactionItem) error
	ListItems(ctx context.Context, transactionID string) ([]*entity.TransactionItem, error)

	CreatePayment(ctx context.Context, payment *entity.Payment) error
	ListPayments(ctx context.Context, transactionID string) ([]*entity.Payment, error)
}
