package repository

import (
	"context"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

// AuditRepository define el puerto de persistencia del registro de auditoría
// (append-only).
type AuditRepository interface {
	Create(ctx context.Context, record *entity.AuditRecord) error
	ListByRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*entity.AuditRecord, error)
}
