package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implementación del registro de auditoría sobre PostgreSQL
// (usable con pool o tx). Las instantáneas van en columnas JSONB; pgx
// serializa los mapas directamente.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Create persiste un registro de auditoría (append-only).
func (r *AuditRepo) Create(ctx context.Context, record *entity.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO audit_records (id, table_name, record_id, action, before, after, changed_fields, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		record.ID, record.TableName, record.RecordID, record.Action,
		record.Before, record.After, record.ChangedFields,
		nullable(record.ActorID), record.CreatedAt,
	)
	if err != nil {
		return translateErr(fmt.Errorf("create audit record: %w", err))
	}
	return nil
}

// ListByRecord lista la historia de auditoría de un registro, del más
// reciente al más antiguo.
func (r *AuditRepo) ListByRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*entity.AuditRecord, error) {
	query := `
		SELECT id, table_name, record_id, action, before, after, changed_fields, actor_id, created_at
		FROM audit_records
		WHERE table_name = $1 AND record_id = $2
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, tableName, recordID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		var actorID *string
		if err := rows.Scan(
			&rec.ID, &rec.TableName, &rec.RecordID, &rec.Action,
			&rec.Before, &rec.After, &rec.ChangedFields, &actorID, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.ActorID = deref(actorID)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
