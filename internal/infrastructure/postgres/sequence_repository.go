package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo genera consecutivos de documentos por (sucursal, tipo, día)
// sobre PostgreSQL. Debe usarse dentro de la transacción del documento: la
// sección crítica es un advisory lock transaccional sobre la llave, así el
// número reservado se libera con el rollback y nunca se duplica en commit.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el generador. Pasar la tx del documento.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next reserva y devuelve el siguiente consecutivo formateado. Serializa
// llamadores concurrentes de la misma llave con pg_advisory_xact_lock y toma
// max+1 de los números ya confirmados o reservados en document_numbers.
// Los huecos por transacciones abortadas son aceptables; los duplicados no.
func (r *SequenceRepo) Next(ctx context.Context, branchID, branchCode, documentKind string, date time.Time) (string, error) {
	day := date.Format("060102")
	lockKey := fmt.Sprintf("docseq:%s:%s:%s", branchID, documentKind, day)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return "", translateErr(fmt.Errorf("lock document sequence: %w", err))
	}

	var seq int
	query := `
		SELECT COALESCE(MAX(seq), 0) + 1
		FROM document_numbers
		WHERE branch_id = $1 AND document_kind = $2 AND day = $3`
	if err := r.q.QueryRow(ctx, query, branchID, documentKind, day).Scan(&seq); err != nil {
		return "", translateErr(fmt.Errorf("next document sequence: %w", err))
	}

	insert := `
		INSERT INTO document_numbers (branch_id, document_kind, day, seq)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.q.Exec(ctx, insert, branchID, documentKind, day, seq); err != nil {
		return "", translateErr(fmt.Errorf("reserve document number: %w", err))
	}
	return ledger.FormatDocumentNumber(branchCode, documentKind, date, seq), nil
}
