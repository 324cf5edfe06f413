package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/pos-ledger/internal/application/audit"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

func TestDiff_CamposCambiados(t *testing.T) {
	before := map[string]any{"status": "DRAFT", "total": "100", "notes": ""}
	after := map[string]any{"status": "COMPLETED", "total": "100", "notes": ""}
	assert.Equal(t, []string{"status"}, audit.Diff(before, after))
}

// Diferencia simétrica: campos presentes en solo uno de los dos lados también
// cuentan como cambio, y el resultado sale ordenado.
func TestDiff_CamposAgregadosYRemovidos(t *testing.T) {
	before := map[string]any{"a": 1, "b": 2}
	after := map[string]any{"b": 3, "c": 4}
	assert.Equal(t, []string{"a", "b", "c"}, audit.Diff(before, after))
}

func TestDiff_SinCambios(t *testing.T) {
	m := map[string]any{"status": "OPEN", "amount": "5000"}
	assert.Empty(t, audit.Diff(m, m))
}

func TestDiff_InsertDesdeNil(t *testing.T) {
	after := map[string]any{"status": "DRAFT", "total": "100"}
	assert.Equal(t, []string{"status", "total"}, audit.Diff(nil, after))
}

// captureRepo acumula los registros creados, para verificar qué persiste el
// interceptor.
type captureRepo struct {
	records []*entity.AuditRecord
}

func (c *captureRepo) Create(_ context.Context, record *entity.AuditRecord) error {
	c.records = append(c.records, record)
	return nil
}

func (c *captureRepo) ListByRecord(_ context.Context, _, _ string, _, _ int) ([]*entity.AuditRecord, error) {
	return c.records, nil
}

func TestRecord_UpdateSinCambiosNoRegistra(t *testing.T) {
	repo := &captureRepo{}
	rec := audit.NewRecorder()
	snap := map[string]any{"status": "OPEN"}

	err := rec.Record(context.Background(), repo, "cash_sessions", "s1", entity.AuditActionUpdate, snap, snap, "actor")
	require.NoError(t, err)
	assert.Empty(t, repo.records, "un UPDATE sin diff no debe generar registro")
}

func TestRecord_PersisteConChangedFields(t *testing.T) {
	repo := &captureRepo{}
	rec := audit.NewRecorder()

	before := map[string]any{"status": "OPEN", "cash_sales": "0"}
	after := map[string]any{"status": "OPEN", "cash_sales": "55000"}
	err := rec.Record(context.Background(), repo, "cash_sessions", "s1", entity.AuditActionUpdate, before, after, "actor")
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	got := repo.records[0]
	assert.Equal(t, "cash_sessions", got.TableName)
	assert.Equal(t, "s1", got.RecordID)
	assert.Equal(t, entity.AuditActionUpdate, got.Action)
	assert.Equal(t, []string{"cash_sales"}, got.ChangedFields)
	assert.Equal(t, "actor", got.ActorID)
	assert.NotEmpty(t, got.ID)
}
