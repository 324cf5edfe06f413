// Package audit implementa el registro de auditoría como interceptor
// explícito de aplicación: cada operación de escritura lo invoca de forma
// síncrona dentro de su propia transacción, en lugar de depender de triggers
// implícitos en la base. Así el flujo de control queda visible y testeable.
package audit

import (
	"context"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
	"github.com/tu-usuario/pos-ledger/internal/domain/repository"
)

// Recorder escribe registros de auditoría append-only.
type Recorder struct{}

// NewRecorder construye el interceptor de auditoría.
func NewRecorder() *Recorder { return &Recorder{} }

// Record calcula el conjunto de campos cambiados (diferencia simétrica entre
// before y after) y persiste el registro usando el repositorio atado a la
// transacción del caller. Un UPDATE sin campos cambiados no registra nada.
func (rec *Recorder) Record(
	ctx context.Context,
	repo repository.AuditRepository,
	tableName, recordID, action string,
	before, after map[string]any,
	actorID string,
) error {
	changed := Diff(before, after)
	if action == entity.AuditActionUpdate && len(changed) == 0 {
		return nil
	}
	record := &entity.AuditRecord{
		ID:            uuid.New().String(),
		TableName:     tableName,
		RecordID:      recordID,
		Action:        action,
		Before:        before,
		After:         after,
		ChangedFields: changed,
		ActorID:       actorID,
		CreatedAt:     time.Now(),
	}
	return repo.Create(ctx, record)
}

// Diff devuelve los nombres de campo cuyo valor difiere entre before y after
// (diferencia simétrica: incluye campos presentes en solo uno de los dos).
// El resultado se ordena para que los registros sean deterministas.
func Diff(before, after map[string]any) []string {
	seen := make(map[string]bool, len(before)+len(after))
	var changed []string
	for k, bv := range before {
		seen[k] = true
		av, ok := after[k]
		if !ok || !reflect.DeepEqual(bv, av) {
			changed = append(changed, k)
		}
	}
	for k := range after {
		if !seen[k] {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}
