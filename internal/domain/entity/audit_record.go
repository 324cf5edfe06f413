package entity

import "time"

// Acciones de auditoría.
const (
	AuditActionInsert = "INSERT"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditRecord es el registro append-only de una mutación: instantáneas
// antes/después como mapas campo->valor (producidos por funciones de
// snapshot tipadas, no por documentos dinámicos) y el conjunto de campos
// cambiados. Se escribe en la misma transacción que la mutación que
// documenta, para que auditoría y estado de negocio nunca diverjan.
type AuditRecord struct {
	ID            string
	TableName     string
	RecordID      string
	Action        string
	Before        map[string]any // nil en INSERT
	After         map[string]any // nil en DELETE
	ChangedFields []string
	ActorID       string
	CreatedAt     time.Time
}
