package repository

import (
	"context"
	"time"
)

// SequenceRepository genera consecutivos de documentos únicos por
// (sucursal, tipo de documento, día calendario).
//
// Contrato de concurrencia: llamadores concurrentes para la misma llave deben
// serializar (sección crítica por sucursal+día) y nunca recibir el mismo
// número. Si la transacción dueña aborta, el número NO queda consumido: no
// hay tabla de contadores permanente, los huecos son aceptables, los
// duplicados no.
type SequenceRepository interface {
	// Next reserva y devuelve el siguiente consecutivo formateado
	// (<branchCode>-<YYMMDD>-<NNNN>, prefijo WO- para órdenes de trabajo).
	Next(ctx context.Context, branchID, branchCode, documentKind string, date time.Time) (string, error)
}
