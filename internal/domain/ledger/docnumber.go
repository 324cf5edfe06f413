package ledger

import (
	"fmt"
	"time"
)

// Tipos de documento con consecutivo propio por (sucursal, día).
const (
	DocKindTransaction = "TRANSACTION"
	DocKindWorkOrder   = "WORK_ORDER"
)

// FormatDocumentNumber arma el consecutivo legible de un documento:
// <branchCode>-<YYMMDD>-<NNNN>, con prefijo WO- para órdenes de trabajo.
// La unicidad la garantiza el generador de secuencias, no este formato.
func FormatDocumentNumber(branchCode, kind string, date time.Time, seq int) string {
	number := fmt.Sprintf("%s-%s-%04d", branchCode, date.Format("060102"), seq)
	if kind == DocKindWorkOrder {
		return "WO-" + number
	}
	return number
}
