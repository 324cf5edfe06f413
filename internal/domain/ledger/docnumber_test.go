package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/pos-ledger/internal/domain/ledger"
)

func TestFormatDocumentNumber(t *testing.T) {
	date := time.Date(2025, 8, 29, 14, 30, 0, 0, time.UTC)

	got := ledger.FormatDocumentNumber("BOG01", ledger.DocKindTransaction, date, 1)
	assert.Equal(t, "BOG01-250829-0001", got)

	got = ledger.FormatDocumentNumber("BOG01", ledger.DocKindTransaction, date, 1234)
	assert.Equal(t, "BOG01-250829-1234", got)

	// El consecutivo no se trunca a 4 dígitos en días de alto volumen.
	got = ledger.FormatDocumentNumber("BOG01", ledger.DocKindTransaction, date, 10001)
	assert.Equal(t, "BOG01-250829-10001", got)

	// Las órdenes de trabajo llevan prefijo WO-.
	got = ledger.FormatDocumentNumber("MED02", ledger.DocKindWorkOrder, date, 7)
	assert.Equal(t, "WO-MED02-250829-0007", got)
}
