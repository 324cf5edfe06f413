// Package pdf implementa la generación del reporte Z (cierre de caja) para
// impresión o archivo.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: REPORTE Z  │  Sesión + Caja + Fechas               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: Apertura / Ventas por método / Entradas / Salidas │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ARQUEO: Esperado | Contado | Diferencia                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Hora | Tipo | Motivo | Monto                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/pos-ledger/internal/application/cashbox"
	"github.com/tu-usuario/pos-ledger/internal/domain/entity"
)

var _ cashbox.ZReportGenerator = (*MarotoZReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoZReportGenerator implementa cashbox.ZReportGenerator usando Maroto v2.
type MarotoZReportGenerator struct{}

// NewMarotoZReportGenerator construye el generador.
func NewMarotoZReportGenerator() *MarotoZReportGenerator { return &MarotoZReportGenerator{} }

// Generate genera el PDF del reporte Z y devuelve sus bytes.
func (g *MarotoZReportGenerator) Generate(
	_ context.Context,
	session *entity.CashSession,
	movements []*entity.CashMovement,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte Z - Cierre de Caja", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(session))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRows(session)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(reconciliationRow(session))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range movementRows(movements) {
		m.AddRows(r)
	}

	if session.Notes != "" {
		m.AddRows(line.NewRow(2))
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Notas: "+session.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y sesión + caja + fechas (der).
func headerRow(session *entity.CashSession) core.Row {
	closedAt := "—"
	if session.ClosedAt != nil {
		closedAt = session.ClosedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(6).Add(
			text.New("REPORTE Z", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New("Cierre de caja", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(6).Add(
			text.New("Sesión: "+session.ID, props.Text{Size: 7, Align: align.Right, Top: 1, Color: colorGray}),
			text.New("Caja: "+session.RegisterID, props.Text{Size: 8, Align: align.Right, Top: 5}),
			text.New("Apertura: "+session.OpenedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
			text.New("Cierre: "+closedAt, props.Text{Size: 8, Align: align.Right, Top: 13, Color: colorGray}),
		),
	)
}

// summaryRows: resumen de la sesión, un renglón por concepto.
func summaryRows(session *entity.CashSession) []core.Row {
	entry := func(label string, amount decimal.Decimal) core.Row {
		return row.New(6).Add(
			col.New(6).Add(text.New(label, props.Text{Size: 9, Top: 1, Left: 1})),
			col.New(6).Add(text.New("$"+formatMoney(amount.StringFixed(0)), props.Text{
				Size: 9, Align: align.Right, Top: 1, Right: 1,
			})),
		)
	}
	return []core.Row{
		row.New(7).Add(col.New(12).Add(text.New("RESUMEN DE LA SESIÓN", props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		}))),
		entry("Monto de apertura", session.OpeningAmount),
		entry("Ventas en efectivo", session.CashSales),
		entry("Ventas con tarjeta", session.CardSales),
		entry("Otras ventas", session.OtherSales),
		entry("Entradas de efectivo", session.CashIn),
		entry("Salidas de efectivo", session.CashOut),
	}
}

// reconciliationRow: arqueo con esperado, contado y diferencia. La
// diferencia se resalta en rojo cuando no es cero.
func reconciliationRow(session *entity.CashSession) core.Row {
	diffColor := colorPrimary
	if !session.Difference.IsZero() {
		diffColor = colorRed
	}
	cell := func(label, value string, valueColor *props.Color) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1}),
			text.New(value, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 6, Color: valueColor,
			}),
		)
	}
	return row.New(14).Add(
		cell("EFECTIVO ESPERADO", "$"+formatMoney(session.ExpectedAmount.StringFixed(0)), colorPrimary),
		cell("EFECTIVO CONTADO", "$"+formatMoney(session.ActualAmount.StringFixed(0)), colorPrimary),
		cell("DIFERENCIA", "$"+formatMoney(session.Difference.StringFixed(0)), diffColor),
	)
}

// tableHeaderRow: cabecera de la tabla de movimientos.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Hora", 2, align.Left),
		h("Tipo", 2, align.Left),
		h("Motivo", 5, align.Left),
		h("Monto", 3, align.Right),
	)
}

// movementRows: una fila por movimiento de la sesión.
func movementRows(movements []*entity.CashMovement) []core.Row {
	result := make([]core.Row, 0, len(movements))
	for _, m := range movements {
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(
				m.CreatedAt.Format("15:04:05"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				movementLabel(m.Type),
				props.Text{Size: 8, Align: align.Left, Top: 1},
			)),
			col.New(5).Add(text.New(
				nonEmpty(m.Reason, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1},
			)),
			col.New(3).Add(text.New(
				"$"+formatMoney(m.Amount.StringFixed(0)),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func movementLabel(movementType string) string {
	switch movementType {
	case entity.CashMovementOpening:
		return "Apertura"
	case entity.CashMovementSale:
		return "Venta"
	case entity.CashMovementRefund:
		return "Devolución"
	case entity.CashMovementExpense:
		return "Gasto"
	case entity.CashMovementDeposit:
		return "Depósito"
	case entity.CashMovementWithdrawal:
		return "Retiro"
	case entity.CashMovementAdjustment:
		return "Ajuste"
	case entity.CashMovementClosing:
		return "Cierre"
	}
	return movementType
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
