package ledger

import "github.com/shopspring/decimal"

// MinorUnitExponent es la cantidad de decimales de la unidad menor de la
// moneda. COP se maneja con 2 decimales en documentos fiscales aunque el
// efectivo circule en pesos enteros.
const MinorUnitExponent = 2

// RoundMoney redondea un monto a la unidad menor de la moneda (half-up).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitExponent)
}

// LineTax calcula la base gravable y el impuesto de una línea a partir del
// monto bruto (ya con descuento aplicado) y la tarifa.
//
// Si el precio es tax-inclusive, el bruto contiene el impuesto:
//
//	base = bruto / (1 + tarifa);  impuesto = bruto - base
//
// Si no, la base es el bruto y el impuesto se suma encima.
// El impuesto se redondea POR LÍNEA a la unidad menor y luego se suma al
// total; nunca se redondea solo el gran total, para que los totales siempre
// cuadren contra el detalle de líneas.
func LineTax(gross, rate decimal.Decimal, taxInclusive bool) (base, tax decimal.Decimal) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return gross, decimal.Zero
	}
	if taxInclusive {
		// Se redondea solo el impuesto y la base se deriva por resta, así
		// base + impuesto == bruto exacto aun cuando la división no cierra
		// en la unidad menor.
		raw := gross.Div(decimal.NewFromInt(1).Add(rate))
		tax = RoundMoney(gross.Sub(raw))
		return gross.Sub(tax), tax
	}
	tax = RoundMoney(gross.Mul(rate))
	return gross, tax
}

// NormalizeTaxRate acepta tarifas expresadas como porcentaje (19) o fracción
// (0.19) y devuelve siempre la fracción. El catálogo histórico guarda ambas
// formas.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}
