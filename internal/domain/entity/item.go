package entity

import "github.com/shopspring/decimal"

// ItemRef es la referencia de solo lectura a un artículo del catálogo.
// El núcleo contable no es dueño del catálogo: lo consume por ID vía el
// puerto CatalogProvider y congela los valores relevantes al momento de la venta.
type ItemRef struct {
	ID              string
	VariantID       string // vacío si el artículo no maneja variantes
	SKU             string
	Name            string
	SellingPrice    decimal.Decimal
	CostPrice       decimal.Decimal // costo promedio ponderado vigente
	TaxRate         decimal.Decimal // 0, 0.05, 0.19
	TaxInclusive    bool            // el precio de venta ya incluye el impuesto
	TrackInventory  bool            // false = servicio o artículo sin control de stock
	IsSellable      bool
	AllowDecimalQty bool // productos a granel (kg, litros)
}
