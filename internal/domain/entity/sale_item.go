package entity

import "github.com/shopspring/decimal"

// SaleItem representa un renglón de venta. Descripción, precio e impuesto son snapshots.
type SaleItem struct {
	ID                  int64
	SaleID              int64
	SKU                 string // vacío para renglones de texto libre
	DescriptionSnapshot string
	Qty                 decimal.Decimal
	UnitPrice           decimal.Decimal
	Discount            decimal.Decimal // descuento aplicado (nunca mayor que LineSubtotal)
	TaxRate             decimal.Decimal
	LineSubtotal        decimal.Decimal // Qty * UnitPrice
	LineTax             decimal.Decimal
	LineTotal           decimal.Decimal
}
