package entity

import "github.com/shopspring/decimal"

// Métodos de pago conocidos; el campo es libre.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// Payment representa un pago aplicado a una venta.
type Payment struct {
	ID        int64
	SaleID    int64
	Method    string
	Amount    decimal.Decimal
	Reference string
	Tendered  decimal.NullDecimal // efectivo recibido
	Change    decimal.NullDecimal // Tendered - Amount
}
