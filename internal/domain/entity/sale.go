package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una venta (derivados de pagos vs. total).
const (
	PaymentStatusPending = "PENDIENTE" // sin pagos
	PaymentStatusPartial = "PARCIAL"   // pagos por debajo del total
	PaymentStatusPaid    = "PAGADO"    // pagos cubren el total
)

// Sale representa la cabecera de una venta. Es historia inmutable una vez confirmada:
// no existe Update ni Delete; las correcciones se hacen con ventas compensatorias.
type Sale struct {
	ID            int64
	Folio         string // folio visible (prefijo + consecutivo con ceros)
	FolioPrefix   string
	FolioNumber   int64
	ClientRef     string // llave de idempotencia opcional enviada por la terminal
	CustomerID    *int64
	SellerID      *int64
	Customer      string // snapshot del nombre del cliente
	Seller        string // snapshot del nombre del vendedor
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	PaidTotal     decimal.Decimal
	ChangeTotal   decimal.Decimal
	PaymentStatus string
	CreatedAt     time.Time
}
