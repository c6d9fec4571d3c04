// Package sale contiene las reglas de cálculo de una venta: importes por renglón,
// agregados, estado de pago y representación del folio. No depende de infraestructura.
//
// Convención de impuesto: el IVA se calcula sobre la base neta del renglón
// (cantidad * precio - descuento). Sin descuentos, total = subtotal + impuestos.
package sale

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// PaidEpsilon tolerancia para considerar una venta pagada (medio centavo).
var PaidEpsilon = decimal.New(5, -3)

// LineAmounts importes derivados de un renglón.
type LineAmounts struct {
	Subtotal decimal.Decimal // qty * unit_price
	Discount decimal.Decimal // descuento aplicado, acotado a [0, Subtotal]
	Tax      decimal.Decimal
	Total    decimal.Decimal // max(0, (qty*unit_price - discount) * (1 + tax_rate))
}

// ComputeLine calcula los importes de un renglón. Un descuento mayor al subtotal
// deja el renglón en cero en lugar de rechazarlo.
func ComputeLine(qty, unitPrice, discount, taxRate decimal.Decimal) LineAmounts {
	gross := qty.Mul(unitPrice)
	applied := discount
	if applied.GreaterThan(gross) {
		applied = gross
	}
	if applied.IsNegative() {
		applied = decimal.Zero
	}
	net := gross.Sub(applied)
	if net.IsNegative() {
		net = decimal.Zero
	}
	tax := net.Mul(taxRate)
	return LineAmounts{
		Subtotal: gross,
		Discount: applied,
		Tax:      tax,
		Total:    net.Add(tax),
	}
}

// Totals agregados de la venta; siempre son la suma de sus renglones.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// SumLines suma los importes de los renglones.
func SumLines(lines []LineAmounts) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.Discount = t.Discount.Add(l.Discount)
		t.Tax = t.Tax.Add(l.Tax)
		t.Total = t.Total.Add(l.Total)
	}
	return t
}

// PaymentStatus deriva el estado de pago a partir del total y la suma de pagos.
// Un pago que cubre el total (menos PaidEpsilon) es PAGADO; sin pagos es PENDIENTE.
func PaymentStatus(total, paid decimal.Decimal) string {
	switch {
	case paid.GreaterThanOrEqual(total.Sub(PaidEpsilon)):
		return entity.PaymentStatusPaid
	case paid.GreaterThan(decimal.Zero):
		return entity.PaymentStatusPartial
	default:
		return entity.PaymentStatusPending
	}
}

// Change devuelve el cambio de un pago en efectivo (recibido - monto).
func Change(amount, tendered decimal.Decimal) decimal.Decimal {
	return tendered.Sub(amount)
}
