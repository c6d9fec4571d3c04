// Package pdf genera el ticket impreso de una venta en papel de 80 mm.
//
// Layout del ticket:
//
//	┌──────────────────────────────┐
//	│  NEGOCIO + RFC + dirección   │
//	│  Folio + fecha               │
//	│  Cliente / Vendedor          │
//	│  ──────────────────────────  │
//	│  Cant | Descripción | Importe│
//	│  ──────────────────────────  │
//	│  Subtotal / Desc. / IVA      │
//	│  TOTAL                       │
//	│  Pagos + cambio              │
//	│  ──────────────────────────  │
//	│  QR folio + agradecimiento   │
//	└──────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/pkg/money"
)

// Ancho del rollo térmico y alto de página antes del corte.
const (
	paperWidthMM  = 80
	paperHeightMM = 297
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ sales.ReceiptPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa sales.ReceiptPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateReceiptPDF genera el ticket y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateReceiptPDF(
	_ context.Context,
	detail *sales.SaleDetail,
	business sales.BusinessInfo,
) ([]byte, error) {
	if detail == nil || detail.Sale == nil {
		return nil, fmt.Errorf("pdf: venta vacía")
	}
	f := money.NewFormatter(business.Locale, "$")

	cfg := config.NewBuilder().
		WithDimensions(paperWidthMM, paperHeightMM).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Ticket "+detail.Sale.Folio, true).
		WithAuthor(business.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(detail.Sale, business)...)
	m.AddRows(separator())
	m.AddRows(tableHeaderRow())
	m.AddRows(itemRows(detail.Items, f)...)
	m.AddRows(separator())
	m.AddRows(totalsRows(detail.Sale, f)...)
	m.AddRows(paymentRows(detail.Payments, f)...)
	m.AddRows(separator())
	m.AddRows(footerRows(detail.Sale, business)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRows(s *entity.Sale, b sales.BusinessInfo) []core.Row {
	centered := func(s string, size float64, style fontstyle.Type, color *props.Color) core.Row {
		return row.New(size/2 + 2).Add(col.New(12).Add(text.New(s, props.Text{
			Style: style, Size: size, Align: align.Center, Color: color,
		})))
	}
	rows := []core.Row{centered(nonEmpty(b.Name, "Punto de venta"), 11, fontstyle.Bold, colorPrimary)}
	if b.RFC != "" {
		rows = append(rows, centered("RFC: "+b.RFC, 7, fontstyle.Normal, colorGray))
	}
	if b.Address != "" {
		rows = append(rows, centered(b.Address, 7, fontstyle.Normal, colorGray))
	}
	if b.Phone != "" {
		rows = append(rows, centered("Tel: "+b.Phone, 7, fontstyle.Normal, colorGray))
	}
	rows = append(rows,
		row.New(2),
		labelValueRow("Folio:", s.Folio, fontstyle.Bold),
		labelValueRow("Fecha:", s.CreatedAt.Local().Format("02/01/2006 15:04"), fontstyle.Normal),
		labelValueRow("Cliente:", s.Customer, fontstyle.Normal),
		labelValueRow("Atendió:", s.Seller, fontstyle.Normal),
	)
	return rows
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(5).Add(
		h("Cant.", 2, align.Left),
		h("Descripción", 6, align.Left),
		h("Importe", 4, align.Right),
	)
}

// itemRows: descripción y cantidad en una fila; precio unitario, descuento e IVA debajo.
func itemRows(items []*entity.SaleItem, f *money.Formatter) []core.Row {
	rows := make([]core.Row, 0, len(items)*2)
	for _, it := range items {
		rows = append(rows, row.New(4).Add(
			col.New(2).Add(text.New(f.Quantity(it.Qty), props.Text{Size: 7})),
			col.New(6).Add(text.New(it.DescriptionSnapshot, props.Text{Size: 7})),
			col.New(4).Add(text.New(f.Format(it.LineSubtotal), props.Text{Size: 7, Align: align.Right})),
		))
		detail := "@ " + f.Format(it.UnitPrice)
		if it.Discount.IsPositive() {
			detail += "  desc. " + f.Format(it.Discount)
		}
		if it.TaxRate.IsPositive() {
			detail += "  IVA " + f.Percent(it.TaxRate)
		}
		rows = append(rows, row.New(3.5).Add(
			col.New(2),
			col.New(10).Add(text.New(detail, props.Text{Size: 6, Color: colorGray})),
		))
	}
	return rows
}

func totalsRows(s *entity.Sale, f *money.Formatter) []core.Row {
	rows := []core.Row{labelValueRow("Subtotal:", f.Format(s.Subtotal), fontstyle.Normal)}
	if s.DiscountTotal.IsPositive() {
		rows = append(rows, labelValueRow("Descuento:", "-"+f.Format(s.DiscountTotal), fontstyle.Normal))
	}
	rows = append(rows,
		labelValueRow("IVA:", f.Format(s.TaxTotal), fontstyle.Normal),
		row.New(6).Add(
			col.New(6).Add(text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 1,
			})),
			col.New(6).Add(text.New(f.Format(s.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			})),
		),
	)
	if s.PaymentStatus != entity.PaymentStatusPaid {
		rows = append(rows, labelValueRow("Estado:", s.PaymentStatus, fontstyle.Bold))
	}
	return rows
}

func paymentRows(payments []*entity.Payment, f *money.Formatter) []core.Row {
	if len(payments) == 0 {
		return nil
	}
	rows := []core.Row{row.New(2)}
	for _, p := range payments {
		label := methodLabel(p.Method)
		if p.Reference != "" {
			label += " (" + p.Reference + ")"
		}
		rows = append(rows, labelValueRow(label, f.Format(p.Amount), fontstyle.Normal))
		if p.Tendered.Valid {
			rows = append(rows, labelValueRow("  Recibido:", f.Format(p.Tendered.Decimal), fontstyle.Normal))
		}
		if p.Change.Valid && p.Change.Decimal.IsPositive() {
			rows = append(rows, labelValueRow("  Cambio:", f.Format(p.Change.Decimal), fontstyle.Bold))
		}
	}
	return rows
}

// footerRows: QR con el folio para búsqueda rápida y leyenda de agradecimiento.
func footerRows(s *entity.Sale, b sales.BusinessInfo) []core.Row {
	rows := []core.Row{
		row.New(28).Add(
			col.New(3),
			col.New(6).Add(code.NewQr(s.Folio, props.Rect{Percent: 95, Center: true})),
			col.New(3),
		),
	}
	if b.ThankYou != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(text.New(b.ThankYou, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 2,
		}))))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func separator() core.Row {
	return line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2})
}

func labelValueRow(label, value string, style fontstyle.Type) core.Row {
	return row.New(4).Add(
		col.New(5).Add(text.New(label, props.Text{Size: 7, Style: style})),
		col.New(7).Add(text.New(value, props.Text{Size: 7, Style: style, Align: align.Right})),
	)
}

func methodLabel(method string) string {
	switch method {
	case entity.PaymentMethodCash:
		return "Efectivo"
	case entity.PaymentMethodCard:
		return "Tarjeta"
	case entity.PaymentMethodTransfer:
		return "Transferencia"
	default:
		return method
	}
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
