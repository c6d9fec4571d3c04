package sales

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

// SaleTxRunner ejecuta fn dentro de la transacción de escritura exclusiva del almacén.
// Los repos que recibe fn están atados a esa transacción; si fn devuelve error se hace
// rollback y nada de lo escrito (incluido el folio) queda persistido.
// La contención sobre el lock de escritura se reporta como domain.ErrBusy.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		sellerRepo repository.SellerRepository,
		customerRepo repository.CustomerRepository,
		folioRepo repository.FolioRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// SaleDetail venta completa: cabecera, renglones y pagos (ambos en orden de inserción).
type SaleDetail struct {
	Sale     *entity.Sale
	Items    []*entity.SaleItem
	Payments []*entity.Payment
}

// BusinessInfo datos del negocio impresos en el ticket.
type BusinessInfo struct {
	Name     string
	RFC      string
	Address  string
	Phone    string
	ThankYou string
	Locale   string
}

// ReceiptPDFGenerator genera la representación impresa de una venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, detail *SaleDetail, business BusinessInfo) ([]byte, error)
}
