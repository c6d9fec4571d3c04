package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommitSaleRequest body para POST /api/sales.
// Los nombres de cliente/vendedor son snapshots; si van vacíos se toman del catálogo
// (CustomerID/SellerID) o de los valores por defecto configurados.
type CommitSaleRequest struct {
	ClientRef  string               `json:"client_ref,omitempty" validate:"omitempty,uuid"`
	Customer   string               `json:"customer,omitempty" validate:"max=200"`
	Seller     string               `json:"seller,omitempty" validate:"max=200"`
	CustomerID *int64               `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	SellerID   *int64               `json:"seller_id,omitempty" validate:"omitempty,gt=0"`
	Items      []SaleItemRequest    `json:"items" validate:"required,min=1,dive"`
	Payments   []SalePaymentRequest `json:"payments" validate:"dive"`
}

// SaleItemRequest renglón del carrito. UnitPrice/TaxRate nulos se completan desde el producto.
type SaleItemRequest struct {
	SKU         string           `json:"sku,omitempty" validate:"required_without=Description,max=100"`
	Description string           `json:"description,omitempty" validate:"required_without=SKU,max=300"`
	Qty         decimal.Decimal  `json:"qty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Discount    *decimal.Decimal `json:"discount,omitempty"`
}

// SalePaymentRequest pago aplicado a la venta. Tendered solo aplica a efectivo.
type SalePaymentRequest struct {
	Method    string           `json:"method" validate:"required,max=30"`
	Amount    decimal.Decimal  `json:"amount"`
	Tendered  *decimal.Decimal `json:"tendered,omitempty"`
	Reference string           `json:"reference,omitempty" validate:"max=100"`
}

// CommitSaleResponse resultado de confirmar una venta.
type CommitSaleResponse struct {
	ID    int64  `json:"id"`
	Folio string `json:"folio"`
}

// SaleResponse venta completa para GET /api/sales/:id.
type SaleResponse struct {
	ID            int64                 `json:"id"`
	Folio         string                `json:"folio"`
	ClientRef     string                `json:"client_ref,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Customer      string                `json:"customer"`
	Seller        string                `json:"seller"`
	CustomerID    *int64                `json:"customer_id,omitempty"`
	SellerID      *int64                `json:"seller_id,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	DiscountTotal decimal.Decimal       `json:"discount_total"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Total         decimal.Decimal       `json:"total"`
	PaidTotal     decimal.Decimal       `json:"paid_total"`
	ChangeTotal   decimal.Decimal       `json:"change_total"`
	PaymentStatus string                `json:"payment_status"`
	Items         []SaleItemResponse    `json:"items"`
	Payments      []SalePaymentResponse `json:"payments"`
}

// SaleItemResponse renglón persistido.
type SaleItemResponse struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku,omitempty"`
	Description  string          `json:"description"`
	Qty          decimal.Decimal `json:"qty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Discount     decimal.Decimal `json:"discount"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	LineTax      decimal.Decimal `json:"line_tax"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// SalePaymentResponse pago persistido.
type SalePaymentResponse struct {
	ID        int64            `json:"id"`
	Method    string           `json:"method"`
	Amount    decimal.Decimal  `json:"amount"`
	Reference string           `json:"reference,omitempty"`
	Tendered  *decimal.Decimal `json:"tendered,omitempty"`
	Change    *decimal.Decimal `json:"change,omitempty"`
}

// SaleSummaryResponse fila del listado de ventas.
type SaleSummaryResponse struct {
	ID            int64           `json:"id"`
	Folio         string          `json:"folio"`
	CreatedAt     time.Time       `json:"created_at"`
	Customer      string          `json:"customer"`
	Seller        string          `json:"seller"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"payment_status"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleSummaryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
