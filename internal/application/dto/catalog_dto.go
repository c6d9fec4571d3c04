package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpsertProductRequest body para PUT /api/products/:sku.
type UpsertProductRequest struct {
	Description string          `json:"description" validate:"required,min=1,max=300"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Kind        string          `json:"kind,omitempty" validate:"omitempty,oneof=Producto Servicio"`
	Unit        string          `json:"unit,omitempty" validate:"max=20"`
	Active      *bool           `json:"active,omitempty"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Kind        string          `json:"kind"`
	Unit        string          `json:"unit"`
	Active      bool            `json:"active"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// UpsertSellerRequest body para PUT /api/sellers/:code.
type UpsertSellerRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Active *bool  `json:"active,omitempty"`
}

// SellerResponse vendedor.
type SellerResponse struct {
	ID     int64  `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// UpsertCustomerRequest body para PUT /api/customers/:enrollment.
type UpsertCustomerRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=200"`
	Active *bool  `json:"active,omitempty"`
}

// CustomerResponse cliente (alumno).
type CustomerResponse struct {
	ID         int64  `json:"id"`
	Enrollment string `json:"enrollment"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
}
