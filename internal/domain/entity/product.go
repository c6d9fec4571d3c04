package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o servicio del catálogo.
// Las ventas copian descripción, precio e impuesto al momento de la venta; editar el producto
// después no altera ventas históricas.
type Product struct {
	SKU         string // clave única
	Description string
	Price       decimal.Decimal // precio unitario de venta
	TaxRate     decimal.Decimal // fracción: 0.16 = IVA 16%
	Kind        string          // Producto | Servicio
	Unit        string          // pz, kg, ...
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tipos de producto.
const (
	ProductKindProduct = "Producto"
	ProductKindService = "Servicio"
)
