package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punto-venta/internal/application/dto"
)

type catalogService interface {
	FindProduct(ctx context.Context, sku string) (*dto.ProductResponse, error)
	ListActiveProducts(ctx context.Context) ([]dto.ProductResponse, error)
	SearchProducts(ctx context.Context, q string, limit int) ([]dto.ProductResponse, error)
	UpsertProduct(ctx context.Context, sku string, in dto.UpsertProductRequest) (*dto.ProductResponse, error)
	ListActiveSellers(ctx context.Context) ([]dto.SellerResponse, error)
	UpsertSeller(ctx context.Context, code string, in dto.UpsertSellerRequest) (*dto.SellerResponse, error)
	ListActiveCustomers(ctx context.Context) ([]dto.CustomerResponse, error)
	UpsertCustomer(ctx context.Context, enrollment string, in dto.UpsertCustomerRequest) (*dto.CustomerResponse, error)
}

// CatalogHandler productos, vendedores y clientes (protegido; escritura solo admin).
type CatalogHandler struct {
	uc catalogService
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc catalogService) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// ListProducts GET /api/products
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	out, err := h.uc.ListActiveProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SearchProducts GET /api/products/search?q=&limit=
func (h *CatalogHandler) SearchProducts(c *fiber.Ctx) error {
	out, err := h.uc.SearchProducts(c.UserContext(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetProduct GET /api/products/:sku
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	out, err := h.uc.FindProduct(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpsertProduct PUT /api/products/:sku
func (h *CatalogHandler) UpsertProduct(c *fiber.Ctx) error {
	var in dto.UpsertProductRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpsertProduct(c.UserContext(), c.Params("sku"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListSellers GET /api/sellers
func (h *CatalogHandler) ListSellers(c *fiber.Ctx) error {
	out, err := h.uc.ListActiveSellers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpsertSeller PUT /api/sellers/:code
func (h *CatalogHandler) UpsertSeller(c *fiber.Ctx) error {
	var in dto.UpsertSellerRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpsertSeller(c.UserContext(), c.Params("code"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListCustomers GET /api/customers
func (h *CatalogHandler) ListCustomers(c *fiber.Ctx) error {
	out, err := h.uc.ListActiveCustomers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpsertCustomer PUT /api/customers/:enrollment
func (h *CatalogHandler) UpsertCustomer(c *fiber.Ctx) error {
	var in dto.UpsertCustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := validateStruct(in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpsertCustomer(c.UserContext(), c.Params("enrollment"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
