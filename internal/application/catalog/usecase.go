package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

const maxSearchResults = 50

// UseCase lectura y mantenimiento del catálogo (productos, vendedores, clientes).
// El motor de ventas no pasa por aquí: lee el catálogo con los repos de su transacción.
type UseCase struct {
	products  repository.ProductRepository
	sellers   repository.SellerRepository
	customers repository.CustomerRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso de catálogo.
func NewUseCase(products repository.ProductRepository, sellers repository.SellerRepository, customers repository.CustomerRepository) *UseCase {
	return &UseCase{products: products, sellers: sellers, customers: customers, now: time.Now}
}

// FindProduct devuelve el producto por SKU (activo o no); domain.ErrNotFound si no existe.
func (uc *UseCase) FindProduct(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
	}
	p, err := uc.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("catálogo: buscar %q: %w", sku, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %q", domain.ErrNotFound, sku)
	}
	return toProductResponse(p), nil
}

// ListActiveProducts productos activos ordenados por descripción.
func (uc *UseCase) ListActiveProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.products.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("catálogo: listar productos: %w", err)
	}
	return toProductResponses(list), nil
}

// SearchProducts busca productos activos por SKU o descripción.
func (uc *UseCase) SearchProducts(ctx context.Context, q string, limit int) ([]dto.ProductResponse, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []dto.ProductResponse{}, nil
	}
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	list, err := uc.products.Search(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("catálogo: buscar %q: %w", q, err)
	}
	return toProductResponses(list), nil
}

// UpsertProduct crea o actualiza un producto por SKU.
func (uc *UseCase) UpsertProduct(ctx context.Context, sku string, in dto.UpsertProductRequest) (*dto.ProductResponse, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" || strings.TrimSpace(in.Description) == "" {
		return nil, fmt.Errorf("%w: sku y descripción son obligatorios", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() || in.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: precio e impuesto no pueden ser negativos", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	p := &entity.Product{
		SKU:         sku,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		TaxRate:     in.TaxRate,
		Kind:        in.Kind,
		Unit:        in.Unit,
		Active:      in.Active == nil || *in.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Kind == "" {
		p.Kind = entity.ProductKindProduct
	}
	if p.Unit == "" {
		p.Unit = "pz"
	}
	if err := uc.products.Upsert(ctx, p); err != nil {
		return nil, fmt.Errorf("catálogo: guardar producto %q: %w", sku, err)
	}
	return toProductResponse(p), nil
}

// ListActiveSellers vendedores activos.
func (uc *UseCase) ListActiveSellers(ctx context.Context) ([]dto.SellerResponse, error) {
	list, err := uc.sellers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("catálogo: listar vendedores: %w", err)
	}
	out := make([]dto.SellerResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toSellerResponse(s))
	}
	return out, nil
}

// UpsertSeller crea o actualiza un vendedor por código.
func (uc *UseCase) UpsertSeller(ctx context.Context, code string, in dto.UpsertSellerRequest) (*dto.SellerResponse, error) {
	code = strings.TrimSpace(code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: código y nombre son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	s := &entity.Seller{Code: code, Name: name, Active: in.Active == nil || *in.Active, CreatedAt: now, UpdatedAt: now}
	if err := uc.sellers.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("catálogo: guardar vendedor %q: %w", code, err)
	}
	out := toSellerResponse(s)
	return &out, nil
}

// ListActiveCustomers clientes activos.
func (uc *UseCase) ListActiveCustomers(ctx context.Context) ([]dto.CustomerResponse, error) {
	list, err := uc.customers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("catálogo: listar clientes: %w", err)
	}
	out := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCustomerResponse(c))
	}
	return out, nil
}

// UpsertCustomer crea o actualiza un cliente por matrícula.
func (uc *UseCase) UpsertCustomer(ctx context.Context, enrollment string, in dto.UpsertCustomerRequest) (*dto.CustomerResponse, error) {
	enrollment = strings.TrimSpace(enrollment)
	name := strings.TrimSpace(in.Name)
	if enrollment == "" || name == "" {
		return nil, fmt.Errorf("%w: matrícula y nombre son obligatorios", domain.ErrInvalidInput)
	}
	now := uc.now().UTC()
	c := &entity.Customer{Enrollment: enrollment, Name: name, Active: in.Active == nil || *in.Active, CreatedAt: now, UpdatedAt: now}
	if err := uc.customers.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("catálogo: guardar cliente %q: %w", enrollment, err)
	}
	out := toCustomerResponse(c)
	return &out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		TaxRate:     p.TaxRate,
		Kind:        p.Kind,
		Unit:        p.Unit,
		Active:      p.Active,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(list []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, *toProductResponse(p))
	}
	return out
}

func toSellerResponse(s *entity.Seller) dto.SellerResponse {
	return dto.SellerResponse{ID: s.ID, Code: s.Code, Name: s.Name, Active: s.Active}
}

func toCustomerResponse(c *entity.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{ID: c.ID, Enrollment: c.Enrollment, Name: c.Name, Active: c.Active}
}
