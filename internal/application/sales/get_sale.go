package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/punto-venta/internal/application/dto"
	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

// SaleReader lecturas de ventas confirmadas.
type SaleReader struct {
	saleRepo repository.SaleRepository
}

// NewSaleReader construye el lector de ventas.
func NewSaleReader(saleRepo repository.SaleRepository) *SaleReader {
	return &SaleReader{saleRepo: saleRepo}
}

// GetSale devuelve la venta con renglones y pagos; domain.ErrNotFound si no existe.
func (r *SaleReader) GetSale(ctx context.Context, id int64) (*dto.SaleResponse, error) {
	detail, err := r.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(detail), nil
}

// GetSaleByFolio igual que GetSale pero por folio.
func (r *SaleReader) GetSaleByFolio(ctx context.Context, folio string) (*dto.SaleResponse, error) {
	folio = strings.TrimSpace(folio)
	if folio == "" {
		return nil, fmt.Errorf("%w: folio vacío", domain.ErrInvalidInput)
	}
	s, err := r.saleRepo.GetByFolio(ctx, folio)
	if err != nil {
		return nil, fmt.Errorf("venta: obtener por folio: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: venta con folio %s", domain.ErrNotFound, folio)
	}
	detail, err := r.load(ctx, s)
	if err != nil {
		return nil, err
	}
	return ToSaleResponse(detail), nil
}

// GetDetail devuelve la venta como entidades (para el ticket).
func (r *SaleReader) GetDetail(ctx context.Context, id int64) (*SaleDetail, error) {
	s, err := r.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("venta: obtener %d: %w", id, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: venta %d", domain.ErrNotFound, id)
	}
	return r.load(ctx, s)
}

func (r *SaleReader) load(ctx context.Context, s *entity.Sale) (*SaleDetail, error) {
	items, err := r.saleRepo.ListItems(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("venta: renglones de %s: %w", s.Folio, err)
	}
	payments, err := r.saleRepo.ListPayments(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("venta: pagos de %s: %w", s.Folio, err)
	}
	return &SaleDetail{Sale: s, Items: items, Payments: payments}, nil
}

// ListSales lista ventas de la más reciente a la más antigua.
func (r *SaleReader) ListSales(ctx context.Context, page dto.PageRequest) (*dto.SaleListResponse, error) {
	page.Normalize()
	list, err := r.saleRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("venta: listar: %w", err)
	}
	out := &dto.SaleListResponse{
		Items: make([]dto.SaleSummaryResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(list)},
	}
	for _, s := range list {
		out.Items = append(out.Items, dto.SaleSummaryResponse{
			ID:            s.ID,
			Folio:         s.Folio,
			CreatedAt:     s.CreatedAt,
			Customer:      s.Customer,
			Seller:        s.Seller,
			Total:         s.Total,
			PaymentStatus: s.PaymentStatus,
		})
	}
	return out, nil
}

// ToSaleResponse mapea una venta completa al DTO de respuesta.
func ToSaleResponse(d *SaleDetail) *dto.SaleResponse {
	s := d.Sale
	out := &dto.SaleResponse{
		ID:            s.ID,
		Folio:         s.Folio,
		ClientRef:     s.ClientRef,
		CreatedAt:     s.CreatedAt,
		Customer:      s.Customer,
		Seller:        s.Seller,
		CustomerID:    s.CustomerID,
		SellerID:      s.SellerID,
		Subtotal:      s.Subtotal,
		DiscountTotal: s.DiscountTotal,
		TaxTotal:      s.TaxTotal,
		Total:         s.Total,
		PaidTotal:     s.PaidTotal,
		ChangeTotal:   s.ChangeTotal,
		PaymentStatus: s.PaymentStatus,
		Items:         make([]dto.SaleItemResponse, 0, len(d.Items)),
		Payments:      make([]dto.SalePaymentResponse, 0, len(d.Payments)),
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:           it.ID,
			SKU:          it.SKU,
			Description:  it.DescriptionSnapshot,
			Qty:          it.Qty,
			UnitPrice:    it.UnitPrice,
			Discount:     it.Discount,
			TaxRate:      it.TaxRate,
			LineSubtotal: it.LineSubtotal,
			LineTax:      it.LineTax,
			LineTotal:    it.LineTotal,
		})
	}
	for _, p := range d.Payments {
		pr := dto.SalePaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
		}
		if p.Tendered.Valid {
			v := p.Tendered.Decimal
			pr.Tendered = &v
		}
		if p.Change.Valid {
			v := p.Change.Decimal
			pr.Change = &v
		}
		out.Payments = append(out.Payments, pr)
	}
	return out
}
