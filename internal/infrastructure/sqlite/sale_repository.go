package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `id, folio, folio_prefix, folio_number, COALESCE(client_ref, ''), customer_id, seller_id,
	customer, seller, subtotal, discount_total, tax_total, total, paid_total, change_total,
	payment_status, created_at`

// SaleRepo implementación de SaleRepository. Solo inserta y lee.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y completa s.ID.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO sales (folio, folio_prefix, folio_number, client_ref, customer_id, seller_id,
			customer, seller, subtotal, discount_total, tax_total, total, paid_total, change_total,
			payment_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Folio, s.FolioPrefix, s.FolioNumber, nullIfEmpty(s.ClientRef), s.CustomerID, s.SellerID,
		s.Customer, s.Seller, s.Subtotal, s.DiscountTotal, s.TaxTotal, s.Total, s.PaidTotal, s.ChangeTotal,
		s.PaymentStatus, s.CreatedAt.UTC(),
	)
	if err != nil {
		return mapError("insert sale", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return mapError("sale id", err)
	}
	s.ID = id
	return nil
}

// CreateItem inserta un renglón y completa item.ID.
func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.SaleItem) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO sale_items (sale_id, sku, description, qty, unit_price, discount, tax_rate,
			line_subtotal, line_tax, line_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.SaleID, nullIfEmpty(item.SKU), item.DescriptionSnapshot, item.Qty, item.UnitPrice, item.Discount,
		item.TaxRate, item.LineSubtotal, item.LineTax, item.LineTotal,
	)
	if err != nil {
		return mapError("insert sale item", err)
	}
	item.ID, err = res.LastInsertId()
	return mapError("sale item id", err)
}

// CreatePayment inserta un pago y completa p.ID.
func (r *SaleRepo) CreatePayment(ctx context.Context, p *entity.Payment) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO payments (sale_id, method, amount, reference, tendered, change_amount)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.SaleID, p.Method, p.Amount, nullIfEmpty(p.Reference), p.Tendered, p.Change,
	)
	if err != nil {
		return mapError("insert payment", err)
	}
	p.ID, err = res.LastInsertId()
	return mapError("payment id", err)
}

// GetByID obtiene la cabecera; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale", `SELECT `+saleColumns+` FROM sales WHERE id = ?`, id)
}

// GetByFolio obtiene la cabecera por folio; (nil, nil) si no existe.
func (r *SaleRepo) GetByFolio(ctx context.Context, folio string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale by folio", `SELECT `+saleColumns+` FROM sales WHERE folio = ?`, folio)
}

// GetByClientRef obtiene la venta confirmada con esa llave de idempotencia.
func (r *SaleRepo) GetByClientRef(ctx context.Context, clientRef string) (*entity.Sale, error) {
	return r.getOne(ctx, "get sale by client_ref", `SELECT `+saleColumns+` FROM sales WHERE client_ref = ?`, clientRef)
}

// LastCreated devuelve la venta más reciente por created_at (desempate por id).
func (r *SaleRepo) LastCreated(ctx context.Context) (*entity.Sale, error) {
	return r.getOne(ctx, "get last sale", `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT 1`)
}

// List ventas de la más reciente a la más antigua.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, mapError("list sales", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, mapError("scan sale", err)
		}
		list = append(list, s)
	}
	return list, mapError("iterate sales", rows.Err())
}

// ListItems renglones de la venta en orden de inserción.
func (r *SaleRepo) ListItems(ctx context.Context, saleID int64) ([]*entity.SaleItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, sale_id, COALESCE(sku, ''), description, qty, unit_price, discount, tax_rate,
			line_subtotal, line_tax, line_total
		FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, mapError("list sale items", err)
	}
	defer rows.Close()
	var list []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.SKU, &it.DescriptionSnapshot, &it.Qty, &it.UnitPrice,
			&it.Discount, &it.TaxRate, &it.LineSubtotal, &it.LineTax, &it.LineTotal); err != nil {
			return nil, mapError("scan sale item", err)
		}
		list = append(list, &it)
	}
	return list, mapError("iterate sale items", rows.Err())
}

// ListPayments pagos de la venta en orden de inserción.
func (r *SaleRepo) ListPayments(ctx context.Context, saleID int64) ([]*entity.Payment, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, sale_id, method, amount, COALESCE(reference, ''), tendered, change_amount
		FROM payments WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, mapError("list payments", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.Reference, &p.Tendered, &p.Change); err != nil {
			return nil, mapError("scan payment", err)
		}
		list = append(list, &p)
	}
	return list, mapError("iterate payments", rows.Err())
}

func (r *SaleRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return s, nil
}

func scanSale(sc rowScanner) (*entity.Sale, error) {
	var (
		s                    entity.Sale
		customerID, sellerID sql.NullInt64
	)
	err := sc.Scan(&s.ID, &s.Folio, &s.FolioPrefix, &s.FolioNumber, &s.ClientRef, &customerID, &sellerID,
		&s.Customer, &s.Seller, &s.Subtotal, &s.DiscountTotal, &s.TaxTotal, &s.Total, &s.PaidTotal, &s.ChangeTotal,
		&s.PaymentStatus, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		s.CustomerID = &customerID.Int64
	}
	if sellerID.Valid {
		s.SellerID = &sellerID.Int64
	}
	return &s, nil
}

// nullIfEmpty devuelve nil para cadena vacía (columna NULL).
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
