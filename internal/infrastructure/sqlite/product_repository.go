package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `sku, description, price, tax_rate, kind, unit, active, created_at, updated_at`

// ProductRepo implementación de ProductRepository (usable con *sql.DB o *sql.Tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// FindBySKU obtiene un producto (activo o no). (nil, nil) si no existe.
func (r *ProductRepo) FindBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return p, nil
}

// ListActive lista productos activos por descripción.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products WHERE active = 1 ORDER BY description, sku`)
	if err != nil {
		return nil, mapError("list products", err)
	}
	return collectProducts(rows)
}

// Search busca productos activos cuyo SKU o descripción contenga q.
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]*entity.Product, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE active = 1 AND (sku LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')
		ORDER BY description, sku
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, mapError("search products", err)
	}
	return collectProducts(rows)
}

// Upsert inserta o actualiza por SKU; created_at se conserva.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sku) DO UPDATE SET
			description = excluded.description,
			price       = excluded.price,
			tax_rate    = excluded.tax_rate,
			kind        = excluded.kind,
			unit        = excluded.unit,
			active      = excluded.active,
			updated_at  = excluded.updated_at`,
		p.SKU, p.Description, p.Price, p.TaxRate, p.Kind, p.Unit, p.Active, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	return mapError("upsert product", err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*entity.Product, error) {
	var p entity.Product
	if err := s.Scan(&p.SKU, &p.Description, &p.Price, &p.TaxRate, &p.Kind, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]*entity.Product, error) {
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", err)
		}
		list = append(list, p)
	}
	return list, mapError("iterate products", rows.Err())
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
