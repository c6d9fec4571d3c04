package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `sku, description, price, tax_rate, kind, unit, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// FindBySKU obtiene un producto (activo o no). (nil, nil) si no existe.
func (r *ProductRepo) FindBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get product", err)
	}
	return p, nil
}

// ListActive lista productos activos por descripción.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY description, sku`)
	if err != nil {
		return nil, mapError("list products", err)
	}
	return collectProducts(rows)
}

// Search busca productos activos cuyo SKU o descripción contenga q (sin distinguir mayúsculas).
func (r *ProductRepo) Search(ctx context.Context, q string, limit int) ([]*entity.Product, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE active AND (sku ILIKE $1 OR description ILIKE $1)
		ORDER BY description, sku
		LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, mapError("search products", err)
	}
	return collectProducts(rows)
}

// Upsert inserta o actualiza por SKU; created_at se conserva.
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sku) DO UPDATE SET
			description = EXCLUDED.description,
			price       = EXCLUDED.price,
			tax_rate    = EXCLUDED.tax_rate,
			kind        = EXCLUDED.kind,
			unit        = EXCLUDED.unit,
			active      = EXCLUDED.active,
			updated_at  = EXCLUDED.updated_at`,
		p.SKU, p.Description, p.Price, p.TaxRate, p.Kind, p.Unit, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return mapError("upsert product", err)
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.SKU, &p.Description, &p.Price, &p.TaxRate, &p.Kind, &p.Unit, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]*entity.Product, error) {
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
