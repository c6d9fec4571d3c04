package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
	"github.com/jhoicas/punto-venta/pkg/logger"
)

var (
	keyActiveProducts  = Key("catalog", "products", "active")
	keyActiveSellers   = Key("catalog", "sellers", "active")
	keyActiveCustomers = Key("catalog", "customers", "active")
)

// cachedList lee la lista de Redis o la carga con load y la guarda con ttl.
// Un fallo de Redis no es fatal: se registra y se sirve desde la base.
func cachedList[T any](ctx context.Context, c *Client, log *logger.Logger, key string, ttl time.Duration,
	load func(context.Context) ([]T, error)) ([]T, error) {
	if b, err := c.get(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	} else if b != nil {
		var list []T
		if err := json.Unmarshal(b, &list); err == nil {
			return list, nil
		}
		log.Warn().Str("key", key).Msg("cache entry corrupt, reloading")
	}

	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(list); err == nil {
		if err := c.set(ctx, key, b, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return list, nil
}

func invalidate(ctx context.Context, c *Client, log *logger.Logger, key string) {
	if err := c.del(ctx, key); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache invalidation failed")
	}
}

func nopIfNil(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log.Component("catalog_cache")
}

// ── Productos ─────────────────────────────────────────────────────────────────

var _ repository.ProductRepository = (*ProductCache)(nil)

// ProductCache decora un ProductRepository cacheando la lista de activos.
// FindBySKU y Search van siempre a la base.
type ProductCache struct {
	repository.ProductRepository
	c   *Client
	ttl time.Duration
	log *logger.Logger
}

// NewProductCache construye el decorador.
func NewProductCache(next repository.ProductRepository, c *Client, ttl time.Duration, log *logger.Logger) *ProductCache {
	return &ProductCache{ProductRepository: next, c: c, ttl: ttl, log: nopIfNil(log)}
}

// ListActive lista productos activos desde la caché.
func (p *ProductCache) ListActive(ctx context.Context) ([]*entity.Product, error) {
	return cachedList(ctx, p.c, p.log, keyActiveProducts, p.ttl, p.ProductRepository.ListActive)
}

// Upsert escribe en la base e invalida la lista.
func (p *ProductCache) Upsert(ctx context.Context, product *entity.Product) error {
	if err := p.ProductRepository.Upsert(ctx, product); err != nil {
		return err
	}
	invalidate(ctx, p.c, p.log, keyActiveProducts)
	return nil
}

// ── Vendedores ────────────────────────────────────────────────────────────────

var _ repository.SellerRepository = (*SellerCache)(nil)

// SellerCache decora un SellerRepository.
type SellerCache struct {
	repository.SellerRepository
	c   *Client
	ttl time.Duration
	log *logger.Logger
}

// NewSellerCache construye el decorador.
func NewSellerCache(next repository.SellerRepository, c *Client, ttl time.Duration, log *logger.Logger) *SellerCache {
	return &SellerCache{SellerRepository: next, c: c, ttl: ttl, log: nopIfNil(log)}
}

func (s *SellerCache) ListActive(ctx context.Context) ([]*entity.Seller, error) {
	return cachedList(ctx, s.c, s.log, keyActiveSellers, s.ttl, s.SellerRepository.ListActive)
}

func (s *SellerCache) Upsert(ctx context.Context, seller *entity.Seller) error {
	if err := s.SellerRepository.Upsert(ctx, seller); err != nil {
		return err
	}
	invalidate(ctx, s.c, s.log, keyActiveSellers)
	return nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

var _ repository.CustomerRepository = (*CustomerCache)(nil)

// CustomerCache decora un CustomerRepository.
type CustomerCache struct {
	repository.CustomerRepository
	c   *Client
	ttl time.Duration
	log *logger.Logger
}

// NewCustomerCache construye el decorador.
func NewCustomerCache(next repository.CustomerRepository, c *Client, ttl time.Duration, log *logger.Logger) *CustomerCache {
	return &CustomerCache{CustomerRepository: next, c: c, ttl: ttl, log: nopIfNil(log)}
}

func (cc *CustomerCache) ListActive(ctx context.Context) ([]*entity.Customer, error) {
	return cachedList(ctx, cc.c, cc.log, keyActiveCustomers, cc.ttl, cc.CustomerRepository.ListActive)
}

func (cc *CustomerCache) Upsert(ctx context.Context, customer *entity.Customer) error {
	if err := cc.CustomerRepository.Upsert(ctx, customer); err != nil {
		return err
	}
	invalidate(ctx, cc.c, cc.log, keyActiveCustomers)
	return nil
}
