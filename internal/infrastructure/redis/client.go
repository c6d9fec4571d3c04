// Package redis implementa la caché opcional del catálogo (productos, vendedores y clientes activos).
// Las ventas nunca pasan por aquí: el motor lee el catálogo dentro de su transacción.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/punto-venta/pkg/config"
)

const keyNamespace = "pos"

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client envoltura mínima sobre go-redis.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// New abre la conexión y verifica que Redis responda.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	raw := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Client{store: raw, raw: raw}, nil
}

// Ping para health checks.
func (c *Client) Ping(ctx context.Context) error {
	return c.store.Ping(ctx).Err()
}

// Close libera el pool de conexiones.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// get devuelve (nil, nil) si la llave no existe.
func (c *Client) get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.store.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *Client) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.store.Set(ctx, key, value, ttl).Err()
}

func (c *Client) del(ctx context.Context, keys ...string) error {
	return c.store.Del(ctx, keys...).Err()
}

// Key arma una llave con el espacio de nombres del servicio.
func Key(parts ...string) string {
	return keyNamespace + ":" + strings.Join(parts, ":")
}
