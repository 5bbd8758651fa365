// Package rediscache keeps catalog responses in Redis for a short time.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.CatalogClient = (*Catalog)(nil)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMiss is returned by [KV.Get] for absent keys.
var ErrMiss = errors.New("cache miss")

const (
	keyPrefix   = "storefront:catalog:"
	productsKey = keyPrefix + "products"
)

type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Catalog serves products from the cache and falls through to the
// upstream client on a miss. Cache errors never fail a request.
type Catalog struct {
	upstream port.CatalogClient
	kv       KV
	ttl      time.Duration
}

func NewCatalog(upstream port.CatalogClient, kv KV, ttl time.Duration) Catalog {
	return Catalog{upstream: upstream, kv: kv, ttl: ttl}
}

func (c Catalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Catalog.ListProducts"

	var cached []domain.Product
	if c.load(ctx, productsKey, &cached) {
		return cached, nil
	}

	ps, err := c.upstream.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.store(ctx, productsKey, ps)
	return ps, nil
}

func (c Catalog) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	const op = "Catalog.GetProduct"

	key := keyPrefix + "product:" + strconv.Itoa(id)

	var cached domain.Product
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	p, err := c.upstream.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	c.store(ctx, key, p)
	return p, nil
}

func (c Catalog) load(ctx context.Context, key string, v any) bool {
	const op = "Catalog.load"
	log := slog.With("op", op)

	b, err := c.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			log.Warn("failed to read cache", "key", key, "err", err)
		}
		return false
	}

	if err := json.Unmarshal(b, v); err != nil {
		log.Warn("failed to decode cached value", "key", key, "err", err)
		return false
	}
	return true
}

func (c Catalog) store(ctx context.Context, key string, v any) {
	const op = "Catalog.store"
	log := slog.With("op", op)

	b, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to encode value", "key", key, "err", err)
		return
	}

	if err := c.kv.Set(ctx, key, b, c.ttl); err != nil {
		log.Warn("failed to write cache", "key", key, "err", err)
	}
}

// RedisKV is a [KV] on top of a Redis client.
type RedisKV struct {
	cl *redis.Client
}

// NewRedisKV connects to addr and checks the connection.
func NewRedisKV(ctx context.Context, addr, password string, db int) (RedisKV, error) {
	const op = "rediscache.NewRedisKV"

	cl := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return RedisKV{}, fmt.Errorf("%s: redis unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op, "addr", addr)
	return RedisKV{cl}, nil
}

func (r RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.cl.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r RedisKV) Set(
	ctx context.Context, key string, value []byte, ttl time.Duration,
) error {
	return r.cl.Set(ctx, key, value, ttl).Err()
}

func (r RedisKV) Close() {
	const op = "RedisKV.Close"
	log := slog.With("op", op)

	log.Info("closing redis client...")
	if err := r.cl.Close(); err != nil {
		log.Error("failed to close", "err", err)
		return
	}
	log.Info("redis client is closed")
}
