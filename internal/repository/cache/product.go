// Package cache wraps a ProductRepository with a Redis read-through cache.
//
// Every key embeds a generation number that each write increments, so one
// INCR invalidates all cached lists and products at once. Stale generations
// expire through their TTL. Redis failures are logged and the call falls
// through to the wrapped repository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/internal/repository"
	"github.com/kaifgrit/Rifakat/pkg/database"
)

const keyPrefix = "rifakat:products:"

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "product_cache_lookups_total",
		Help: "Product cache lookups by kind and result (hit, miss, error).",
	},
	[]string{"kind", "result"},
)

// ProductRepository caches List and GetByID of the wrapped repository.
type ProductRepository struct {
	next   repository.ProductRepository
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository wraps next.
func NewProductRepository(next repository.ProductRepository, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func genKey() string { return keyPrefix + "gen" }

func listKey(gen int64, category string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":list:" + category
}

func itemKey(gen int64, id string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":id:" + id
}

// List serves from cache when possible.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.List(ctx, filter)
	}
	key := listKey(gen, filter.Category)

	var products []domain.Product
	if r.get(ctx, "list", key, &products) {
		return products, nil
	}

	products, err := r.next.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, products)
	return products, nil
}

// GetByID serves from cache when possible. Not-found results are not cached.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	gen, ok := r.generation(ctx)
	if !ok {
		return r.next.GetByID(ctx, id)
	}
	key := itemKey(gen, id)

	var p domain.Product
	if r.get(ctx, "item", key, &p) {
		return &p, nil
	}

	got, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.set(ctx, key, got)
	return got, nil
}

// GetByIDs always reads the store; it feeds updates and deletes.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	return r.next.GetByIDs(ctx, ids)
}

// Create writes through and invalidates.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Update writes through and invalidates.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := r.next.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Delete writes through and invalidates.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// DeleteMany writes through and invalidates when anything was removed.
func (r *ProductRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	n, err := r.next.DeleteMany(ctx, ids)
	if err != nil {
		return n, err
	}
	if n > 0 {
		r.invalidate(ctx)
	}
	return n, nil
}

func (r *ProductRepository) generation(ctx context.Context) (int64, bool) {
	gen, err := r.client.Get(ctx, genKey()).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		r.warn(ctx, "read cache generation", err)
		return 0, false
	}
	return gen, true
}

func (r *ProductRepository) get(ctx context.Context, kind, key string, dst any) bool {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "GET", key)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		end(nil)
		cacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
	end(err)
	if err != nil {
		cacheLookups.WithLabelValues(kind, "error").Inc()
		r.warn(ctx, "read cache", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		cacheLookups.WithLabelValues(kind, "error").Inc()
		r.warn(ctx, "decode cached value", err)
		return false
	}
	cacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (r *ProductRepository) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.warn(ctx, "encode cache value", err)
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.warn(ctx, "write cache", err)
	}
}

func (r *ProductRepository) invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, genKey()).Err(); err != nil {
		r.warn(ctx, "invalidate cache", fmt.Errorf("incr generation: %w", err))
	}
}

func (r *ProductRepository) warn(ctx context.Context, what string, err error) {
	r.logger.WarnContext(ctx, "product cache: "+what+" failed",
		slog.String("error", err.Error()),
	)
}
