package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-bookstore/internal/domains/catalog/ports"
	platformcache "github.com/Apurer/go-gin-bookstore/internal/platform/cache"
	"github.com/Apurer/go-gin-bookstore/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

const (
	keyPrefix = "catalog:"
	listKey   = keyPrefix + "list"
)

// Repository is a read-through cache in front of another catalog repository.
// Writes go to the inner repository first and then invalidate the affected keys.
type Repository struct {
	inner  ports.Repository
	cache  platformcache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewRepository decorates inner with c. A non-positive ttl keeps entries until evicted.
func NewRepository(inner ports.Repository, c platformcache.Cache, ttl time.Duration, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{inner: inner, cache: c, ttl: ttl, logger: logger}
}

type cachedBook struct {
	Book *domain.Book `json:"book"`
	projection.Metadata
}

func bookKey(isbn string) string {
	return keyPrefix + "book:" + isbn
}

func (r *Repository) Save(ctx context.Context, book *domain.Book) (*projection.Projection[*domain.Book], error) {
	saved, err := r.inner.Save(ctx, book)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, bookKey(saved.Entity.ISBN), listKey)
	return saved, nil
}

func (r *Repository) GetByISBN(ctx context.Context, isbn string) (*projection.Projection[*domain.Book], error) {
	var hit cachedBook
	err := platformcache.GetJSON(ctx, r.cache, bookKey(isbn), &hit)
	if err == nil && hit.Book != nil {
		return fromCached(hit), nil
	}
	if err != nil && !errors.Is(err, platformcache.ErrCacheMiss) {
		r.logger.Warn("catalog cache read failed", slog.String("isbn", isbn), slog.String("error", err.Error()))
	}
	proj, err := r.inner.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	r.store(ctx, bookKey(isbn), toCached(proj))
	return proj, nil
}

func (r *Repository) Delete(ctx context.Context, isbn string) error {
	if err := r.inner.Delete(ctx, isbn); err != nil {
		return err
	}
	r.invalidate(ctx, bookKey(isbn), listKey)
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*projection.Projection[*domain.Book], error) {
	var hits []cachedBook
	err := platformcache.GetJSON(ctx, r.cache, listKey, &hits)
	if err == nil {
		list := make([]*projection.Projection[*domain.Book], 0, len(hits))
		for _, hit := range hits {
			list = append(list, fromCached(hit))
		}
		return list, nil
	}
	if !errors.Is(err, platformcache.ErrCacheMiss) {
		r.logger.Warn("catalog cache list read failed", slog.String("error", err.Error()))
	}
	list, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]cachedBook, 0, len(list))
	for _, proj := range list {
		entries = append(entries, toCached(proj))
	}
	r.store(ctx, listKey, entries)
	return list, nil
}

// Flush drops every catalog key, used at startup so a shared cache never outlives a reseeded store.
func (r *Repository) Flush(ctx context.Context) error {
	return r.cache.DeleteByPattern(ctx, keyPrefix+"*")
}

func (r *Repository) store(ctx context.Context, key string, value any) {
	if err := platformcache.SetJSON(ctx, r.cache, key, value, r.ttl); err != nil {
		r.logger.Warn("catalog cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (r *Repository) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Warn("catalog cache invalidation failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

func toCached(proj *projection.Projection[*domain.Book]) cachedBook {
	return cachedBook{Book: proj.Entity, Metadata: proj.Metadata}
}

func fromCached(hit cachedBook) *projection.Projection[*domain.Book] {
	return projection.New(hit.Book, hit.Metadata)
}
