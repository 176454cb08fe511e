package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	categoriesCacheKey = "storefront-admin:categories"

	// bulkDeleteConcurrency bounds the parallel DELETEs of a bulk action
	bulkDeleteConcurrency = 4
)

// CatalogAPI is the part of the backend client the catalog service needs
type CatalogAPI interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, form *backend.Multipart) error
	UpdateCategory(ctx context.Context, id string, form *backend.Multipart) error
	DeleteCategory(ctx context.Context, id string) error
	DeleteProduct(ctx context.Context, id string) error
}

// BulkDeleteResult reports the outcome of deleting several products.
// There is no transactional guarantee: some ids may fail while others succeed.
type BulkDeleteResult struct {
	Deleted []string
	Failed  map[string]error
}

// Unauthorized reports whether any delete failed because the session expired.
func (r BulkDeleteResult) Unauthorized() bool {
	for _, err := range r.Failed {
		if errors.Is(err, backend.ErrUnauthorized) {
			return true
		}
	}
	return false
}

// CatalogService wraps category reads with a Redis cache and runs bulk product actions
type CatalogService struct {
	api    CatalogAPI
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogService creates a catalog service. A nil cache disables caching.
func NewCatalogService(api CatalogAPI, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{api: api, cache: cache, ttl: ttl, logger: logger}
}

// Categories returns the category list, served from Redis when fresh.
// Cache failures fall through to the backend.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.cache != nil && s.ttl > 0 {
		raw, err := s.cache.Get(ctx, categoriesCacheKey).Bytes()
		switch {
		case err == nil:
			var categories []domain.Category
			if jsonErr := json.Unmarshal(raw, &categories); jsonErr == nil {
				return categories, nil
			}
			s.logger.Warn("Discarding unreadable category cache entry")
		case !errors.Is(err, redis.Nil):
			s.logger.Warn("Category cache read failed", zap.Error(err))
		}
	}

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.ttl > 0 {
		if raw, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(ctx, categoriesCacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("Category cache write failed", zap.Error(err))
			}
		}
	}

	return categories, nil
}

// Invalidate drops the cached category list
func (s *CatalogService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, categoriesCacheKey).Err(); err != nil {
		s.logger.Warn("Category cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) CreateCategory(ctx context.Context, form *backend.Multipart) error {
	defer s.Invalidate(ctx)
	return s.api.CreateCategory(ctx, form)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, form *backend.Multipart) error {
	defer s.Invalidate(ctx)
	return s.api.UpdateCategory(ctx, id, form)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	defer s.Invalidate(ctx)
	return s.api.DeleteCategory(ctx, id)
}

// BulkDeleteProducts deletes every id with bounded concurrency and reports
// which deletes failed. Duplicate and blank ids are ignored.
func (s *CatalogService) BulkDeleteProducts(ctx context.Context, ids []string) BulkDeleteResult {
	result := BulkDeleteResult{Failed: map[string]error{}}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(bulkDeleteConcurrency)

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		g.Go(func() error {
			err := s.api.DeleteProduct(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[id] = err
				return nil
			}
			result.Deleted = append(result.Deleted, id)
			return nil
		})
	}
	g.Wait()

	// Keep the submitted order for display
	deleted := make(map[string]bool, len(result.Deleted))
	for _, id := range result.Deleted {
		deleted[id] = true
	}
	result.Deleted = result.Deleted[:0]
	for _, id := range ids {
		if deleted[id] {
			result.Deleted = append(result.Deleted, id)
			delete(deleted, id)
		}
	}

	if len(result.Failed) > 0 {
		s.logger.Warn("Bulk delete partially failed",
			zap.Int("deleted", len(result.Deleted)),
			zap.Int("failed", len(result.Failed)),
		)
	}

	return result
}

// Summary builds the toast shown after a bulk delete.
func (r BulkDeleteResult) Summary() string {
	switch {
	case len(r.Failed) == 0:
		return fmt.Sprintf("%d product(s) deleted successfully", len(r.Deleted))
	case len(r.Deleted) == 0:
		return fmt.Sprintf("Failed to delete %d product(s)", len(r.Failed))
	default:
		return fmt.Sprintf("%d product(s) deleted, %d failed", len(r.Deleted), len(r.Failed))
	}
}
