// Package catalog is the read-through cache for category reference data:
// remote fetch first, local cache persisted on success, local fallback when
// the remote is unreachable.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/logger"
	"github.com/yfin/finsync/internal/store"
)

// ErrCategoryNotFound is returned when a category id is absent both remotely
// and locally.
var ErrCategoryNotFound = errors.New("catalog: category not found")

// CategoryAPI is the slice of the remote client the catalog needs.
type CategoryAPI interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	CategoriesByDirection(ctx context.Context, isIncome bool) ([]domain.Category, error)
}

// CategoryService serves categories to the engine and the UI.
type CategoryService struct {
	api   CategoryAPI
	cache store.CategoryStore
}

// NewCategoryService builds the read-through category cache.
func NewCategoryService(api CategoryAPI, cache store.CategoryStore) *CategoryService {
	return &CategoryService{api: api, cache: cache}
}

// All fetches the category list from the server and refreshes the cache. On
// remote failure it serves the cached list; the remote error propagates only
// when the cache is empty as well.
func (s *CategoryService) All(ctx context.Context) ([]domain.Category, error) {
	log := logger.FromContext(ctx)

	categories, err := s.api.Categories(ctx)
	if err == nil {
		if saveErr := s.cache.SaveAll(ctx, categories); saveErr != nil {
			log.Warn().Err(saveErr).Msg("Failed to cache categories locally")
		}
		return categories, nil
	}

	log.Warn().Err(err).Msg("Category fetch failed, falling back to local cache")
	cached, cacheErr := s.cache.Load(ctx)
	if cacheErr != nil || len(cached) == 0 {
		return nil, fmt.Errorf("catalog: remote and local categories unavailable: %w", err)
	}
	return cached, nil
}

// ByDirection fetches only income or only outcome categories from the server.
// On remote failure it filters the cached list instead; the remote error
// propagates only when the cache is empty as well.
func (s *CategoryService) ByDirection(ctx context.Context, d domain.Direction) ([]domain.Category, error) {
	categories, err := s.api.CategoriesByDirection(ctx, d == domain.Income)
	if err == nil {
		return categories, nil
	}

	log := logger.FromContext(ctx)
	log.Warn().Err(err).Msg("Category fetch failed, falling back to local cache")
	cached, cacheErr := s.cache.Load(ctx)
	if cacheErr != nil || len(cached) == 0 {
		return nil, fmt.Errorf("catalog: remote and local categories unavailable: %w", err)
	}
	out := make([]domain.Category, 0, len(cached))
	for _, cat := range cached {
		if cat.Direction() == d {
			out = append(out, cat)
		}
	}
	return out, nil
}

// ByID resolves one category through the same remote-then-local path.
func (s *CategoryService) ByID(ctx context.Context, id int) (domain.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	for _, cat := range all {
		if cat.ID == id {
			return cat, nil
		}
	}
	return domain.Category{}, fmt.Errorf("%w: id %d", ErrCategoryNotFound, id)
}
