package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yfin/finsync/internal/domain"
	"github.com/yfin/finsync/internal/remote"
	"github.com/yfin/finsync/internal/store/memory"
)

type fakeCategoryAPI struct {
	online           bool
	categories       []domain.Category
	calls            int
	byDirectionCalls int
}

func (f *fakeCategoryAPI) Categories(ctx context.Context) ([]domain.Category, error) {
	f.calls++
	if !f.online {
		return nil, &remote.Error{Kind: remote.KindTransport}
	}
	return f.categories, nil
}

func (f *fakeCategoryAPI) CategoriesByDirection(ctx context.Context, isIncome bool) ([]domain.Category, error) {
	f.byDirectionCalls++
	if !f.online {
		return nil, &remote.Error{Kind: remote.KindTransport}
	}
	var out []domain.Category
	for _, cat := range f.categories {
		if cat.IsIncome == isIncome {
			out = append(out, cat)
		}
	}
	return out, nil
}

var testCategories = []domain.Category{
	{ID: 1, Name: "Food", Emoji: '🍔'},
	{ID: 2, Name: "Salary", Emoji: '💼', IsIncome: true},
	{ID: 3, Name: "Rent", Emoji: '🏠'},
}

func TestAll_OnlineRefreshesCache(t *testing.T) {
	ctx := context.Background()
	api := &fakeCategoryAPI{online: true, categories: testCategories}
	cache := memory.NewCategoryStore()
	svc := NewCategoryService(api, cache)

	got, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	cached, err := cache.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCategories, cached)
}

func TestAll_OfflineServesCache(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCategoryStore()
	svc := NewCategoryService(&fakeCategoryAPI{online: false}, cache)

	_, err := svc.All(ctx)
	assert.Error(t, err, "empty cache and no network")

	require.NoError(t, cache.SaveAll(ctx, testCategories))
	got, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestByDirection_UsesFilteredEndpoint(t *testing.T) {
	ctx := context.Background()
	api := &fakeCategoryAPI{online: true, categories: testCategories}
	svc := NewCategoryService(api, memory.NewCategoryStore())

	income, err := svc.ByDirection(ctx, domain.Income)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Salary", income[0].Name)

	outcome, err := svc.ByDirection(ctx, domain.Outcome)
	require.NoError(t, err)
	assert.Len(t, outcome, 2)

	assert.Equal(t, 2, api.byDirectionCalls, "the server filters, not the client")
	assert.Zero(t, api.calls)
}

func TestByDirection_OfflineFiltersCache(t *testing.T) {
	ctx := context.Background()
	cache := memory.NewCategoryStore()
	svc := NewCategoryService(&fakeCategoryAPI{online: false}, cache)

	_, err := svc.ByDirection(ctx, domain.Income)
	assert.Error(t, err, "empty cache and no network")

	require.NoError(t, cache.SaveAll(ctx, testCategories))
	income, err := svc.ByDirection(ctx, domain.Income)
	require.NoError(t, err)
	require.Len(t, income, 1)
	assert.Equal(t, "Salary", income[0].Name)
}

func TestByID(t *testing.T) {
	ctx := context.Background()
	svc := NewCategoryService(&fakeCategoryAPI{online: true, categories: testCategories}, memory.NewCategoryStore())

	cat, err := svc.ByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Salary", cat.Name)

	_, err = svc.ByID(ctx, 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
