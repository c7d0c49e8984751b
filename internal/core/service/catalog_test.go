package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/service"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Red Tomatoes", Category: "Vegetables", Description: "vine ripened"},
		{ID: 2, Name: "Goat Milk", Category: "Dairy"},
		{ID: 3, Name: "Carrots", Category: "Vegetables", Description: "Sweet and CRUNCHY"},
		{ID: 4, Name: "Mystery box", Category: ""},
		{ID: 5, Name: "Cheddar", Category: "Dairy", Description: "aged tomato-free"},
	}
}

func ids(ps []domain.Product) []int64 {
	out := make([]int64, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestFilterProducts(t *testing.T) {
	ps := sampleProducts()

	tests := []struct {
		name     string
		category string
		search   string
		want     []int64
	}{
		{"AllNoSearch", service.AllCategories, "", []int64{1, 2, 3, 4, 5}},
		{"EmptyCategoryIsAll", "", "", []int64{1, 2, 3, 4, 5}},
		{"CategoryOnly", "Dairy", "", []int64{2, 5}},
		{"SearchName", service.AllCategories, "tomato", []int64{1, 5}},
		{"SearchDescriptionIgnoresCase", service.AllCategories, "crunchy", []int64{3}},
		{"SearchTrimmed", service.AllCategories, "  milk ", []int64{2}},
		{"WhitespaceSearchMatchesAll", service.AllCategories, "   ", []int64{1, 2, 3, 4, 5}},
		{"CategoryAndSearch", "Vegetables", "tomato", []int64{1}},
		{"UnknownCategory", "Fruit", "", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.FilterProducts(ps, tt.category, tt.search)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterProductsIsSubsetInOrder(t *testing.T) {
	ps := sampleProducts()
	for _, c := range service.ProductCategories(ps) {
		for _, s := range []string{"", "e", "o", "zzz"} {
			got := service.FilterProducts(ps, c, s)
			j := 0
			for _, p := range got {
				for j < len(ps) && ps[j].ID != p.ID {
					j++
				}
				require.Less(t, j, len(ps), "category %q search %q", c, s)
			}
		}
	}
}

func TestProductCategories(t *testing.T) {
	assert.Equal(t,
		[]string{"All", "Vegetables", "Dairy"},
		service.ProductCategories(sampleProducts()),
	)
	assert.Equal(t, []string{"All"}, service.ProductCategories(nil))
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadAndFilter", func(t *testing.T) {
		api := new(mockAPI)
		api.On("ListProducts", mock.Anything).Return(sampleProducts(), nil).Once()

		c := service.NewCatalog(api)
		require.NoError(t, c.Load(ctx))

		assert.Equal(t, service.AllCategories, c.Category())
		assert.Len(t, c.Filtered(), 5)

		c.SetCategory("Dairy")
		assert.Equal(t, []int64{2, 5}, ids(c.Filtered()))

		c.SetSearch("ched")
		assert.Equal(t, []int64{5}, ids(c.Filtered()))

		c.SetCategory("")
		assert.Equal(t, service.AllCategories, c.Category())
		assert.Equal(t, []int64{5}, ids(c.Filtered()))
		assert.Equal(t, []string{"All", "Vegetables", "Dairy"}, c.Categories())
		api.AssertExpectations(t)
	})

	t.Run("FailureKeepsPreviousList", func(t *testing.T) {
		api := new(mockAPI)
		api.On("ListProducts", mock.Anything).Return(sampleProducts(), nil).Once()
		api.On("ListProducts", mock.Anything).Return(nil, errors.New("boom")).Once()

		c := service.NewCatalog(api)
		require.NoError(t, c.Load(ctx))
		err := c.Refresh(ctx)
		require.Error(t, err)
		assert.Len(t, c.Products(), 5)
		assert.False(t, c.Loading())
	})

	t.Run("FailureOnFirstLoadLeavesEmpty", func(t *testing.T) {
		api := new(mockAPI)
		api.On("ListProducts", mock.Anything).Return(nil, errors.New("offline"))

		c := service.NewCatalog(api)
		assert.Error(t, c.Load(ctx))
		assert.Empty(t, c.Products())
		assert.Equal(t, []string{"All"}, c.Categories())
	})

	t.Run("LatestIssuedLoadWins", func(t *testing.T) {
		var calls atomic.Int32
		entered := make(chan struct{})
		release := make(chan struct{})
		lister := listerFunc(func(ctx context.Context) ([]domain.Product, error) {
			if calls.Add(1) == 1 {
				close(entered)
				<-release
				return []domain.Product{{ID: 100, Name: "old"}}, nil
			}
			return []domain.Product{{ID: 200, Name: "new"}}, nil
		})

		c := service.NewCatalog(lister)

		done := make(chan error)
		go func() { done <- c.Load(ctx) }()
		<-entered
		assert.True(t, c.Loading())

		require.NoError(t, c.Load(ctx))
		close(release)
		require.NoError(t, <-done)

		assert.Equal(t, []int64{200}, ids(c.Products()))
		assert.False(t, c.Loading())
	})
}
