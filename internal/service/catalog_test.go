package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linemk/ld-shop/internal/domain/models"
	"github.com/linemk/ld-shop/internal/service"
)

func TestCatalogService(t *testing.T) {
	repo := newFakeProductRepo(
		&models.Product{ID: 1, Name: "Red Mug", Category: "kitchen", Price: decimal.NewFromInt(5), Status: models.ProductActive},
		&models.Product{ID: 2, Name: "Blue mug", Category: "kitchen", Price: decimal.NewFromInt(6), Status: models.ProductActive},
		&models.Product{ID: 3, Name: "T-shirt", Category: "clothes", Price: decimal.NewFromInt(7), Status: models.ProductActive},
		&models.Product{ID: 4, Name: "Old mug", Category: "archive", Price: decimal.NewFromInt(1), Status: models.ProductInactive},
	)
	catalogSvc := service.NewCatalogService(newTestLogger(), repo)
	ctx := context.Background()

	products, err := catalogSvc.List(ctx, "", "MUG")
	require.NoError(t, err)
	require.Len(t, products, 2, "Inactive products are hidden")
	assert.Equal(t, int64(2), products[0].ID, "Newest first")

	products, err = catalogSvc.List(ctx, "clothes", "")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	categories, err := catalogSvc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"clothes", "kitchen"}, categories)

	p, err := catalogSvc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "T-shirt", p.Name)

	_, err = catalogSvc.Get(ctx, 4)
	assert.ErrorIs(t, err, service.ErrNotFound)
	_, err = catalogSvc.Get(ctx, 404)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
