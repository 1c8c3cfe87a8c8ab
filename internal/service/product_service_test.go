package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/apperr"
)

func TestProductCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.products.CreateProduct(ctx, CreateProductRequest{
		Name:         "Amoxicillin 500mg",
		Description:  "Capsules",
		Manufacturer: "GSK",
		HSCode:       "3004.10",
	})
	require.NoError(t, err)

	fetched, err := f.products.GetProduct(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	updated, err := f.products.UpdateProduct(ctx, created.ID.String(), UpdateProductRequest{
		Description: ptr("Capsules, 20 per strip"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Capsules, 20 per strip", updated.Description)
	assert.Equal(t, "Amoxicillin 500mg", updated.Name)
	assert.Equal(t, "GSK", updated.Manufacturer)
	assert.Equal(t, "3004.10", updated.HSCode)

	require.NoError(t, f.products.DeleteProduct(ctx, created.ID.String()))
	_, err = f.products.GetProduct(ctx, created.ID.String())
	assert.True(t, apperr.IsNotFound(err))
}

func TestDuplicateProductNameIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Paracetamol")

	_, err := f.products.CreateProduct(ctx, CreateProductRequest{Name: "Paracetamol"})
	assert.True(t, apperr.IsConflict(err))
}

func TestGetProductsSearchesByName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.product(t, "Paracetamol 500mg")
	f.product(t, "Ibuprofen")
	f.product(t, "paracetamol syrup")

	list, total, err := f.products.GetProducts(ctx, ProductListQuery{Name: "PARACETAMOL", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

func TestDeleteReferencedProductIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})

	err := f.products.DeleteProduct(ctx, order.Items[0].ProductID.String())
	assert.True(t, apperr.IsConflict(err))
}
