package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

func TestRunInTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	boom := errors.New("boom")
	err := repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, repos.Suppliers.Create(txCtx, &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeLocal}))
		_, err := repos.Sequences.Next(txCtx, "PO-20250101")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := repos.Suppliers.List(ctx, repository.SupplierFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	next, err := repos.Sequences.Next(ctx, "PO-20250101")
	require.NoError(t, err)
	assert.Equal(t, int64(2), next, "sequence values are never reused")
}

func TestNestedRunInTxJoinsOuter(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	err := repos.Tx.RunInTx(ctx, func(txCtx context.Context) error {
		return repos.Tx.RunInTx(txCtx, func(inner context.Context) error {
			return repos.Suppliers.Create(inner, &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeLocal})
		})
	})
	require.NoError(t, err)

	_, total, err := repos.Suppliers.List(ctx, repository.SupplierFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSupplierNameIsUnique(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	require.NoError(t, repos.Suppliers.Create(ctx, &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeLocal}))
	err := repos.Suppliers.Create(ctx, &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeImport})
	assert.True(t, repository.IsDuplicateOn(err, model.IdxSupplierName))
}

func TestPurchaseOrderItemsKeepSerialOrder(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	supplier := &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeLocal}
	require.NoError(t, repos.Suppliers.Create(ctx, supplier))
	product := &model.Product{Name: "Paracetamol"}
	require.NoError(t, repos.Products.Create(ctx, product))

	order := &model.PurchaseOrder{
		PONumber:     "PO-20250101-0001",
		SupplierID:   supplier.ID,
		SupplierType: supplier.SupplierType,
		Items: []model.PurchaseOrderItem{
			{ProductID: product.ID, SN: 2, Quantity: 1, Rate: 1, Total: 1},
			{ProductID: product.ID, SN: 1, Quantity: 2, Rate: 1, Total: 2},
		},
	}
	require.NoError(t, repos.PurchaseOrders.Create(ctx, order))
	assert.NotEqual(t, uuid.Nil, order.Items[0].ID)

	found, err := repos.PurchaseOrders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	assert.Equal(t, 1, found.Items[0].SN)
	assert.Equal(t, 2, found.Items[1].SN)
	require.NotNil(t, found.Supplier)
	assert.Equal(t, "Acme", found.Supplier.Name)
	assert.Equal(t, model.POStatusPending, found.Status)

	err = repos.Suppliers.Delete(ctx, supplier.ID)
	assert.ErrorIs(t, err, repository.ErrReferenced)

	_, err = repos.PurchaseOrders.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLatestNumberOrdersWideSequencesLast(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	supplier := &model.Supplier{Name: "Acme", SupplierType: model.SupplierTypeLocal}
	require.NoError(t, repos.Suppliers.Create(ctx, supplier))
	for _, number := range []string{"PO-20250101-9999", "PO-20250101-10000", "PO-20250101-0002", "PO-20250102-0001"} {
		require.NoError(t, repos.PurchaseOrders.Create(ctx, &model.PurchaseOrder{
			PONumber: number, SupplierID: supplier.ID, SupplierType: supplier.SupplierType,
		}))
	}

	latest, err := repos.PurchaseOrders.LatestNumber(ctx, "PO-20250101")
	require.NoError(t, err)
	assert.Equal(t, "PO-20250101-10000", latest)

	latest, err = repos.PurchaseOrders.LatestNumber(ctx, "PO-20250103")
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestSequenceRaiseNeverLowers(t *testing.T) {
	ctx := context.Background()
	repos := New().Repositories()

	require.NoError(t, repos.Sequences.Raise(ctx, "QC-20250101", 7))
	require.NoError(t, repos.Sequences.Raise(ctx, "QC-20250101", 3))
	next, err := repos.Sequences.Next(ctx, "QC-20250101")
	require.NoError(t, err)
	assert.Equal(t, int64(8), next)
}
