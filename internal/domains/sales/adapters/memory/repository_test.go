package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

func buildSale(t *testing.T, number, customer, branch string) *domain.Sale {
	t.Helper()
	sale := domain.NewSale(number, customer, branch)
	_, err := sale.AddItem(uuid.New(), "Widget", 5, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	sale.ClearEvents()
	return sale
}

func TestSaveAndGetByID(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	sale := buildSale(t, "S-1", "C", "B")

	saved, err := repo.Save(ctx, sale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	fetched, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-1", fetched.SaleNumber)
	require.Len(t, fetched.Items, 1)

	// The stored copy is isolated from caller mutations.
	fetched.Items[0].Quantity = 1
	again, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Items[0].Quantity)
}

func TestGetByNumber(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	sale := buildSale(t, "S-42", "C", "B")
	_, err := repo.Save(ctx, sale)
	require.NoError(t, err)

	fetched, err := repo.GetByNumber(ctx, "S-42")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, fetched.ID)

	_, err = repo.GetByNumber(ctx, "S-43")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSave_DuplicateNumber(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	_, err := repo.Save(ctx, buildSale(t, "S-1", "C", "B"))
	require.NoError(t, err)

	_, err = repo.Save(ctx, buildSale(t, "S-1", "Other", "B"))
	require.ErrorIs(t, err, ports.ErrDuplicateNumber)
}

func TestSave_ConcurrentUpdateDetected(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	sale := buildSale(t, "S-1", "C", "B")
	_, err := repo.Save(ctx, sale)
	require.NoError(t, err)

	first, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, sale.ID)
	require.NoError(t, err)

	require.NoError(t, first.UpdateItemQuantity(first.Items[0].ID, 10))
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	require.NoError(t, second.UpdateItemQuantity(second.Items[0].ID, 2))
	_, err = repo.Save(ctx, second)
	require.ErrorIs(t, err, ports.ErrConcurrentUpdate)
}

func TestDelete(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	sale := buildSale(t, "S-1", "C", "B")
	_, err := repo.Save(ctx, sale)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, sale.ID))
	_, err = repo.GetByID(ctx, sale.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, sale.ID), ports.ErrNotFound)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	for i, customer := range []string{"Alice", "Alice", "Bob"} {
		sale := buildSale(t, "S-"+string(rune('1'+i)), customer, "Main")
		_, err := repo.Save(ctx, sale)
		require.NoError(t, err)
	}
	other := buildSale(t, "S-9", "Alice", "Annex")
	_, err := repo.Save(ctx, other)
	require.NoError(t, err)

	page, err := repo.List(ctx, ports.Filter{Customer: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Sales, 3)

	page, err = repo.List(ctx, ports.Filter{Customer: "Alice", Branch: "Main"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = repo.List(ctx, ports.Filter{Customer: "Alice", Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Sales, 2)

	page, err = repo.List(ctx, ports.Filter{Customer: "Alice", Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Len(t, page.Sales, 1)

	page, err = repo.List(ctx, ports.Filter{Customer: "Alice", Page: 5, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Sales)
}

func TestList_DateRange(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	sale := buildSale(t, "S-1", "C", "B")
	_, err := repo.Save(ctx, sale)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	page, err := repo.List(ctx, ports.Filter{From: &past, To: &future})
	require.NoError(t, err)
	assert.Len(t, page.Sales, 1)

	page, err = repo.List(ctx, ports.Filter{To: &past})
	require.NoError(t, err)
	assert.Empty(t, page.Sales)

	page, err = repo.List(ctx, ports.Filter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, page.Sales)
}
