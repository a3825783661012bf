//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
	"github.com/devstore/sales-api/internal/platform/migrations"
)

func setupSalesPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("sales_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newPersistedSale(t *testing.T, repo *Repository, number string) *domain.Sale {
	t.Helper()
	sale := domain.NewSale(number, "Acme Corp", "Main Street")
	_, err := sale.AddItem(uuid.New(), "Widget", 5, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	_, err = sale.AddItem(uuid.New(), "Gadget", 12, decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	sale.ClearEvents()

	saved, err := repo.Save(context.Background(), sale)
	require.NoError(t, err)
	return saved
}

func TestRepository_SaveAndGetByID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved := newPersistedSale(t, repo, "S-1")
	assert.Equal(t, int64(1), saved.Version)

	fetched, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-1", fetched.SaleNumber)
	require.Len(t, fetched.Items, 2)
	// Item order survives the roundtrip.
	assert.Equal(t, "Widget", fetched.Items[0].ProductName)
	assert.Equal(t, "Gadget", fetched.Items[1].ProductName)
	assert.True(t, fetched.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, fetched.Items[1].DiscountPercentage.Equal(decimal.NewFromInt(20)))
	assert.True(t, fetched.TotalAmount().Equal(decimal.RequireFromString("930.00")))

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_GetByNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved := newPersistedSale(t, repo, "S-77")

	fetched, err := repo.GetByNumber(ctx, "S-77")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fetched.ID)

	_, err = repo.GetByNumber(ctx, "missing")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_DuplicateSaleNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	newPersistedSale(t, repo, "S-1")

	dup := domain.NewSale("S-1", "Other", "Branch")
	_, err := dup.AddItem(uuid.New(), "Widget", 1, decimal.RequireFromString("1.00"))
	require.NoError(t, err)

	_, err = repo.Save(context.Background(), dup)
	require.ErrorIs(t, err, ports.ErrDuplicateNumber)
}

func TestRepository_UpdateReplacesItemsAndBumpsVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved := newPersistedSale(t, repo, "S-1")
	require.NoError(t, saved.RemoveItem(saved.Items[0].ID))
	require.NoError(t, saved.UpdateItemQuantity(saved.Items[0].ID, 3))

	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, 3, updated.Items[0].Quantity)
	assert.True(t, updated.Items[0].DiscountPercentage.IsZero())
}

func TestRepository_ConcurrentUpdateRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved := newPersistedSale(t, repo, "S-1")

	first, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)

	require.NoError(t, first.UpdateItemQuantity(first.Items[0].ID, 10))
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	require.NoError(t, second.UpdateItemQuantity(second.Items[0].ID, 2))
	_, err = repo.Save(ctx, second)
	require.ErrorIs(t, err, ports.ErrConcurrentUpdate)
}

func TestRepository_DeleteCascadesItems(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved := newPersistedSale(t, repo, "S-1")
	require.NoError(t, repo.Delete(ctx, saved.ID))

	_, err := repo.GetByID(ctx, saved.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&saleItemRecord{}).Where("sale_id = ?", saved.ID).Count(&count).Error)
	assert.Zero(t, count)

	require.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
}

func TestRepository_ListFiltersAndPaginates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupSalesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for _, seed := range []struct {
		number   string
		customer string
		branch   string
	}{
		{"S-1", "Alice", "Main"},
		{"S-2", "Alice", "Main"},
		{"S-3", "Alice", "Annex"},
		{"S-4", "Bob", "Main"},
	} {
		sale := domain.NewSale(seed.number, seed.customer, seed.branch)
		_, err := sale.AddItem(uuid.New(), "Widget", 1, decimal.RequireFromString("10.00"))
		require.NoError(t, err)
		_, err = repo.Save(ctx, sale)
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, ports.Filter{Customer: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)

	page, err = repo.List(ctx, ports.Filter{Customer: "Alice", Branch: "Main", Page: 1, Size: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Sales, 1)
	require.Len(t, page.Sales[0].Items, 1)

	future := time.Now().Add(time.Hour)
	page, err = repo.List(ctx, ports.Filter{From: &future})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
