package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

type fakeSaleRepo struct {
	sales map[uuid.UUID]*domain.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: map[uuid.UUID]*domain.Sale{}}
}

func (f *fakeSaleRepo) Save(_ context.Context, sale *domain.Sale) (*domain.Sale, error) {
	clone := sale.Clone()
	f.sales[sale.ID] = clone
	return clone.Clone(), nil
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	if sale, ok := f.sales[id]; ok {
		return sale.Clone(), nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeSaleRepo) GetByNumber(_ context.Context, saleNumber string) (*domain.Sale, error) {
	for _, sale := range f.sales {
		if sale.SaleNumber == saleNumber {
			return sale.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeSaleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sales[id]; !ok {
		return ports.ErrNotFound
	}
	delete(f.sales, id)
	return nil
}

func (f *fakeSaleRepo) List(_ context.Context, _ ports.Filter) (*ports.Page, error) {
	page := &ports.Page{}
	for _, sale := range f.sales {
		page.Sales = append(page.Sales, sale.Clone())
	}
	page.Total = int64(len(page.Sales))
	return page, nil
}

type capturePublisher struct {
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, events ...domain.Event) {
	p.events = append(p.events, events...)
}

func money(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func itemInput(name string, quantity int, unitPrice string) saletypes.ItemInput {
	return saletypes.ItemInput{
		ProductID:   uuid.New(),
		ProductName: name,
		Quantity:    quantity,
		UnitPrice:   money(unitPrice),
	}
}

func TestCreateSale_PersistsAndPublishes(t *testing.T) {
	repo := newFakeSaleRepo()
	publisher := &capturePublisher{}
	svc := NewService(repo, publisher)

	saved, err := svc.CreateSale(context.Background(), saletypes.CreateSaleInput{
		SaleNumber: "S-1",
		Customer:   "C",
		Branch:     "B",
		Items:      []saletypes.ItemInput{itemInput("Widget", 5, "100.00")},
	})
	require.NoError(t, err)

	require.Len(t, saved.Items, 1)
	assert.True(t, saved.Items[0].DiscountPercentage.Equal(decimal.NewFromInt(10)))
	assert.True(t, saved.TotalAmount().Equal(money("450.00")))
	assert.Empty(t, saved.Events())

	require.Len(t, publisher.events, 2)
	assert.Equal(t, "sales.sale.created", publisher.events[0].EventName())
	assert.Equal(t, "sales.sale.modified", publisher.events[1].EventName())

	stored, err := repo.GetByID(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-1", stored.SaleNumber)
}

func TestCreateSale_DuplicateNumber(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewService(repo, nil)

	input := saletypes.CreateSaleInput{
		SaleNumber: "S-1",
		Customer:   "C",
		Branch:     "B",
		Items:      []saletypes.ItemInput{itemInput("Widget", 5, "100.00")},
	}
	_, err := svc.CreateSale(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.CreateSale(context.Background(), input)
	require.ErrorIs(t, err, ErrDuplicateSaleNumber)
	require.Len(t, repo.sales, 1)
}

func TestCreateSale_RejectsInvalidAggregate(t *testing.T) {
	repo := newFakeSaleRepo()
	publisher := &capturePublisher{}
	svc := NewService(repo, publisher)

	_, err := svc.CreateSale(context.Background(), saletypes.CreateSaleInput{
		SaleNumber: "S-1",
		Customer:   "C",
		Branch:     "B",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrNoActiveItems)
	assert.Empty(t, repo.sales)
	assert.Empty(t, publisher.events)
}

func TestCreateSale_RejectsOversizedItem(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewService(repo, nil)

	_, err := svc.CreateSale(context.Background(), saletypes.CreateSaleInput{
		SaleNumber: "S-1",
		Customer:   "C",
		Branch:     "B",
		Items:      []saletypes.ItemInput{itemInput("X", 25, "10.00")},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrQuantityAboveLimit)
	assert.Empty(t, repo.sales)
}

func seedSale(t *testing.T, repo *fakeSaleRepo, items ...saletypes.ItemInput) *domain.Sale {
	t.Helper()
	sale := domain.NewSale("S-1", "C", "B")
	for _, item := range items {
		_, err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice)
		require.NoError(t, err)
	}
	sale.ClearEvents()
	stored, err := repo.Save(context.Background(), sale)
	require.NoError(t, err)
	return stored
}

func TestUpdateSale_DiffsRequestedItems(t *testing.T) {
	repo := newFakeSaleRepo()
	publisher := &capturePublisher{}
	svc := NewService(repo, publisher)

	widget := itemInput("Widget", 5, "100.00")
	gadget := itemInput("Gadget", 3, "50.00")
	sale := seedSale(t, repo, widget, gadget)

	sprocket := itemInput("Sprocket", 2, "25.00")
	updated, err := svc.UpdateSale(context.Background(), saletypes.UpdateSaleInput{
		ID: sale.ID,
		Items: []saletypes.ItemInput{
			{ProductID: gadget.ProductID, ProductName: "Gadget", Quantity: 10, UnitPrice: money("50.00")},
			sprocket,
		},
	})
	require.NoError(t, err)

	// Widget was omitted: hard-deleted, not cancelled.
	require.Len(t, updated.Items, 2)
	assert.Nil(t, updated.ActiveItemForProduct(widget.ProductID))

	gadgetItem := updated.ActiveItemForProduct(gadget.ProductID)
	require.NotNil(t, gadgetItem)
	assert.Equal(t, 10, gadgetItem.Quantity)
	assert.True(t, gadgetItem.DiscountPercentage.Equal(decimal.NewFromInt(20)))

	sprocketItem := updated.ActiveItemForProduct(sprocket.ProductID)
	require.NotNil(t, sprocketItem)
	assert.Equal(t, 2, sprocketItem.Quantity)

	assert.NotEmpty(t, publisher.events)
}

func TestUpdateSale_AbortsWholeUpdateOnFailure(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewService(repo, nil)

	widget := itemInput("Widget", 5, "100.00")
	sale := seedSale(t, repo, widget)

	_, err := svc.UpdateSale(context.Background(), saletypes.UpdateSaleInput{
		ID: sale.ID,
		Items: []saletypes.ItemInput{
			itemInput("Broken", 25, "10.00"),
		},
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	// The stored sale is untouched, including the item the diff would have removed.
	stored, err := repo.GetByID(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, widget.ProductID, stored.Items[0].ProductID)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestUpdateSale_NotFound(t *testing.T) {
	svc := NewService(newFakeSaleRepo(), nil)

	_, err := svc.UpdateSale(context.Background(), saletypes.UpdateSaleInput{ID: uuid.New()})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCancelSale_ReportsRepeatCancellation(t *testing.T) {
	repo := newFakeSaleRepo()
	publisher := &capturePublisher{}
	svc := NewService(repo, publisher)
	sale := seedSale(t, repo, itemInput("Widget", 5, "100.00"))

	cancelled, err := svc.CancelSale(context.Background(), saletypes.SaleIdentifier{ID: sale.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "sales.sale.cancelled", publisher.events[0].EventName())

	_, err = svc.CancelSale(context.Background(), saletypes.SaleIdentifier{ID: sale.ID})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrSaleAlreadyCancelled)
	require.Len(t, publisher.events, 1)
}

func TestCancelItem_PublishesBothEvents(t *testing.T) {
	repo := newFakeSaleRepo()
	publisher := &capturePublisher{}
	svc := NewService(repo, publisher)
	sale := seedSale(t, repo, itemInput("Widget", 15, "100.00"))

	updated, err := svc.CancelItem(context.Background(), saletypes.ItemIdentifier{
		SaleID: sale.ID,
		ItemID: sale.Items[0].ID,
	})
	require.NoError(t, err)

	assert.True(t, updated.TotalAmount().IsZero())
	require.Len(t, publisher.events, 2)
	assert.Equal(t, "sales.sale.item_cancelled", publisher.events[0].EventName())
	assert.Equal(t, "sales.sale.modified", publisher.events[1].EventName())
}

func TestUpdateItemQuantity_ZeroCancels(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewService(repo, nil)
	sale := seedSale(t, repo, itemInput("Widget", 15, "100.00"))

	updated, err := svc.UpdateItemQuantity(context.Background(), saletypes.UpdateItemQuantityInput{
		SaleID:   sale.ID,
		ItemID:   sale.Items[0].ID,
		Quantity: 0,
	})
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.True(t, updated.Items[0].Cancelled)
	assert.Equal(t, 15, updated.Items[0].Quantity)
}

func TestDeleteSale_NotFound(t *testing.T) {
	svc := NewService(newFakeSaleRepo(), nil)
	err := svc.DeleteSale(context.Background(), saletypes.SaleIdentifier{ID: uuid.New()})
	require.ErrorIs(t, err, ports.ErrNotFound)
}
