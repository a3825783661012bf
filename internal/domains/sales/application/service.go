package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

// Service orchestrates the sales bounded context use cases. Every mutation
// follows the same cycle: load (or construct) the aggregate, invoke its
// operations, persist, then drain the accumulated domain events to the
// publisher.
type Service struct {
	repo      ports.Repository
	publisher ports.EventPublisher
}

// NewService wires the sales service with its dependencies.
func NewService(repo ports.Repository, publisher ports.EventPublisher) *Service {
	if publisher == nil {
		publisher = ports.NoopPublisher
	}
	return &Service{repo: repo, publisher: publisher}
}

// CreateSale opens a new sale with the requested items. The business number
// must not be in use yet.
func (s *Service) CreateSale(ctx context.Context, input saletypes.CreateSaleInput) (*domain.Sale, error) {
	if _, err := s.repo.GetByNumber(ctx, input.SaleNumber); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateSaleNumber, input.SaleNumber)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, err
	}
	sale := domain.NewSale(input.SaleNumber, input.Customer, input.Branch)
	for _, item := range input.Items {
		if _, err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, mapError(err)
		}
	}
	if err := sale.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	s.publishEvents(ctx, sale)
	return saved, nil
}

// GetSale loads a single sale aggregate in full.
func (s *Service) GetSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error) {
	return s.repo.GetByID(ctx, input.ID)
}

// GetSaleByNumber loads a sale by its business number.
func (s *Service) GetSaleByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error) {
	return s.repo.GetByNumber(ctx, saleNumber)
}

// ListSales returns a filtered, paginated page of sales.
func (s *Service) ListSales(ctx context.Context, input saletypes.ListSalesInput) (*ports.Page, error) {
	return s.repo.List(ctx, ports.Filter{
		Customer: input.Customer,
		Branch:   input.Branch,
		From:     input.From,
		To:       input.To,
		Page:     input.Page,
		Size:     input.Size,
	})
}

// UpdateSale diffs the requested item set against the sale's active items:
// active items missing from the request are removed outright, items present
// in both have their quantity set to the requested value, and the rest are
// added as new lines. Any domain failure aborts the whole update before
// anything is persisted.
func (s *Service) UpdateSale(ctx context.Context, input saletypes.UpdateSaleInput) (*domain.Sale, error) {
	sale, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	requested := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, item := range input.Items {
		requested[item.ProductID] = struct{}{}
	}
	var obsolete []uuid.UUID
	for _, item := range sale.Items {
		if item.Cancelled {
			continue
		}
		if _, ok := requested[item.ProductID]; !ok {
			obsolete = append(obsolete, item.ID)
		}
	}
	for _, itemID := range obsolete {
		if err := sale.RemoveItem(itemID); err != nil {
			return nil, mapError(err)
		}
	}
	for _, item := range input.Items {
		if existing := sale.ActiveItemForProduct(item.ProductID); existing != nil {
			if err := sale.UpdateItemQuantity(existing.ID, item.Quantity); err != nil {
				return nil, mapError(err)
			}
			continue
		}
		if _, err := sale.AddItem(item.ProductID, item.ProductName, item.Quantity, item.UnitPrice); err != nil {
			return nil, mapError(err)
		}
	}
	if err := sale.Validate(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	s.publishEvents(ctx, sale)
	return saved, nil
}

// CancelSale transitions the sale to its terminal state. Cancelling an
// already-cancelled sale reports a domain-rule error rather than faulting.
func (s *Service) CancelSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error) {
	sale, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := sale.Cancel(); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	s.publishEvents(ctx, sale)
	return saved, nil
}

// CancelItem flags one item as cancelled, preserving it as history.
func (s *Service) CancelItem(ctx context.Context, input saletypes.ItemIdentifier) (*domain.Sale, error) {
	sale, err := s.repo.GetByID(ctx, input.SaleID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := sale.CancelItem(input.ItemID); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	s.publishEvents(ctx, sale)
	return saved, nil
}

// UpdateItemQuantity sets an item's quantity; zero cancels the item.
func (s *Service) UpdateItemQuantity(ctx context.Context, input saletypes.UpdateItemQuantityInput) (*domain.Sale, error) {
	sale, err := s.repo.GetByID(ctx, input.SaleID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := sale.UpdateItemQuantity(input.ItemID, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, sale)
	if err != nil {
		return nil, mapError(err)
	}
	s.publishEvents(ctx, sale)
	return saved, nil
}

// DeleteSale physically removes a sale and its items.
func (s *Service) DeleteSale(ctx context.Context, input saletypes.SaleIdentifier) error {
	return s.repo.Delete(ctx, input.ID)
}

func (s *Service) publishEvents(ctx context.Context, sale *domain.Sale) {
	if events := sale.Events(); len(events) > 0 {
		s.publisher.Publish(ctx, events...)
	}
	sale.ClearEvents()
}

var _ ports.Service = (*Service)(nil)
