package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a sale.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// Field length limits enforced by Validate.
const (
	MaxSaleNumberLength = 50
	MaxCustomerLength   = 200
	MaxBranchLength     = 200
)

var (
	ErrSaleCancelled        = errors.New("cannot modify a cancelled sale")
	ErrSaleAlreadyCancelled = errors.New("sale is already cancelled")
	ErrItemNotFound         = errors.New("sale item not found")
	ErrItemAlreadyCancelled = errors.New("sale item is already cancelled")
	ErrEmptySaleNumber      = errors.New("sale number is required")
	ErrSaleNumberTooLong    = errors.New("sale number must not exceed 50 characters")
	ErrEmptyCustomer        = errors.New("customer is required")
	ErrCustomerTooLong      = errors.New("customer must not exceed 200 characters")
	ErrEmptyBranch          = errors.New("branch is required")
	ErrBranchTooLong        = errors.New("branch must not exceed 200 characters")
	ErrNoActiveItems        = errors.New("sale must have at least one active item")
)

// Sale is the aggregate root for a retail sale transaction. Items are owned
// exclusively by the sale and must only be mutated through its methods so the
// quantity, discount, and cancellation invariants hold across the collection.
type Sale struct {
	ID         uuid.UUID
	SaleNumber string
	SaleDate   time.Time
	Customer   string
	Branch     string
	Status     Status
	Items      []*SaleItem
	CreatedAt  time.Time
	UpdatedAt  *time.Time

	// Version is the optimistic-concurrency counter managed by the
	// persistence layer; domain operations never touch it.
	Version int64

	events []Event
}

// NewSale builds a new active sale. Field content is not validated here;
// callers run Validate before persisting.
func NewSale(saleNumber, customer, branch string) *Sale {
	now := time.Now()
	s := &Sale{
		ID:         uuid.New(),
		SaleNumber: saleNumber,
		SaleDate:   now,
		Customer:   customer,
		Branch:     branch,
		Status:     StatusActive,
		CreatedAt:  now,
	}
	s.record(SaleCreated{
		BaseEvent:   BaseEvent{Timestamp: now},
		SaleID:      s.ID,
		SaleNumber:  saleNumber,
		Customer:    customer,
		Branch:      branch,
		TotalAmount: decimal.Zero,
	})
	return s
}

// AddItem appends a product to the sale. Adding a product that already has an
// active item merges the quantities into that item instead of creating a
// duplicate line. The merge is rejected before any mutation when the added
// quantity is not positive or would push the total above the per-product limit.
func (s *Sale) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal) (*SaleItem, error) {
	if s.Status == StatusCancelled {
		return nil, ErrSaleCancelled
	}
	if existing := s.ActiveItemForProduct(productID); existing != nil {
		if quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		merged := existing.Quantity + quantity
		if merged > MaxItemQuantity {
			return nil, ErrQuantityAboveLimit
		}
		existing.Quantity = merged
		existing.applyDiscount()
		s.markModified()
		return existing, nil
	}
	item := &SaleItem{
		ID:                 uuid.New(),
		SaleID:             s.ID,
		ProductID:          productID,
		ProductName:        productName,
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPercentage: decimal.Zero,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.applyDiscount()
	s.Items = append(s.Items, item)
	s.markModified()
	return item, nil
}

// RemoveItem physically deletes an item from the sale, leaving no trace.
// Cancellation, which keeps the item as a historical record, is CancelItem.
func (s *Sale) RemoveItem(itemID uuid.UUID) error {
	if s.Status == StatusCancelled {
		return ErrSaleCancelled
	}
	for i, item := range s.Items {
		if item.ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.markModified()
			return nil
		}
	}
	return ErrItemNotFound
}

// UpdateItemQuantity sets an active item's quantity and recomputes its
// discount. A quantity of zero or less cancels the item rather than leaving
// a zero-quantity line behind.
func (s *Sale) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if s.Status == StatusCancelled {
		return ErrSaleCancelled
	}
	item := s.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.Cancelled {
		return ErrItemAlreadyCancelled
	}
	if quantity <= 0 {
		return s.CancelItem(itemID)
	}
	if quantity > MaxItemQuantity {
		return ErrQuantityAboveLimit
	}
	item.Quantity = quantity
	item.applyDiscount()
	s.markModified()
	return nil
}

// CancelItem flags the item as cancelled. Quantity and discount are retained
// as a historical record; the item simply stops contributing to TotalAmount.
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	if s.Status == StatusCancelled {
		return ErrSaleCancelled
	}
	item := s.findItem(itemID)
	if item == nil {
		return ErrItemNotFound
	}
	if item.Cancelled {
		return ErrItemAlreadyCancelled
	}
	item.Cancelled = true
	s.touch()
	s.record(ItemCancelled{
		BaseEvent:   BaseEvent{Timestamp: time.Now()},
		SaleID:      s.ID,
		SaleItemID:  item.ID,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
	})
	s.record(SaleModified{
		BaseEvent:   BaseEvent{Timestamp: time.Now()},
		SaleID:      s.ID,
		SaleNumber:  s.SaleNumber,
		TotalAmount: s.TotalAmount(),
	})
	return nil
}

// Cancel transitions the sale to its terminal state. Items are left as-is.
func (s *Sale) Cancel() error {
	if s.Status == StatusCancelled {
		return ErrSaleAlreadyCancelled
	}
	s.Status = StatusCancelled
	s.touch()
	s.record(SaleCancelled{
		BaseEvent:  BaseEvent{Timestamp: time.Now()},
		SaleID:     s.ID,
		SaleNumber: s.SaleNumber,
	})
	return nil
}

// TotalAmount sums the totals of all active items. It is recomputed on every
// call and never cached.
func (s *Sale) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		if !item.Cancelled {
			total = total.Add(item.Total())
		}
	}
	return total
}

// Validate checks whether the sale may be persisted. Unlike item validation
// it accumulates every violation instead of stopping at the first; item
// failures are prefixed with the offending product name.
func (s *Sale) Validate() error {
	var errs []error
	switch {
	case strings.TrimSpace(s.SaleNumber) == "":
		errs = append(errs, ErrEmptySaleNumber)
	case len(s.SaleNumber) > MaxSaleNumberLength:
		errs = append(errs, ErrSaleNumberTooLong)
	}
	switch {
	case strings.TrimSpace(s.Customer) == "":
		errs = append(errs, ErrEmptyCustomer)
	case len(s.Customer) > MaxCustomerLength:
		errs = append(errs, ErrCustomerTooLong)
	}
	switch {
	case strings.TrimSpace(s.Branch) == "":
		errs = append(errs, ErrEmptyBranch)
	case len(s.Branch) > MaxBranchLength:
		errs = append(errs, ErrBranchTooLong)
	}
	active := 0
	for _, item := range s.Items {
		if item.Cancelled {
			continue
		}
		active++
		if err := item.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", item.ProductName, err))
		}
	}
	if active == 0 {
		errs = append(errs, ErrNoActiveItems)
	}
	return errors.Join(errs...)
}

// Events returns the notifications accumulated since the last ClearEvents,
// in emission order.
func (s *Sale) Events() []Event {
	return append([]Event(nil), s.events...)
}

// ClearEvents discards accumulated notifications after the caller has
// forwarded them.
func (s *Sale) ClearEvents() {
	s.events = nil
}

// Clone returns a deep copy of the sale and its items. Pending events are
// not carried over; they belong to the unit of work that produced them.
func (s *Sale) Clone() *Sale {
	clone := *s
	clone.events = nil
	if s.UpdatedAt != nil {
		updated := *s.UpdatedAt
		clone.UpdatedAt = &updated
	}
	clone.Items = make([]*SaleItem, len(s.Items))
	for i, item := range s.Items {
		itemCopy := *item
		clone.Items[i] = &itemCopy
	}
	return &clone
}

// ActiveItemForProduct returns the non-cancelled item for a product, or nil.
// At most one such item exists at any time.
func (s *Sale) ActiveItemForProduct(productID uuid.UUID) *SaleItem {
	for _, item := range s.Items {
		if item.ProductID == productID && !item.Cancelled {
			return item
		}
	}
	return nil
}

func (s *Sale) findItem(itemID uuid.UUID) *SaleItem {
	for _, item := range s.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func (s *Sale) touch() {
	now := time.Now()
	s.UpdatedAt = &now
}

func (s *Sale) markModified() {
	s.touch()
	s.record(SaleModified{
		BaseEvent:   BaseEvent{Timestamp: time.Now()},
		SaleID:      s.ID,
		SaleNumber:  s.SaleNumber,
		TotalAmount: s.TotalAmount(),
	})
}

func (s *Sale) record(event Event) {
	s.events = append(s.events, event)
}
