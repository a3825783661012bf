package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemInput is one requested sale line, shared by create and update flows.
type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// CreateSaleInput carries everything needed to open a sale.
type CreateSaleInput struct {
	SaleNumber string
	Customer   string
	Branch     string
	Items      []ItemInput
}

// UpdateSaleInput replaces the desired item set of an existing sale. The
// service diffs it against the current active items.
type UpdateSaleInput struct {
	ID    uuid.UUID
	Items []ItemInput
}

// ListSalesInput filters and paginates sale listings.
type ListSalesInput struct {
	Customer string
	Branch   string
	From     *time.Time
	To       *time.Time
	Page     int
	Size     int
}

// SaleIdentifier addresses a single sale.
type SaleIdentifier struct {
	ID uuid.UUID
}

// ItemIdentifier addresses a single item within a sale.
type ItemIdentifier struct {
	SaleID uuid.UUID
	ItemID uuid.UUID
}

// UpdateItemQuantityInput sets an item's quantity in place.
type UpdateItemQuantityInput struct {
	SaleID   uuid.UUID
	ItemID   uuid.UUID
	Quantity int
}
