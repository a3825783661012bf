package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity is the per-product cap: a sale may not carry more than 20
// units of the same product on an active item.
const MaxItemQuantity = 20

// Quantity thresholds for the discount tiers. Both boundaries are inclusive
// on the higher tier: exactly 4 earns 10%, exactly 10 earns 20%.
const (
	tenPercentMinQuantity    = 4
	twentyPercentMinQuantity = 10
)

var (
	ErrQuantityAboveLimit = errors.New("cannot sell more than 20 identical items")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidUnitPrice   = errors.New("unit price must be greater than zero")
	ErrUnexpectedDiscount = errors.New("purchases below 4 items cannot carry a discount")
)

var (
	tenPercent    = decimal.NewFromInt(10)
	twentyPercent = decimal.NewFromInt(20)
	oneHundred    = decimal.NewFromInt(100)
)

// SaleItem is a line on a sale, owned by the Sale aggregate. The discount is
// stored rather than derived so the persisted record keeps the percentage
// that was in force when the item was last touched.
type SaleItem struct {
	ID                 uuid.UUID
	SaleID             uuid.UUID
	ProductID          uuid.UUID
	ProductName        string
	Quantity           int
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	Cancelled          bool
}

// DiscountForQuantity maps a quantity to its discount percentage tier.
// Quantities above MaxItemQuantity are rejected before this is reached.
func DiscountForQuantity(quantity int) decimal.Decimal {
	switch {
	case quantity >= twentyPercentMinQuantity:
		return twentyPercent
	case quantity >= tenPercentMinQuantity:
		return tenPercent
	default:
		return decimal.Zero
	}
}

// Total computes quantity * unitPrice * (1 - discount/100).
func (i *SaleItem) Total() decimal.Decimal {
	gross := decimal.NewFromInt(int64(i.Quantity)).Mul(i.UnitPrice)
	return gross.Mul(oneHundred.Sub(i.DiscountPercentage)).Div(oneHundred)
}

// Validate enforces the item invariants. Checks run in priority order and the
// first failure wins; the aggregate prefixes the error with the product name.
func (i *SaleItem) Validate() error {
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.Quantity > MaxItemQuantity {
		return ErrQuantityAboveLimit
	}
	if !i.UnitPrice.IsPositive() {
		return ErrInvalidUnitPrice
	}
	if i.Quantity < tenPercentMinQuantity && i.DiscountPercentage.IsPositive() {
		return ErrUnexpectedDiscount
	}
	return nil
}

func (i *SaleItem) applyDiscount() {
	i.DiscountPercentage = DiscountForQuantity(i.Quantity)
}
