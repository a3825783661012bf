// Package mapper converts between HTTP payloads and the sales domain model.
package mapper

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

// ItemRequest is one requested sale line in create/update payloads.
type ItemRequest struct {
	ProductID   uuid.UUID       `json:"productId" binding:"required"`
	ProductName string          `json:"productName" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateSaleRequest is the inbound payload to open a sale.
type CreateSaleRequest struct {
	SaleNumber string        `json:"saleNumber" binding:"required"`
	Customer   string        `json:"customer" binding:"required"`
	Branch     string        `json:"branch" binding:"required"`
	Items      []ItemRequest `json:"items" binding:"required"`
}

// UpdateSaleRequest replaces the desired item set of a sale.
type UpdateSaleRequest struct {
	Items []ItemRequest `json:"items" binding:"required"`
}

// UpdateItemQuantityRequest sets a single item's quantity.
type UpdateItemQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SaleItem is the HTTP representation of a sale line.
type SaleItem struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"productId"`
	ProductName        string          `json:"productName"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Total              decimal.Decimal `json:"total"`
	Cancelled          bool            `json:"cancelled"`
}

// Sale is the HTTP representation of a sale aggregate.
type Sale struct {
	ID          uuid.UUID       `json:"id"`
	SaleNumber  string          `json:"saleNumber"`
	SaleDate    time.Time       `json:"saleDate"`
	Customer    string          `json:"customer"`
	Branch      string          `json:"branch"`
	Status      string          `json:"status"`
	Items       []SaleItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
	Version     int64           `json:"version"`
}

// SalePage is one page of sales plus pagination metadata.
type SalePage struct {
	Items []Sale `json:"items"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// ToItemInputs converts request lines into application inputs.
func ToItemInputs(items []ItemRequest) []saletypes.ItemInput {
	inputs := make([]saletypes.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, saletypes.ItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

// ToCreateSaleInput converts the create payload into an application input.
func ToCreateSaleInput(req CreateSaleRequest) saletypes.CreateSaleInput {
	return saletypes.CreateSaleInput{
		SaleNumber: req.SaleNumber,
		Customer:   req.Customer,
		Branch:     req.Branch,
		Items:      ToItemInputs(req.Items),
	}
}

// ToUpdateSaleInput converts the update payload into an application input.
func ToUpdateSaleInput(id uuid.UUID, req UpdateSaleRequest) saletypes.UpdateSaleInput {
	return saletypes.UpdateSaleInput{ID: id, Items: ToItemInputs(req.Items)}
}

// FromDomainSale maps a domain aggregate into its transport representation.
func FromDomainSale(s *domain.Sale) Sale {
	items := make([]SaleItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItem{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			Total:              item.Total(),
			Cancelled:          item.Cancelled,
		})
	}
	var updatedAt *time.Time
	if s.UpdatedAt != nil {
		ts := *s.UpdatedAt
		updatedAt = &ts
	}
	return Sale{
		ID:          s.ID,
		SaleNumber:  s.SaleNumber,
		SaleDate:    s.SaleDate,
		Customer:    s.Customer,
		Branch:      s.Branch,
		Status:      string(s.Status),
		Items:       items,
		TotalAmount: s.TotalAmount(),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   updatedAt,
		Version:     s.Version,
	}
}

// FromDomainSaleList maps a slice of aggregates to transport sales.
func FromDomainSaleList(list []*domain.Sale) []Sale {
	result := make([]Sale, 0, len(list))
	for _, s := range list {
		result = append(result, FromDomainSale(s))
	}
	return result
}

// FromPage maps a repository page into the transport page, echoing the
// effective pagination parameters back to the caller.
func FromPage(page *ports.Page, pageNumber, size int) SalePage {
	return SalePage{
		Items: FromDomainSaleList(page.Sales),
		Total: page.Total,
		Page:  pageNumber,
		Size:  size,
	}
}
