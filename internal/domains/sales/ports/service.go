package ports

import (
	"context"

	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/domain"
)

// Service defines the sales use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreateSale(ctx context.Context, input saletypes.CreateSaleInput) (*domain.Sale, error)
	GetSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error)
	GetSaleByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error)
	ListSales(ctx context.Context, input saletypes.ListSalesInput) (*Page, error)
	UpdateSale(ctx context.Context, input saletypes.UpdateSaleInput) (*domain.Sale, error)
	CancelSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error)
	CancelItem(ctx context.Context, input saletypes.ItemIdentifier) (*domain.Sale, error)
	UpdateItemQuantity(ctx context.Context, input saletypes.UpdateItemQuantityInput) (*domain.Sale, error)
	DeleteSale(ctx context.Context, input saletypes.SaleIdentifier) error
}
