package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
)

var (
	// ErrNotFound signals the sale does not exist.
	ErrNotFound = errors.New("sale not found")
	// ErrDuplicateNumber signals another sale already carries the business number.
	ErrDuplicateNumber = errors.New("sale number already exists")
	// ErrConcurrentUpdate signals the sale was modified by another writer
	// since it was loaded.
	ErrConcurrentUpdate = errors.New("sale was modified concurrently")
)

// Filter narrows and paginates sale listings. Zero values mean "no filter";
// Page is 1-based and Size falls back to a repository default when zero.
type Filter struct {
	Customer string
	Branch   string
	From     *time.Time
	To       *time.Time
	Page     int
	Size     int
}

// Page is one page of sales plus the total match count before pagination.
type Page struct {
	Sales []*domain.Sale
	Total int64
}

// Repository persists sale aggregates. Sales are always loaded in full,
// header plus items, because the invariants span the whole item collection.
type Repository interface {
	Save(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error)
	GetByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter) (*Page, error)
}
