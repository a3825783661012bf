package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

var _ ports.Repository = (*Repository)(nil)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository is an in-memory sale persistence adapter. It mirrors the
// Postgres adapter's semantics, including business-number uniqueness and
// version-based optimistic concurrency, so tests and DSN-less deployments
// behave the same way.
type Repository struct {
	mu    sync.RWMutex
	sales map[uuid.UUID]*domain.Sale
}

func NewRepository() *Repository {
	return &Repository{sales: map[uuid.UUID]*domain.Sale{}}
}

func (r *Repository) Save(_ context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.sales {
		if id != sale.ID && existing.SaleNumber == sale.SaleNumber {
			return nil, ports.ErrDuplicateNumber
		}
	}
	clone := sale.Clone()
	if existing, ok := r.sales[sale.ID]; ok {
		if existing.Version != sale.Version {
			return nil, ports.ErrConcurrentUpdate
		}
	} else if sale.Version != 0 {
		return nil, ports.ErrConcurrentUpdate
	}
	clone.Version++
	r.sales[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id uuid.UUID) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sale, ok := r.sales[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return sale.Clone(), nil
}

func (r *Repository) GetByNumber(_ context.Context, saleNumber string) (*domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sale := range r.sales {
		if sale.SaleNumber == saleNumber {
			return sale.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sales[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter) (*ports.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*domain.Sale
	for _, sale := range r.sales {
		if !matches(sale, filter) {
			continue
		}
		matched = append(matched, sale)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].SaleDate.Equal(matched[j].SaleDate) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].SaleDate.Before(matched[j].SaleDate)
	})

	page := &ports.Page{Total: int64(len(matched))}
	start, end := pageBounds(filter, len(matched))
	for _, sale := range matched[start:end] {
		page.Sales = append(page.Sales, sale.Clone())
	}
	return page, nil
}

func matches(sale *domain.Sale, filter ports.Filter) bool {
	if filter.Customer != "" && !strings.EqualFold(sale.Customer, filter.Customer) {
		return false
	}
	if filter.Branch != "" && !strings.EqualFold(sale.Branch, filter.Branch) {
		return false
	}
	if filter.From != nil && sale.SaleDate.Before(*filter.From) {
		return false
	}
	if filter.To != nil && sale.SaleDate.After(*filter.To) {
		return false
	}
	return true
}

func pageBounds(filter ports.Filter, total int) (int, int) {
	size := filter.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	pageNum := filter.Page
	if pageNum <= 0 {
		pageNum = 1
	}
	start := (pageNum - 1) * size
	if start >= total {
		return 0, 0
	}
	end := start + size
	if end > total {
		end = total
	}
	return start, end
}
