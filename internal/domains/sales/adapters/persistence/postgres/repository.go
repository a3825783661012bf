package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

var _ ports.Repository = (*Repository)(nil)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository persists sale aggregates in PostgreSQL using GORM. Updates use
// a version column as an optimistic-concurrency check so two callers working
// on separately loaded copies of the same sale cannot silently overwrite each
// other.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	repo := &Repository{db: db}
	if db != nil {
		_ = db.AutoMigrate(&saleRecord{}, &saleItemRecord{})
	}
	return repo
}

// saleRecord maps the sale header to a relational table.
type saleRecord struct {
	ID         uuid.UUID        `gorm:"primaryKey;column:id;type:uuid"`
	SaleNumber string           `gorm:"column:sale_number;type:varchar(50);uniqueIndex:idx_sales_sale_number"`
	SaleDate   time.Time        `gorm:"column:sale_date;index"`
	Customer   string           `gorm:"column:customer;type:varchar(200);index"`
	Branch     string           `gorm:"column:branch;type:varchar(200);index"`
	Status     string           `gorm:"column:status;type:varchar(32)"`
	Version    int64            `gorm:"column:version"`
	CreatedAt  time.Time        `gorm:"column:created_at"`
	UpdatedAt  *time.Time       `gorm:"column:updated_at"`
	Items      []saleItemRecord `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

func (saleRecord) TableName() string { return "sales" }

// saleItemRecord maps one sale line. Position keeps the collection ordered
// across load/save cycles.
type saleItemRecord struct {
	ID                 uuid.UUID       `gorm:"primaryKey;column:id;type:uuid"`
	SaleID             uuid.UUID       `gorm:"column:sale_id;type:uuid;index"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid"`
	ProductName        string          `gorm:"column:product_name;type:varchar(200)"`
	Quantity           int             `gorm:"column:quantity"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(18,2)"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2)"`
	Cancelled          bool            `gorm:"column:cancelled"`
	Position           int             `gorm:"column:position"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

// Save inserts a new sale or updates an existing one. The whole aggregate is
// written in one transaction: header first (with the version check), then the
// item rows are replaced wholesale.
func (r *Repository) Save(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, errors.New("sale is nil")
	}
	record := toRecord(sale)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if sale.Version == 0 {
			record.Version = 1
			if err := tx.Omit("Items").Create(&record).Error; err != nil {
				return mapWriteError(err)
			}
		} else {
			record.Version = sale.Version + 1
			result := tx.Model(&saleRecord{}).
				Where("id = ? AND version = ?", record.ID, sale.Version).
				Updates(map[string]any{
					"sale_number": record.SaleNumber,
					"sale_date":   record.SaleDate,
					"customer":    record.Customer,
					"branch":      record.Branch,
					"status":      record.Status,
					"version":     record.Version,
					"updated_at":  time.Now(),
				})
			if result.Error != nil {
				return mapWriteError(result.Error)
			}
			if result.RowsAffected == 0 {
				return ports.ErrConcurrentUpdate
			}
			if err := tx.Where("sale_id = ?", record.ID).Delete(&saleItemRecord{}).Error; err != nil {
				return err
			}
		}
		if len(record.Items) == 0 {
			return nil
		}
		return mapWriteError(tx.Create(&record.Items).Error)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches the full aggregate, header plus ordered items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := r.db.WithContext(ctx).
		Preload("Items", orderByPosition).
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByNumber fetches the full aggregate by its business number.
func (r *Repository) GetByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record saleRecord
	if err := r.db.WithContext(ctx).
		Preload("Items", orderByPosition).
		First(&record, "sale_number = ?", saleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Delete removes the sale; item rows go with it via the FK cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&saleRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// List returns one page of sales matching the filter, items included.
func (r *Repository) List(ctx context.Context, filter ports.Filter) (*ports.Page, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&saleRecord{})
	if filter.Customer != "" {
		query = query.Where("LOWER(customer) = LOWER(?)", filter.Customer)
	}
	if filter.Branch != "" {
		query = query.Where("LOWER(branch) = LOWER(?)", filter.Branch)
	}
	if filter.From != nil {
		query = query.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("sale_date <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

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

	var records []saleRecord
	if err := query.
		Preload("Items", orderByPosition).
		Order("sale_date ASC, id ASC").
		Offset((pageNum - 1) * size).
		Limit(size).
		Find(&records).Error; err != nil {
		return nil, err
	}

	page := &ports.Page{Total: total}
	for i := range records {
		page.Sales = append(page.Sales, records[i].toDomain())
	}
	return page, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sale repository not configured")
	}
	return nil
}

// mapWriteError translates PostgreSQL unique violations into port sentinels.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "sale_number") {
			return ports.ErrDuplicateNumber
		}
		return ports.ErrConcurrentUpdate
	}
	return err
}

func toRecord(sale *domain.Sale) saleRecord {
	record := saleRecord{
		ID:         sale.ID,
		SaleNumber: sale.SaleNumber,
		SaleDate:   sale.SaleDate,
		Customer:   sale.Customer,
		Branch:     sale.Branch,
		Status:     string(sale.Status),
		Version:    sale.Version,
		CreatedAt:  sale.CreatedAt,
		UpdatedAt:  sale.UpdatedAt,
	}
	for i, item := range sale.Items {
		record.Items = append(record.Items, saleItemRecord{
			ID:                 item.ID,
			SaleID:             sale.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			Cancelled:          item.Cancelled,
			Position:           i,
		})
	}
	return record
}

func (r saleRecord) toDomain() *domain.Sale {
	sale := &domain.Sale{
		ID:         r.ID,
		SaleNumber: r.SaleNumber,
		SaleDate:   r.SaleDate,
		Customer:   r.Customer,
		Branch:     r.Branch,
		Status:     domain.Status(r.Status),
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	for i := range r.Items {
		item := r.Items[i]
		sale.Items = append(sale.Items, &domain.SaleItem{
			ID:                 item.ID,
			SaleID:             item.SaleID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			DiscountPercentage: item.DiscountPercentage,
			Cancelled:          item.Cancelled,
		})
	}
	return sale
}
