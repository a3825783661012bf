package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the sales bounded context. Intended to replace
// adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&saleRecord{},
		&saleItemRecord{},
	)
}

// Sale schema mirrors the sales Postgres adapter.
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

// Sale item schema mirrors the sales Postgres adapter.
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
