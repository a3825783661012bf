package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// SaleCreated is raised when a new sale is opened.
type SaleCreated struct {
	BaseEvent
	SaleID      uuid.UUID
	SaleNumber  string
	Customer    string
	Branch      string
	TotalAmount decimal.Decimal
}

// EventName returns the event type identifier.
func (e SaleCreated) EventName() string {
	return "sales.sale.created"
}

// SaleModified is raised whenever the item collection or quantities change.
type SaleModified struct {
	BaseEvent
	SaleID      uuid.UUID
	SaleNumber  string
	TotalAmount decimal.Decimal
}

// EventName returns the event type identifier.
func (e SaleModified) EventName() string {
	return "sales.sale.modified"
}

// SaleCancelled is raised when the whole sale is cancelled.
type SaleCancelled struct {
	BaseEvent
	SaleID     uuid.UUID
	SaleNumber string
}

// EventName returns the event type identifier.
func (e SaleCancelled) EventName() string {
	return "sales.sale.cancelled"
}

// ItemCancelled is raised when a single item is cancelled.
type ItemCancelled struct {
	BaseEvent
	SaleID      uuid.UUID
	SaleItemID  uuid.UUID
	ProductName string
	Quantity    int
}

// EventName returns the event type identifier.
func (e ItemCancelled) EventName() string {
	return "sales.sale.item_cancelled"
}

// AggregateWithEvents is implemented by aggregates that track domain events.
type AggregateWithEvents interface {
	Events() []Event
	ClearEvents()
}
