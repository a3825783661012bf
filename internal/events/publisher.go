// Package events forwards drained domain events to the process log.
// Delivery is best-effort: events describe already-committed state changes
// and are not replayed or retried.
package events

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

var publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sale_events_published_total",
	Help: "Domain events forwarded to the log sink, by event name.",
}, []string{"event"})

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher writes domain events to the structured log.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher wires a publisher around the given logger.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs each event with its payload fields, in emission order.
func (p *LogPublisher) Publish(ctx context.Context, events ...domain.Event) {
	for _, event := range events {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "domain event", eventAttrs(event)...)
		publishedTotal.WithLabelValues(event.EventName()).Inc()
	}
}

func eventAttrs(event domain.Event) []slog.Attr {
	attrs := []slog.Attr{
		slog.String("event", event.EventName()),
		slog.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case domain.SaleCreated:
		attrs = append(attrs,
			slog.String("sale_id", e.SaleID.String()),
			slog.String("sale_number", e.SaleNumber),
			slog.String("customer", e.Customer),
			slog.String("branch", e.Branch),
			slog.String("total_amount", e.TotalAmount.String()),
		)
	case domain.SaleModified:
		attrs = append(attrs,
			slog.String("sale_id", e.SaleID.String()),
			slog.String("sale_number", e.SaleNumber),
			slog.String("total_amount", e.TotalAmount.String()),
		)
	case domain.SaleCancelled:
		attrs = append(attrs,
			slog.String("sale_id", e.SaleID.String()),
			slog.String("sale_number", e.SaleNumber),
		)
	case domain.ItemCancelled:
		attrs = append(attrs,
			slog.String("sale_id", e.SaleID.String()),
			slog.String("sale_item_id", e.SaleItemID.String()),
			slog.String("product_name", e.ProductName),
			slog.Int("quantity", e.Quantity),
		)
	}
	return attrs
}
