package ports

import (
	"context"

	"github.com/devstore/sales-api/internal/domains/sales/domain"
)

// EventPublisher forwards drained domain events to a logging or integration
// sink. Delivery is best-effort; publishing failures must not fail the
// triggering use case.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, ...domain.Event) {}

// NoopPublisher discards all events.
var NoopPublisher EventPublisher = noopPublisher{}
