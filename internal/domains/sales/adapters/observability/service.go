package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	saletypes "github.com/devstore/sales-api/internal/domains/sales/application/types"
	"github.com/devstore/sales-api/internal/domains/sales/domain"
	"github.com/devstore/sales-api/internal/domains/sales/ports"
)

const tracerName = "github.com/devstore/sales-api/internal/domains/sales/adapters/observability/service"

// Service decorates a sales application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateSale opens a new sale with instrumentation.
func (s *Service) CreateSale(ctx context.Context, input saletypes.CreateSaleInput) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateSale",
		attribute.String("sale.number", input.SaleNumber),
		attribute.Int("sale.items.requested", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.String("sale.number", input.SaleNumber))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.String("sale.number", input.SaleNumber))
	}
	if result != nil {
		s.metrics.recordCreated(ctx, result.Branch)
		s.logInfo(ctx, "sale created",
			slog.String("sale.id", result.ID.String()),
			slog.String("sale.number", result.SaleNumber),
			slog.String("sale.total", result.TotalAmount().String()),
		)
	}
	return result, nil
}

// GetSale loads a single sale aggregate.
func (s *Service) GetSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	result, err := s.inner.GetSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.String("sale.id", input.ID.String()))
	}
	return result, nil
}

// GetSaleByNumber loads a sale by its business number.
func (s *Service) GetSaleByNumber(ctx context.Context, saleNumber string) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.GetSaleByNumber", attribute.String("sale.number", saleNumber))
	defer span.End()

	result, err := s.inner.GetSaleByNumber(ctx, saleNumber)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale by number", slog.String("sale.number", saleNumber))
	}
	return result, nil
}

// ListSales returns a filtered page of sales.
func (s *Service) ListSales(ctx context.Context, input saletypes.ListSalesInput) (*ports.Page, error) {
	ctx, span := s.startSpan(ctx, "Service.ListSales",
		attribute.String("sale.filter.customer", input.Customer),
		attribute.String("sale.filter.branch", input.Branch),
		attribute.Int("sale.filter.page", input.Page),
	)
	defer span.End()

	result, err := s.inner.ListSales(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales")
	}
	if result != nil {
		span.SetAttributes(attribute.Int("sale.result.count", len(result.Sales)))
	}
	return result, nil
}

// UpdateSale applies the item diff with instrumentation.
func (s *Service) UpdateSale(ctx context.Context, input saletypes.UpdateSaleInput) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateSale",
		attribute.String("sale.id", input.ID.String()),
		attribute.Int("sale.items.requested", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "updating sale", slog.String("sale.id", input.ID.String()))
	result, err := s.inner.UpdateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update sale", slog.String("sale.id", input.ID.String()))
	}
	if result != nil {
		s.metrics.recordUpdated(ctx)
		s.logInfo(ctx, "sale updated",
			slog.String("sale.id", result.ID.String()),
			slog.String("sale.total", result.TotalAmount().String()),
		)
	}
	return result, nil
}

// CancelSale transitions the sale to its terminal state.
func (s *Service) CancelSale(ctx context.Context, input saletypes.SaleIdentifier) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	s.logInfo(ctx, "cancelling sale", slog.String("sale.id", input.ID.String()))
	result, err := s.inner.CancelSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel sale", slog.String("sale.id", input.ID.String()))
	}
	if result != nil {
		s.metrics.recordCancelled(ctx)
		s.logInfo(ctx, "sale cancelled", slog.String("sale.id", result.ID.String()), slog.String("sale.number", result.SaleNumber))
	}
	return result, nil
}

// CancelItem flags one item as cancelled.
func (s *Service) CancelItem(ctx context.Context, input saletypes.ItemIdentifier) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.CancelItem",
		attribute.String("sale.id", input.SaleID.String()),
		attribute.String("sale.item.id", input.ItemID.String()),
	)
	defer span.End()

	s.logInfo(ctx, "cancelling sale item",
		slog.String("sale.id", input.SaleID.String()),
		slog.String("sale.item.id", input.ItemID.String()),
	)
	result, err := s.inner.CancelItem(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel sale item", slog.String("sale.item.id", input.ItemID.String()))
	}
	if result != nil {
		s.metrics.recordItemCancelled(ctx)
		s.logInfo(ctx, "sale item cancelled",
			slog.String("sale.id", result.ID.String()),
			slog.String("sale.total", result.TotalAmount().String()),
		)
	}
	return result, nil
}

// UpdateItemQuantity sets an item's quantity in place.
func (s *Service) UpdateItemQuantity(ctx context.Context, input saletypes.UpdateItemQuantityInput) (*domain.Sale, error) {
	ctx, span := s.startSpan(ctx, "Service.UpdateItemQuantity",
		attribute.String("sale.id", input.SaleID.String()),
		attribute.String("sale.item.id", input.ItemID.String()),
		attribute.Int("sale.item.quantity", input.Quantity),
	)
	defer span.End()

	result, err := s.inner.UpdateItemQuantity(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update item quantity", slog.String("sale.item.id", input.ItemID.String()))
	}
	if result != nil {
		s.metrics.recordUpdated(ctx)
	}
	return result, nil
}

// DeleteSale physically removes a sale.
func (s *Service) DeleteSale(ctx context.Context, input saletypes.SaleIdentifier) error {
	ctx, span := s.startSpan(ctx, "Service.DeleteSale", attribute.String("sale.id", input.ID.String()))
	defer span.End()

	s.logInfo(ctx, "deleting sale", slog.String("sale.id", input.ID.String()))
	if err := s.inner.DeleteSale(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to delete sale", slog.String("sale.id", input.ID.String()))
	}
	s.metrics.recordDeleted(ctx)
	s.logInfo(ctx, "sale deleted", slog.String("sale.id", input.ID.String()))
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	salesCreated   metric.Int64Counter
	salesUpdated   metric.Int64Counter
	salesCancelled metric.Int64Counter
	salesDeleted   metric.Int64Counter
	itemsCancelled metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	salesCreated, _ := m.Int64Counter("sales.service.created", metric.WithDescription("Number of sales created"))
	salesUpdated, _ := m.Int64Counter("sales.service.updated", metric.WithDescription("Number of sales updated"))
	salesCancelled, _ := m.Int64Counter("sales.service.cancelled", metric.WithDescription("Number of sales cancelled"))
	salesDeleted, _ := m.Int64Counter("sales.service.deleted", metric.WithDescription("Number of sales deleted"))
	itemsCancelled, _ := m.Int64Counter("sales.service.items_cancelled", metric.WithDescription("Number of sale items cancelled"))
	return serviceMetrics{
		salesCreated:   salesCreated,
		salesUpdated:   salesUpdated,
		salesCancelled: salesCancelled,
		salesDeleted:   salesDeleted,
		itemsCancelled: itemsCancelled,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, branch string) {
	addCounter(ctx, m.salesCreated, 1, attribute.String("sale.branch", branch))
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	addCounter(ctx, m.salesUpdated, 1)
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.salesCancelled, 1)
}

func (m serviceMetrics) recordDeleted(ctx context.Context) {
	addCounter(ctx, m.salesDeleted, 1)
}

func (m serviceMetrics) recordItemCancelled(ctx context.Context) {
	addCounter(ctx, m.itemsCancelled, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
