package cart

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/foodsheet/internal/model"
)

const tracerName = "github.com/roach88/foodsheet/internal/cart"

// OrderWriter appends a finalized order to the order store.
type OrderWriter interface {
	AppendOrder(ctx context.Context, o model.Order) error
}

// Checkout finalizes carts into orders.
type Checkout struct {
	orders OrderWriter
	clock  model.Clock
	ids    model.IDGenerator
	logger *slog.Logger
	tracer trace.Tracer
}

// CheckoutOption configures a Checkout.
type CheckoutOption func(*Checkout)

// WithClock sets the clock used for order timestamps.
func WithClock(c model.Clock) CheckoutOption {
	return func(co *Checkout) {
		co.clock = c
	}
}

// WithIDGenerator sets the order id generator.
func WithIDGenerator(g model.IDGenerator) CheckoutOption {
	return func(co *Checkout) {
		co.ids = g
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CheckoutOption {
	return func(co *Checkout) {
		if l != nil {
			co.logger = l
		}
	}
}

// WithTracerProvider sets the tracer provider used for the cart.submit span.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) CheckoutOption {
	return func(co *Checkout) {
		if tp != nil {
			co.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewCheckout creates a Checkout writing to orders. A nil orders means no
// store is connected; Submit then fails with model.ErrNotConnected.
//
// Defaults: system clock, UUIDv7 ids, slog.Default().
func NewCheckout(orders OrderWriter, opts ...CheckoutOption) *Checkout {
	co := &Checkout{
		orders: orders,
		clock:  model.SystemClock{},
		ids:    model.UUIDv7Generator{},
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(co)
	}
	return co
}

// Submit validates the cart and customer name, appends a pending order and
// clears the cart.
//
// Errors:
//   - EMPTY_CART ValidationError: the cart has no lines
//   - MISSING_FIELD ValidationError (field customer_name): blank name
//   - model.ErrNotConnected: no order store
//   - PersistenceError: the append failed
//
// On any error the cart is left unchanged.
func (co *Checkout) Submit(ctx context.Context, c *Cart, customerName, instructions string) (model.Order, error) {
	ctx, span := co.tracer.Start(ctx, "cart.submit")
	defer span.End()

	order, err := co.submit(ctx, c, customerName, instructions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return model.Order{}, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.lines", len(order.Items)),
		attribute.Int64("order.total_minor", int64(order.Total)),
	)
	return order, nil
}

func (co *Checkout) submit(ctx context.Context, c *Cart, customerName, instructions string) (model.Order, error) {
	if c == nil || c.Empty() {
		return model.Order{}, model.NewValidationError(model.ErrCodeEmptyCart, "", "cart is empty")
	}
	customerName = model.NormalizeText(customerName)
	if customerName == "" {
		return model.Order{}, model.MissingFieldError("customer_name")
	}
	if co.orders == nil {
		return model.Order{}, model.ErrNotConnected
	}

	order := model.Order{
		ID:                  co.ids.Generate(),
		CreatedAt:           co.clock.Now(),
		CustomerName:        customerName,
		Items:               c.Lines(),
		Total:               c.Total(),
		SpecialInstructions: strings.TrimSpace(instructions),
		Status:              model.OrderPending,
		Version:             1,
	}

	if err := co.orders.AppendOrder(ctx, order); err != nil {
		co.logger.Warn("order append failed; cart kept",
			"order_id", order.ID,
			"error", err,
		)
		return model.Order{}, model.NewPersistenceError("append order", err)
	}

	c.Clear()
	co.logger.Info("order submitted",
		"order_id", order.ID,
		"customer", order.CustomerName,
		"lines", len(order.Items),
		"total", order.Total.String(),
	)
	return order, nil
}
