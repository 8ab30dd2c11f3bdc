package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/testutil"
)

type fakeOrders struct {
	appended []model.Order
	err      error
}

func (f *fakeOrders) AppendOrder(_ context.Context, o model.Order) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, o)
	return nil
}

var checkoutStart = time.Date(2024, 3, 1, 12, 30, 0, 0, time.Local)

func newTestCheckout(orders OrderWriter, opts ...CheckoutOption) *Checkout {
	base := []CheckoutOption{
		WithClock(testutil.NewStepClock(checkoutStart, time.Second)),
		WithIDGenerator(testutil.NewSequenceGenerator("order", "order-1", "order-2")),
	}
	return NewCheckout(orders, append(base, opts...)...)
}

func TestSubmit_Tea(t *testing.T) {
	orders := &fakeOrders{}
	co := newTestCheckout(orders)

	c := New()
	require.NoError(t, c.SetQuantity(product("T1", "Tea", 2000), 3))

	order, err := co.Submit(context.Background(), c, "Nok", "")
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "Nok", order.CustomerName)
	assert.Equal(t, model.Amount(6000), order.Total)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "2024-03-01 12:30:00", order.Timestamp())
	require.Len(t, order.Items, 1)
	assert.Equal(t, model.LineItem{
		ProductID: "T1", Name: "Tea", Price: 2000, Quantity: 3, Subtotal: 6000,
		ImageURL: "https://img.example/T1.jpg",
	}, order.Items[0])

	require.Len(t, orders.appended, 1)
	assert.Equal(t, order, orders.appended[0])
	assert.True(t, c.Empty(), "cart is cleared after a successful submit")
}

func TestSubmit_SnapshotInInsertionOrder(t *testing.T) {
	orders := &fakeOrders{}
	co := newTestCheckout(orders)

	c := New()
	require.NoError(t, c.SetQuantity(product("B", "B", 300), 1))
	require.NoError(t, c.SetQuantity(product("A", "A", 100), 2))
	wantLines := c.Lines()
	wantTotal := c.Total()

	order, err := co.Submit(context.Background(), c, "  Ann  ", " no ice ")
	require.NoError(t, err)
	assert.Equal(t, wantLines, order.Items)
	assert.Equal(t, wantTotal, order.Total)
	assert.Equal(t, "Ann", order.CustomerName)
	assert.Equal(t, "no ice", order.SpecialInstructions)
}

func TestSubmit_EmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	co := newTestCheckout(orders)

	_, err := co.Submit(context.Background(), New(), "Nok", "")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
	assert.Equal(t, model.ErrCodeEmptyCart, model.ValidationCode(err))
	assert.Empty(t, orders.appended)
}

func TestSubmit_BlankCustomer(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		orders := &fakeOrders{}
		co := newTestCheckout(orders)

		c := New()
		require.NoError(t, c.SetQuantity(product("T1", "Tea", 2000), 1))

		_, err := co.Submit(context.Background(), c, name, "")
		require.Error(t, err)
		assert.True(t, model.IsMissingField(err))

		var ve *model.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "customer_name", ve.Field)

		assert.Equal(t, 1, c.Len(), "cart unchanged")
		assert.Empty(t, orders.appended)
	}
}

func TestSubmit_StoreFailureKeepsCart(t *testing.T) {
	boom := errors.New("disk full")
	orders := &fakeOrders{err: boom}
	co := newTestCheckout(orders)

	c := New()
	require.NoError(t, c.SetQuantity(product("T1", "Tea", 2000), 3))
	before := c.Lines()

	_, err := co.Submit(context.Background(), c, "Nok", "")
	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, c.Lines(), "cart unchanged for retry")

	// Retry succeeds once the store recovers.
	orders.err = nil
	order, err := co.Submit(context.Background(), c, "Nok", "")
	require.NoError(t, err)
	assert.Equal(t, model.Amount(6000), order.Total)
	assert.True(t, c.Empty())
}

func TestSubmit_NotConnected(t *testing.T) {
	co := NewCheckout(nil)

	c := New()
	require.NoError(t, c.SetQuantity(product("T1", "Tea", 2000), 1))

	_, err := co.Submit(context.Background(), c, "Nok", "")
	assert.ErrorIs(t, err, model.ErrNotConnected)
	assert.Equal(t, 1, c.Len())
}

func TestSubmit_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	co := newTestCheckout(&fakeOrders{}, WithTracerProvider(tp))

	c := New()
	require.NoError(t, c.SetQuantity(product("T1", "Tea", 2000), 1))
	_, err := co.Submit(context.Background(), c, "Nok", "")
	require.NoError(t, err)

	_, err = co.Submit(context.Background(), c, "Nok", "")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "cart.submit", spans[0].Name())
	assert.Len(t, spans[1].Events(), 1, "failed submit records the error")
}
