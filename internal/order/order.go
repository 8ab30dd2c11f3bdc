// Package order implements the order lifecycle: listing submitted orders and
// moving them between pending, completed and cancelled.
//
// There are no transition guards. Any status may replace any other, and a
// status change never touches items, totals or the catalog.
package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/foodsheet/internal/model"
)

// Store is the order store the lifecycle reads and writes.
type Store interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error)
}

// Service exposes the order lifecycle operations.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a Service. A nil store means no store is connected and
// every call returns model.ErrNotConnected.
func NewService(store Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns all orders in creation order.
func (s *Service) List(ctx context.Context) ([]model.Order, error) {
	if s.store == nil {
		return nil, model.ErrNotConnected
	}
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("list orders", err)
	}
	return orders, nil
}

// Get returns the order with the given id.
func (s *Service) Get(ctx context.Context, id string) (model.Order, error) {
	if id == "" {
		return model.Order{}, model.MissingFieldError("id")
	}
	if s.store == nil {
		return model.Order{}, model.ErrNotConnected
	}
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, model.NewPersistenceError("get order", err)
	}
	return o, nil
}

// SetStatus overwrites the status of order id. status is parsed first; an
// unknown value is an INVALID_STATUS ValidationError and nothing is written.
func (s *Service) SetStatus(ctx context.Context, id, status string) (model.Order, error) {
	if id == "" {
		return model.Order{}, model.MissingFieldError("id")
	}
	st, err := model.ParseOrderStatus(status)
	if err != nil {
		return model.Order{}, err
	}
	if s.store == nil {
		return model.Order{}, model.ErrNotConnected
	}

	o, err := s.store.UpdateOrderStatus(ctx, id, st)
	if err != nil {
		return model.Order{}, model.NewPersistenceError("update order status", err)
	}
	s.logger.Info("order status changed", "order_id", id, "status", string(st))
	return o, nil
}

// Summary renders the one-line management label for the n-th order
// (1-based), in the same Thai register as the category labels.
func Summary(n int, o model.Order) string {
	return fmt.Sprintf("ออเดอร์ %d - ลูกค้า: %s : ยอดรวม: %s (%s)",
		n, orUnspecified(o.CustomerName), o.Total.Display(), orUnspecified(o.Timestamp()))
}

// unspecified stands in for a missing customer name or timestamp.
const unspecified = "ไม่ระบุ"

func orUnspecified(s string) string {
	if s == "" {
		return unspecified
	}
	return s
}
