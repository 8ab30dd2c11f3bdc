package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/foodsheet/internal/model"
)

const orderColumns = `id, created_at, customer_name, items_json, total, special_instructions, status, version`

// ListOrders returns every order in creation order.
// Returns an empty slice (not nil) when there are no orders.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns the order with the given id.
// Returns ErrNotFound if no such order exists.
func (s *Store) GetOrder(ctx context.Context, id string) (model.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = ?
	`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, fmt.Errorf("get order %q: %w", id, ErrNotFound)
	}
	return o, err
}

// AppendOrder records a new order as the last row.
// Items are stored as canonical items JSON. Returns ErrDuplicate if the id
// is taken.
func (s *Store) AppendOrder(ctx context.Context, o model.Order) error {
	itemsJSON, err := model.EncodeItems(o.Items)
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO orders
		(id, created_at, customer_name, items_json, total, special_instructions, status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO NOTHING
	`,
		o.ID,
		o.CreatedAt.In(time.Local).Format(model.TimestampLayout),
		o.CustomerName,
		itemsJSON,
		int64(o.Total),
		o.SpecialInstructions,
		string(o.Status),
	)
	if err != nil {
		return fmt.Errorf("append order: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append order: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("append order %q: %w", o.ID, ErrDuplicate)
	}
	return nil
}

// UpdateOrderStatus overwrites the status of the order with the given id
// and returns the updated order. Any status may replace any other.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order status: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := currentVersion(ctx, tx, "orders", id); err != nil {
		return model.Order{}, fmt.Errorf("update order %q: %w", id, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET status = ?, version = version + 1 WHERE id = ?
	`, string(status), id)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order %q: %w", id, err)
	}

	row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if err != nil {
		return model.Order{}, fmt.Errorf("update order %q: reload: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, fmt.Errorf("update order status: commit: %w", err)
	}
	return o, nil
}

// scanOrder scans one orders row.
func scanOrder(r rowScanner) (model.Order, error) {
	var o model.Order
	var createdAt, itemsJSON, status string
	var total int64

	err := r.Scan(&o.ID, &createdAt, &o.CustomerName, &itemsJSON, &total, &o.SpecialInstructions, &status, &o.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, err
	}
	if err != nil {
		return model.Order{}, fmt.Errorf("scan order: %w", err)
	}

	o.CreatedAt, err = model.ParseTimestamp(createdAt)
	if err != nil {
		return model.Order{}, fmt.Errorf("scan order %q: created_at: %w", o.ID, err)
	}
	o.Items, err = model.DecodeItems(itemsJSON)
	if err != nil {
		return model.Order{}, fmt.Errorf("scan order %q: %w", o.ID, err)
	}
	o.Total = model.Amount(total)
	o.Status = model.OrderStatus(status)
	return o, nil
}
