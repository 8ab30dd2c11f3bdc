package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the text form of Order.CreatedAt in rows and output.
const TimestampLayout = "2006-01-02 15:04:05"

// OrderStatus is the lifecycle state of a persisted order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status. Any status may follow any other.
var OrderStatuses = []OrderStatus{OrderPending, OrderCompleted, OrderCancelled}

// Terminal reports whether s is completed or cancelled. It is informational
// only; transitions out of terminal states are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// ParseOrderStatus parses one of pending, completed, cancelled.
func ParseOrderStatus(s string) (OrderStatus, error) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range OrderStatuses {
		if v == st {
			return st, nil
		}
	}
	return "", NewValidationError(ErrCodeInvalidStatus, "status", "unknown order status "+s)
}

// LineItem is one cart line, and once submitted, one order item. Price is
// the unit price captured when the line was set.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     Amount `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  Amount `json:"subtotal"`
	ImageURL  string `json:"image_url"`
}

// Order is an immutable snapshot of a submitted cart. Only Status and
// Version change after creation.
type Order struct {
	ID                  string      `json:"id"`
	CreatedAt           time.Time   `json:"-"`
	CustomerName        string      `json:"customer_name"`
	Items               []LineItem  `json:"items"`
	Total               Amount      `json:"total"`
	SpecialInstructions string      `json:"special_instructions"`
	Status              OrderStatus `json:"status"`
	Version             int64       `json:"version"`
}

// Timestamp returns CreatedAt in TimestampLayout.
func (o Order) Timestamp() string {
	if o.CreatedAt.IsZero() {
		return ""
	}
	return o.CreatedAt.Format(TimestampLayout)
}

// ParseTimestamp parses TimestampLayout text in the local zone.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// SumItems returns the sum of item subtotals.
func SumItems(items []LineItem) Amount {
	var total Amount
	for _, it := range items {
		total += it.Subtotal
	}
	return total
}

type orderJSON struct {
	ID                  string      `json:"id"`
	Timestamp           string      `json:"timestamp"`
	CustomerName        string      `json:"customer_name"`
	Items               []LineItem  `json:"items"`
	Total               Amount      `json:"total"`
	SpecialInstructions string      `json:"special_instructions"`
	Status              OrderStatus `json:"status"`
	Version             int64       `json:"version"`
}

// MarshalJSON renders CreatedAt as "timestamp" in TimestampLayout.
func (o Order) MarshalJSON() ([]byte, error) {
	items := o.Items
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(orderJSON{
		ID:                  o.ID,
		Timestamp:           o.Timestamp(),
		CustomerName:        o.CustomerName,
		Items:               items,
		Total:               o.Total,
		SpecialInstructions: o.SpecialInstructions,
		Status:              o.Status,
		Version:             o.Version,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (o *Order) UnmarshalJSON(data []byte) error {
	var raw orderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var created time.Time
	if raw.Timestamp != "" {
		t, err := ParseTimestamp(raw.Timestamp)
		if err != nil {
			return fmt.Errorf("order timestamp: %w", err)
		}
		created = t
	}
	*o = Order{
		ID:                  raw.ID,
		CreatedAt:           created,
		CustomerName:        raw.CustomerName,
		Items:               raw.Items,
		Total:               raw.Total,
		SpecialInstructions: raw.SpecialInstructions,
		Status:              raw.Status,
		Version:             raw.Version,
	}
	return nil
}
