package cart

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/foodsheet/internal/model"
)

// Cart holds the lines one session is assembling into an order.
// The zero value is an empty cart.
type Cart struct {
	lines []model.LineItem
	index map[string]int // product id -> position in lines
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// SetQuantity sets the quantity of product p in the cart.
//
// quantity > 0 inserts the line, or overwrites it in place, with the
// product's current price. quantity == 0 removes the line (no-op if
// absent). Validation errors leave the cart unchanged.
func (c *Cart) SetQuantity(p model.Product, quantity int) error {
	if p.ID == "" {
		return model.MissingFieldError("product_id")
	}
	if quantity < 0 {
		return model.NewValidationError(model.ErrCodeInvalidQuantity, "quantity",
			fmt.Sprintf("quantity must not be negative, got %d", quantity))
	}
	if quantity == 0 {
		c.Remove(p.ID)
		return nil
	}
	if !p.Active() {
		return model.NewValidationError(model.ErrCodeInactiveProduct, "product_id",
			fmt.Sprintf("product %s is not available", p.ID))
	}
	if p.Price < 0 {
		return model.NewValidationError(model.ErrCodeInvalidPrice, "price", "price must not be negative")
	}

	line := model.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		Subtotal:  p.Price.Mul(quantity),
		ImageURL:  p.ImageURL,
	}

	if i, ok := c.index[p.ID]; ok {
		c.lines[i] = line
		return nil
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	c.index[p.ID] = len(c.lines)
	c.lines = append(c.lines, line)
	return nil
}

// Remove deletes the line for productID, if any. It reports whether a line
// was removed.
func (c *Cart) Remove(productID string) bool {
	i, ok := c.index[productID]
	if !ok {
		return false
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, productID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].ProductID] = j
	}
	return true
}

// Line returns the line for productID.
func (c *Cart) Line(productID string) (model.LineItem, bool) {
	i, ok := c.index[productID]
	if !ok {
		return model.LineItem{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
// Returns an empty slice (not nil) for an empty cart.
func (c *Cart) Lines() []model.LineItem {
	out := make([]model.LineItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total returns the sum of line subtotals.
func (c *Cart) Total() model.Amount {
	return model.SumItems(c.lines)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Clone returns an independent copy of the cart.
func (c *Cart) Clone() *Cart {
	out := &Cart{lines: c.Lines()}
	if len(c.lines) > 0 {
		out.index = make(map[string]int, len(c.index))
		for id, i := range c.index {
			out.index[id] = i
		}
	}
	return out
}

// Clear removes every line.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = nil
}

type cartJSON struct {
	Lines []model.LineItem `json:"lines"`
	Total model.Amount     `json:"total"`
}

// MarshalJSON encodes the cart as {"lines": [...], "total": n}.
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartJSON{Lines: c.Lines(), Total: c.Total()})
}

// UnmarshalJSON restores a cart encoded by MarshalJSON. Lines are re-derived
// so the subtotal invariant holds regardless of the stored subtotals; the
// encoded total is ignored. Lines SetQuantity could not have built are
// rejected.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var raw cartJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	restored := Cart{}
	for _, l := range raw.Lines {
		if l.Quantity <= 0 {
			continue
		}
		if l.ProductID == "" {
			return fmt.Errorf("cart: line %q has no product id", l.Name)
		}
		if l.Price < 0 {
			return fmt.Errorf("cart: line for product %q has a negative price", l.ProductID)
		}
		if _, dup := restored.index[l.ProductID]; dup {
			return fmt.Errorf("cart: duplicate line for product %q", l.ProductID)
		}
		l.Subtotal = l.Price.Mul(l.Quantity)
		if restored.index == nil {
			restored.index = make(map[string]int)
		}
		restored.index[l.ProductID] = len(restored.lines)
		restored.lines = append(restored.lines, l)
	}
	*c = restored
	return nil
}
