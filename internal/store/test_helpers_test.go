package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/foodsheet/internal/model"
)

// createTestStore creates a new on-disk store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestProduct creates an active product with all required fields.
func createTestProduct(id, name string, price model.Amount) model.Product {
	return model.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Category: model.CategoryMainDish,
		Status:   model.ProductActive,
		ImageURL: "https://img.example/" + id + ".jpg",
		Brand:    "Test Kitchen",
	}
}

// createTestOrder creates a pending order with one line.
func createTestOrder(id, customer string, created time.Time) model.Order {
	items := []model.LineItem{
		{ProductID: "T1", Name: "Tea", Price: 2000, Quantity: 3, Subtotal: 6000},
	}
	return model.Order{
		ID:           id,
		CreatedAt:    created,
		CustomerName: customer,
		Items:        items,
		Total:        model.SumItems(items),
		Status:       model.OrderPending,
	}
}
