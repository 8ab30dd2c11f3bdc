// Package catalog implements catalog maintenance: adding, updating and
// removing products, and bulk import from a compiled menu.
package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/store"
)

// Store is the catalog store the service reads and writes.
type Store interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (model.Product, error)
	AppendProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product, expectedVersion int64) (model.Product, error)
	DeleteProduct(ctx context.Context, id string, expectedVersion int64) error
}

// Changes lists the fields an update overwrites. A nil field keeps the
// stored value, which is how an update without a new image keeps the old
// image reference.
type Changes struct {
	Name     *string
	Price    *model.Amount
	Category *model.Category
	Status   *model.ProductStatus
	ImageURL *string
	Brand    *string
}

// Service exposes catalog maintenance operations.
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

// List returns every product in creation order.
func (s *Service) List(ctx context.Context) ([]model.Product, error) {
	if s.store == nil {
		return nil, model.ErrNotConnected
	}
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, model.NewPersistenceError("list products", err)
	}
	return products, nil
}

// ListActive returns the products offered for ordering, in creation order.
func (s *Service) ListActive(ctx context.Context) ([]model.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]model.Product, 0, len(products))
	for _, p := range products {
		if p.Active() {
			active = append(active, p)
		}
	}
	return active, nil
}

// Get returns the product with the given id.
func (s *Service) Get(ctx context.Context, id string) (model.Product, error) {
	if id == "" {
		return model.Product{}, model.MissingFieldError("id")
	}
	if s.store == nil {
		return model.Product{}, model.ErrNotConnected
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, model.NewPersistenceError("get product", err)
	}
	return p, nil
}

// Add appends a new active product. Requires id, name, price > 0, a known
// category, an image reference and a brand.
func (s *Service) Add(ctx context.Context, p model.Product) (model.Product, error) {
	p = p.Normalize()
	p.Status = model.ProductActive
	if err := p.ValidateNew(); err != nil {
		return model.Product{}, err
	}
	return s.append(ctx, p)
}

func (s *Service) append(ctx context.Context, p model.Product) (model.Product, error) {
	if s.store == nil {
		return model.Product{}, model.ErrNotConnected
	}
	stored, err := s.store.AppendProduct(ctx, p)
	if err != nil {
		return model.Product{}, model.NewPersistenceError("append product", err)
	}
	s.logger.Info("product added", "product_id", stored.ID, "status", string(stored.Status))
	return stored, nil
}

// Update overwrites product id in place with the given changes. When
// expectedVersion > 0 the write fails with store.ErrConflict (wrapped) if
// the product changed since that version was read.
func (s *Service) Update(ctx context.Context, id string, expectedVersion int64, c Changes) (model.Product, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	next := c.apply(current).Normalize()
	if err := next.ValidateStored(); err != nil {
		return model.Product{}, err
	}
	return s.update(ctx, next, expectedVersion)
}

func (s *Service) update(ctx context.Context, p model.Product, expectedVersion int64) (model.Product, error) {
	stored, err := s.store.UpdateProduct(ctx, p, expectedVersion)
	if err != nil {
		return model.Product{}, model.NewPersistenceError("update product", err)
	}
	s.logger.Info("product updated", "product_id", stored.ID, "version", stored.Version)
	return stored, nil
}

func (c Changes) apply(p model.Product) model.Product {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Status != nil {
		p.Status = *c.Status
	}
	if c.ImageURL != nil && *c.ImageURL != "" {
		p.ImageURL = *c.ImageURL
	}
	if c.Brand != nil {
		p.Brand = *c.Brand
	}
	return p
}

// Remove deletes product id. The expectedVersion rule of Update applies.
func (s *Service) Remove(ctx context.Context, id string, expectedVersion int64) error {
	if id == "" {
		return model.MissingFieldError("id")
	}
	if s.store == nil {
		return model.ErrNotConnected
	}
	if err := s.store.DeleteProduct(ctx, id, expectedVersion); err != nil {
		return model.NewPersistenceError("delete product", err)
	}
	s.logger.Info("product removed", "product_id", id)
	return nil
}

// ImportResult reports which ids an Import added and which it updated.
type ImportResult struct {
	Added   []string `json:"added"`
	Updated []string `json:"updated"`
}

// Import upserts products in order: unknown ids are appended with their
// declared status, known ids are overwritten unconditionally. It stops at
// the first failure and returns what was done so far.
func (s *Service) Import(ctx context.Context, products []model.Product) (ImportResult, error) {
	result := ImportResult{Added: []string{}, Updated: []string{}}
	if s.store == nil {
		return result, model.ErrNotConnected
	}

	for _, p := range products {
		p = p.Normalize()
		if p.Status == "" {
			p.Status = model.ProductActive
		}
		if err := p.ValidateNew(); err != nil {
			return result, err
		}
		if err := p.ValidateStored(); err != nil {
			return result, err
		}

		_, err := s.store.GetProduct(ctx, p.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			if _, err := s.append(ctx, p); err != nil {
				return result, err
			}
			result.Added = append(result.Added, p.ID)
		case err != nil:
			return result, model.NewPersistenceError("get product", err)
		default:
			if _, err := s.update(ctx, p, 0); err != nil {
				return result, err
			}
			result.Updated = append(result.Updated, p.ID)
		}
	}
	return result, nil
}
