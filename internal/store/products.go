package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/foodsheet/internal/model"
)

const productColumns = `id, name, price, category, status, image_url, brand, version`

// ListProducts returns every product in insertion order.
// Returns an empty slice (not nil) when the catalog is empty.
func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// GetProduct returns the product with the given id.
// Returns ErrNotFound if no such product exists.
func (s *Store) GetProduct(ctx context.Context, id string) (model.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ?
	`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("get product %q: %w", id, ErrNotFound)
	}
	return p, err
}

// AppendProduct adds a product as the last row and returns it with its
// initial version. Returns ErrDuplicate if the id is taken.
func (s *Store) AppendProduct(ctx context.Context, p model.Product) (model.Product, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products
		(id, name, price, category, status, image_url, brand, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO NOTHING
	`,
		p.ID,
		p.Name,
		int64(p.Price),
		string(p.Category),
		string(p.Status),
		p.ImageURL,
		p.Brand,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("append product: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return model.Product{}, fmt.Errorf("append product: rows affected: %w", err)
	}
	if n == 0 {
		return model.Product{}, fmt.Errorf("append product %q: %w", p.ID, ErrDuplicate)
	}

	p.Version = 1
	return p, nil
}

// UpdateProduct overwrites the product with p.ID in place and bumps its
// version. When expectedVersion > 0 the write only happens if the stored
// version still matches; otherwise ErrConflict is returned.
func (s *Store) UpdateProduct(ctx context.Context, p model.Product, expectedVersion int64) (model.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	current, err := currentVersion(ctx, tx, "products", p.ID)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %q: %w", p.ID, err)
	}
	if expectedVersion > 0 && current != expectedVersion {
		return model.Product{}, fmt.Errorf("update product %q: %w (stored %d, expected %d)",
			p.ID, ErrConflict, current, expectedVersion)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = ?, price = ?, category = ?, status = ?, image_url = ?, brand = ?, version = version + 1
		WHERE id = ?
	`,
		p.Name,
		int64(p.Price),
		string(p.Category),
		string(p.Status),
		p.ImageURL,
		p.Brand,
		p.ID,
	)
	if err != nil {
		return model.Product{}, fmt.Errorf("update product %q: %w", p.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("update product: commit: %w", err)
	}

	p.Version = current + 1
	return p, nil
}

// DeleteProduct removes the product with the given id. The same
// expectedVersion rule as UpdateProduct applies.
func (s *Store) DeleteProduct(ctx context.Context, id string, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete product: begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := currentVersion(ctx, tx, "products", id)
	if err != nil {
		return fmt.Errorf("delete product %q: %w", id, err)
	}
	if expectedVersion > 0 && current != expectedVersion {
		return fmt.Errorf("delete product %q: %w (stored %d, expected %d)",
			id, ErrConflict, current, expectedVersion)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete product %q: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete product: commit: %w", err)
	}
	return nil
}

// currentVersion reads the version of a record inside tx.
// Returns ErrNotFound if the id does not exist.
func currentVersion(ctx context.Context, tx *sql.Tx, table, id string) (int64, error) {
	var version int64
	err := tx.QueryRowContext(ctx, `SELECT version FROM `+table+` WHERE id = ?`, id).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("read version: %w", err)
	}
	return version, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProduct scans one products row.
func scanProduct(r rowScanner) (model.Product, error) {
	var p model.Product
	var price int64
	var category, status string

	err := r.Scan(&p.ID, &p.Name, &price, &category, &status, &p.ImageURL, &p.Brand, &p.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, err
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}

	p.Price = model.Amount(price)
	p.Category = model.Category(category)
	p.Status = model.ProductStatus(status)
	return p, nil
}
