package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/store"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewService(s, nil)
}

func newProduct(id string) model.Product {
	return model.Product{
		ID:       id,
		Name:     "Dish " + id,
		Price:    6000,
		Category: model.CategoryMainDish,
		ImageURL: "https://img.example/" + id + ".jpg",
		Brand:    "Kitchen",
	}
}

func ptr[T any](v T) *T { return &v }

func TestAdd(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	p := newProduct("P1")
	p.Status = model.ProductInactive // ignored: new products start active
	p.Name = "  ผัดไทย  "

	stored, err := svc.Add(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, model.ProductActive, stored.Status)
	assert.Equal(t, "ผัดไทย", stored.Name)
	assert.Equal(t, int64(1), stored.Version)

	got, err := svc.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestAdd_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Product)
		code   model.ValidationErrorCode
		field  string
	}{
		{"missing id", func(p *model.Product) { p.ID = " " }, model.ErrCodeMissingField, "id"},
		{"missing name", func(p *model.Product) { p.Name = "" }, model.ErrCodeMissingField, "name"},
		{"zero price", func(p *model.Product) { p.Price = 0 }, model.ErrCodeInvalidPrice, "price"},
		{"bad category", func(p *model.Product) { p.Category = "soup" }, model.ErrCodeInvalidCategory, "category"},
		{"missing image", func(p *model.Product) { p.ImageURL = "" }, model.ErrCodeMissingField, "image_url"},
		{"missing brand", func(p *model.Product) { p.Brand = "" }, model.ErrCodeMissingField, "brand"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupService(t)
			p := newProduct("P1")
			tt.mutate(&p)

			_, err := svc.Add(context.Background(), p)
			require.Error(t, err)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			assert.Equal(t, tt.field, ve.Field)

			products, err := svc.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, products)
		})
	}
}

func TestAdd_Duplicate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)

	_, err = svc.Add(ctx, newProduct("P1"))
	require.Error(t, err)
	assert.True(t, model.IsPersistence(err))
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUpdate_KeepsImageWhenNoneSupplied(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "P1", 1, Changes{
		Name:     ptr("Pad See Ew"),
		Price:    ptr(model.Amount(6500)),
		ImageURL: ptr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pad See Ew", updated.Name)
	assert.Equal(t, model.Amount(6500), updated.Price)
	assert.Equal(t, "https://img.example/P1.jpg", updated.ImageURL)
	assert.Equal(t, "Kitchen", updated.Brand)
	assert.Equal(t, int64(2), updated.Version)
}

func TestUpdate_Deactivate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, newProduct("P2"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "P1", 0, Changes{Status: ptr(model.ProductInactive)})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "P2", active[0].ID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdate_StaleVersion(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)
	_, err = svc.Update(ctx, "P1", 1, Changes{Name: ptr("First")})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "P1", 1, Changes{Name: ptr("Second")})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)

	got, err := svc.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
}

func TestUpdate_InvalidPrice(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, "P1", 0, Changes{Price: ptr(model.Amount(-100))})
	assert.Equal(t, model.ErrCodeInvalidPrice, model.ValidationCode(err))
}

func TestUpdate_NotFound(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Update(context.Background(), "missing", 0, Changes{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemove(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, id := range []string{"A", "B", "C"} {
		_, err := svc.Add(ctx, newProduct(id))
		require.NoError(t, err)
	}

	require.NoError(t, svc.Remove(ctx, "B", 1))

	products, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ID)
	assert.Equal(t, "C", products[1].ID)

	err = svc.Remove(ctx, "B", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestImport_Upsert(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, newProduct("P1"))
	require.NoError(t, err)

	incoming := []model.Product{newProduct("P1"), newProduct("P2")}
	incoming[0].Name = "Renamed"
	incoming[1].Status = model.ProductInactive

	result, err := svc.Import(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2"}, result.Added)
	assert.Equal(t, []string{"P1"}, result.Updated)

	p1, err := svc.Get(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p1.Name)

	p2, err := svc.Get(ctx, "P2")
	require.NoError(t, err)
	assert.Equal(t, model.ProductInactive, p2.Status, "declared status is kept")
}

func TestImport_StopsAtInvalid(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	bad := newProduct("P2")
	bad.Brand = ""

	result, err := svc.Import(ctx, []model.Product{newProduct("P1"), bad, newProduct("P3")})
	require.Error(t, err)
	assert.True(t, model.IsMissingField(err))
	assert.Equal(t, []string{"P1"}, result.Added)

	products, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestNotConnected(t *testing.T) {
	svc := NewService(nil, nil)
	ctx := context.Background()

	_, err := svc.List(ctx)
	assert.ErrorIs(t, err, model.ErrNotConnected)
	_, err = svc.Add(ctx, newProduct("P1"))
	assert.ErrorIs(t, err, model.ErrNotConnected)
	_, err = svc.Update(ctx, "P1", 0, Changes{})
	assert.ErrorIs(t, err, model.ErrNotConnected)
	assert.ErrorIs(t, svc.Remove(ctx, "P1", 0), model.ErrNotConnected)
	_, err = svc.Import(ctx, []model.Product{newProduct("P1")})
	assert.ErrorIs(t, err, model.ErrNotConnected)
}
