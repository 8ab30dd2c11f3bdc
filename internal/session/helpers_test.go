package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/testutil"
)

var sessionStart = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testConfig(clock *testutil.StepClock) Config {
	return Config{
		TTL:             time.Hour,
		CleanupInterval: time.Hour,
		Clock:           clock,
		IDs:             testutil.NewSequenceGenerator("sess"),
	}
}

func tea() model.Product {
	return model.Product{
		ID:       "T1",
		Name:     "Tea",
		Price:    2000,
		Category: model.CategoryBeverage,
		Status:   model.ProductActive,
	}
}

// exerciseManager runs the behavior every Manager shares.
func exerciseManager(t *testing.T, m Manager, clock *testutil.StepClock) {
	t.Helper()
	ctx := t.Context()

	s, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.Equal(t, PageOrders, s.Page)
	require.True(t, s.Cart.Empty())

	// Mutating the returned copy does not touch the stored session.
	require.NoError(t, s.Cart.SetQuantity(tea(), 3))
	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, got.Cart.Empty())

	s.Page = PageProducts
	require.NoError(t, m.Save(ctx, s))

	got, err = m.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, PageProducts, got.Page)
	require.Equal(t, 1, got.Cart.Len())
	require.Equal(t, model.Amount(6000), got.Cart.Total())

	require.NoError(t, m.Delete(ctx, s.ID))
	_, err = m.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, m.Save(ctx, s), ErrSessionNotFound)
	require.NoError(t, m.Delete(ctx, s.ID), "deleting twice is fine")

	_, err = m.Get(ctx, "never-created")
	require.ErrorIs(t, err, ErrSessionNotFound)
}
