package cli

import (
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/store"
)

func seedOrders(t *testing.T, db string) {
	t.Helper()
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	padThai := []model.LineItem{{ProductID: "P001", Name: "ผัดไทย", Price: 6000, Quantity: 1, Subtotal: 6000}}
	tea := []model.LineItem{{ProductID: "B002", Name: "ชาเย็น", Price: 2550, Quantity: 1, Subtotal: 2550}}

	ctx := context.Background()
	require.NoError(t, st.AppendOrder(ctx, model.Order{
		ID:                  "O1",
		CreatedAt:           time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
		CustomerName:        "Nok",
		Items:               padThai,
		Total:               model.SumItems(padThai),
		SpecialInstructions: "ไม่เผ็ด",
		Status:              model.OrderPending,
	}))
	require.NoError(t, st.AppendOrder(ctx, model.Order{
		ID:           "O2",
		CreatedAt:    time.Date(2024, 3, 1, 12, 5, 0, 0, time.Local),
		CustomerName: "Ploy",
		Items:        tea,
		Total:        model.SumItems(tea),
		Status:       model.OrderCompleted,
	}))
}

func TestOrderList_Text(t *testing.T) {
	db := testDB(t)
	seedOrders(t, db)

	out, err := executeCommand(t, "--db", db, "order", "list")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "order_list", []byte(out))
}

func TestOrderList_VerboseShowsItems(t *testing.T) {
	db := testDB(t)
	seedOrders(t, db)

	out, err := executeCommand(t, "--db", db, "-v", "order", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "1 x ผัดไทย")
	assert.Contains(t, out, "note: ไม่เผ็ด")
}

func TestOrderList_JSON(t *testing.T) {
	db := testDB(t)
	seedOrders(t, db)

	out, err := executeCommand(t, "--db", db, "--format", "json", "order", "list")
	require.NoError(t, err)

	resp := decodeEnvelope[[]OrderEntry](t, out)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 1, resp.Data[0].Number)
	assert.Equal(t, "ออเดอร์ 1 - ลูกค้า: Nok : ยอดรวม: ฿60.00 (2024-03-01 12:00:00)", resp.Data[0].Summary)
	assert.Equal(t, "O2", resp.Data[1].Order.ID)
	assert.Equal(t, model.Amount(2550), resp.Data[1].Order.Total)
}

func TestOrderList_Empty(t *testing.T) {
	out, err := executeCommand(t, "--db", testDB(t), "order", "list")
	require.NoError(t, err)
	assert.Equal(t, "No orders.\n", out)
}

func TestOrderStatus(t *testing.T) {
	db := testDB(t)
	seedOrders(t, db)

	out, err := executeCommand(t, "--db", db, "order", "status", "O2", "pending")
	require.NoError(t, err, "completed orders can be reopened")
	assert.Contains(t, out, "O2 is now pending")

	out, err = executeCommand(t, "--db", db, "--format", "json", "order", "status", "O1", "cancelled")
	require.NoError(t, err)
	resp := decodeEnvelope[model.Order](t, out)
	assert.Equal(t, model.OrderCancelled, resp.Data.Status)
	assert.Equal(t, int64(2), resp.Data.Version)
}

func TestOrderStatus_Rejected(t *testing.T) {
	db := testDB(t)
	seedOrders(t, db)

	out, err := executeCommand(t, "--db", db, "order", "status", "O1", "shipped")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeValidation)

	out, err = executeCommand(t, "--db", db, "order", "status", "O404", "completed")
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeNotFound)

	_, err = executeCommand(t, "--db", db, "order", "status", "O1")
	require.Error(t, err, "status is required")
}
