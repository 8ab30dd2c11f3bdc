package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTimestamp(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestOrderJSON(t *testing.T) {
	o := Order{
		ID:           "order-1",
		CreatedAt:    mustTimestamp(t, "2024-03-01 12:30:00"),
		CustomerName: "Nok",
		Items:        []LineItem{{ProductID: "T1", Name: "Tea", Price: 2000, Quantity: 3, Subtotal: 6000}},
		Total:        6000,
		Status:       OrderPending,
		Version:      1,
	}

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestamp":"2024-03-01 12:30:00"`)
	assert.Contains(t, string(data), `"total":60`)

	var back Order
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, o.CreatedAt.Equal(back.CreatedAt))
	back.CreatedAt = o.CreatedAt
	assert.Equal(t, o, back)
}

func TestOrderJSON_NilItems(t *testing.T) {
	data, err := json.Marshal(Order{ID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
	assert.Contains(t, string(data), `"timestamp":""`)
}

func TestSumItems(t *testing.T) {
	assert.Equal(t, Amount(0), SumItems(nil))
	assert.Equal(t, Amount(18000), SumItems([]LineItem{{Subtotal: 12000}, {Subtotal: 6000}}))
}
