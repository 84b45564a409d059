package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Kind(t *testing.T) {
	tests := []struct {
		status OrderStatus
		kind   StatusKind
		badge  string
	}{
		{"created", StatusCreated, "blue"},
		{"PAID", StatusPaid, "green"},
		{"shipped", StatusOther, "slate"},
		{"", StatusOther, "slate"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.status.Kind())
			assert.Equal(t, tt.badge, tt.status.Kind().Badge())
		})
	}
}

func TestCart_DecodesDecimalText(t *testing.T) {
	body := `{
		"id": 3, "status": "active",
		"items": [{"id": 9, "product_id": 7, "quantity": 3, "unit_price": "10.00",
			"line_net": "30.00", "line_vat": "5.70", "line_gross": "35.70",
			"product": {"id": 7, "name": "Jeans", "price": "12.00", "vat_rate": "19.00"}}],
		"totals": {"total_net": "30.00", "total_vat": "5.70", "total_gross": "35.70"}
	}`

	var cart Cart
	require.NoError(t, json.Unmarshal([]byte(body), &cart))

	assert.False(t, cart.IsEmpty())
	item, ok := cart.ItemForProduct(7)
	require.True(t, ok)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("10")))
	assert.True(t, item.Product.Price.Equal(decimal.RequireFromString("12")))
	assert.True(t, cart.Totals.Consistent())

	_, ok = cart.Item(10)
	assert.False(t, ok)
}

func TestTotals_Consistent(t *testing.T) {
	totals := Totals{
		Net:   decimal.RequireFromString("100.00"),
		VAT:   decimal.RequireFromString("19.00"),
		Gross: decimal.RequireFromString("118.99"),
	}
	assert.False(t, totals.Consistent())
}

func TestCart_NilIsEmpty(t *testing.T) {
	var cart *Cart
	assert.True(t, cart.IsEmpty())
	_, ok := cart.Item(1)
	assert.False(t, ok)
}
