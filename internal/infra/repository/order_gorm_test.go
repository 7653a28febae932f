package repository

import (
	"testing"

	"marketplace/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestGroupOrderRows(t *testing.T) {
	price := decimal.NullDecimal{Decimal: decimal.NewFromInt(100), Valid: true}
	rows := []orderRow{
		{OrderID: 2, OrderUID: "b", UserID: 10, SellerID: 20, ItemID: ptr(int64(5)), ProductID: ptr(int64(7)), ProductName: ptr("Mug"), Quantity: ptr(int64(2)), Price: price, Subtotal: price,
			FirstName: ptr("Taro"), LastName: ptr("Yamada"), City: ptr("Tokyo"), Country: ptr("JP"),
			PaymentID: ptr(int64(3)), PaymentUID: ptr("pay_1"), PaymentStatus: ptr(int(model.PaymentStatusPaid))},
		{OrderID: 2, OrderUID: "b", ItemID: ptr(int64(6)), ProductID: ptr(int64(8)), Quantity: ptr(int64(1)), Price: price, Subtotal: price},
		//配送行の重複で同じ明細がもう一度出る
		{OrderID: 2, OrderUID: "b", ItemID: ptr(int64(5))},
		{OrderID: 1, OrderUID: "a"},
	}

	got := groupOrderRows(rows)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "b", first.OrderUID)
	assert.Equal(t, "Taro Yamada", first.BuyerName)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Mug", first.Items[0].ProductName)
	assert.Equal(t, int64(8), first.Items[1].ProductID)
	require.NotNil(t, first.Payment)
	assert.Equal(t, "pay_1", first.Payment.PaymentUID)
	assert.Nil(t, first.Tracking)

	//明細のない注文も空配列で返す
	assert.Equal(t, "a", got[1].OrderUID)
	assert.NotNil(t, got[1].Items)
	assert.Empty(t, got[1].Items)
}

func TestGroupOrderRows_Empty(t *testing.T) {
	got := groupOrderRows(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPickFields(t *testing.T) {
	in := map[string]any{"status": 2, "order_uid": "x", "tracking_link": "https://t.example"}
	out := pickFields(in, trackingColumns...)
	assert.Equal(t, map[string]any{"status": 2, "tracking_link": "https://t.example"}, out)
	assert.Equal(t, []string{"status", "tracking_link"}, sortedKeys(out))
}
