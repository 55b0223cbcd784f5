package refund

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/storefleet/server/internal/module/order"
)

func TestBuild_FullRefundCoversEveryLine(t *testing.T) {
	o, p := paidOrder()
	c := NewCalculator()

	b := c.Build(&CreateRefundRequest{Type: TypeFull}, o, p)

	assert.Equal(t, p.Amount, b.Amount)
	assert.Len(t, b.Items, len(o.Items))
	var total int64
	for i, item := range b.Items {
		assert.Equal(t, o.Items[i].ProductID, item.ProductID)
		assert.Equal(t, o.Items[i].Quantity, item.Quantity)
		assert.Equal(t, o.Items[i].UnitPrice*int64(o.Items[i].Quantity), item.Amount)
		total += item.Amount
	}
	assert.Equal(t, b.Amount, total)
}

func TestBuild_PartialRefundItemAmounts(t *testing.T) {
	o, p := paidOrder()
	c := NewCalculator()

	b := c.Build(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(75.00),
		Items: []CreateRefundItem{
			{ProductID: o.Items[0].ProductID, Quantity: 1}, // 25.00
			{ProductID: o.Items[1].ProductID, Quantity: 1}, // 50.00
		},
	}, o, p)

	assert.Equal(t, int64(7500), b.Amount)
	assert.Len(t, b.Items, 2)
	assert.Equal(t, int64(2500), b.Items[0].Amount)
	assert.Equal(t, int64(5000), b.Items[1].Amount)

	var total int64
	for _, item := range b.Items {
		total += item.Amount
	}
	assert.Equal(t, b.Amount, total)
}

func TestBuild_PartialRefundCarriesLineVariant(t *testing.T) {
	o, p := paidOrder()
	lineVariant := uuid.New()
	o.Items = []order.Item{
		{ProductID: o.Items[0].ProductID, VariantID: &lineVariant, Quantity: 2, UnitPrice: 2500},
	}
	c := NewCalculator()

	// The request omits the variant; the breakdown must still carry the
	// order line's variant so restoration hits the right supplier pool.
	b := c.Build(&CreateRefundRequest{
		Type:   TypePartial,
		Amount: amountPtr(25.00),
		Items:  []CreateRefundItem{{ProductID: o.Items[0].ProductID, Quantity: 1}},
	}, o, p)

	assert.Len(t, b.Items, 1)
	assert.NotNil(t, b.Items[0].VariantID)
	assert.Equal(t, lineVariant, *b.Items[0].VariantID)
}
