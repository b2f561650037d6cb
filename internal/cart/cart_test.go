package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/podomarket/storefront-service/internal/models"
)

func item(productID, color, size string, price int64, qty int) models.CartItem {
	return models.CartItem{
		ProductID:     productID,
		Name:          "상품 " + productID,
		Price:         price,
		Quantity:      qty,
		SelectedColor: color,
		SelectedSize:  size,
	}
}

func TestCart_AddItem_MergesSameVariant(t *testing.T) {
	c := &Cart{}

	c.AddItem(item("p1", "black", "M", 19000, 1))
	c.AddItem(item("p1", "black", "M", 19000, 2))

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestCart_AddItem_DifferentVariantIsNewRow(t *testing.T) {
	tests := []struct {
		name  string
		other models.CartItem
	}{
		{"different product", item("p2", "black", "M", 19000, 1)},
		{"different color", item("p1", "white", "M", 19000, 1)},
		{"different size", item("p1", "black", "L", 19000, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{}
			c.AddItem(item("p1", "black", "M", 19000, 1))
			c.AddItem(tt.other)
			assert.Len(t, c.Items, 2)
		})
	}
}

func TestCart_AddItem_NormalizesQuantity(t *testing.T) {
	c := &Cart{}

	c.AddItem(item("p1", "", "", 5000, 0))

	assert.Equal(t, 1, c.Items[0].Quantity)
}

func TestCart_UpdateItem_ZeroQuantityRemoves(t *testing.T) {
	c := &Cart{}
	c.AddItem(item("p1", "", "", 5000, 2))
	c.AddItem(item("p2", "", "", 7000, 1))

	c.UpdateItem(0, 0)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
}

func TestCart_UpdateItem_OutOfRangeIgnored(t *testing.T) {
	c := &Cart{}
	c.AddItem(item("p1", "", "", 5000, 2))

	c.UpdateItem(-1, 3)
	c.UpdateItem(5, 3)

	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestCart_RemoveByIDs(t *testing.T) {
	c := &Cart{Items: []models.CartItem{
		{ID: "row-1", ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
		{ID: "row-3", ProductID: "p3", Quantity: 1},
	}}

	c.RemoveByIDs([]string{"row-1", "row-3"})

	// The local-only row has no server id and must survive.
	assert.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
}

func TestCart_SubtotalAndCount(t *testing.T) {
	c := &Cart{}
	c.AddItem(item("p1", "", "", 19000, 2))
	c.AddItem(item("p2", "", "", 17000, 1))

	assert.Equal(t, int64(55000), c.Subtotal())
	assert.Equal(t, 3, c.Count())
}

func TestCart_Select_PreservesOrder(t *testing.T) {
	c := &Cart{Items: []models.CartItem{
		{ID: "a", ProductID: "p1", Quantity: 1},
		{ID: "b", ProductID: "p2", Quantity: 1},
		{ID: "c", ProductID: "p3", Quantity: 1},
	}}

	selected := c.Select([]string{"c", "a"})

	assert.Len(t, selected, 2)
	assert.Equal(t, "a", selected[0].ID)
	assert.Equal(t, "c", selected[1].ID)
}
