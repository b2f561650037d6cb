package cart

import "github.com/podomarket/storefront-service/internal/models"

// Cart is an ordered list of line items. It is a plain value; Service
// owns loading and persisting it per user.
type Cart struct {
	Items []models.CartItem `json:"items"`
}

// AddItem merges item into the cart. Rows are identified by
// (product, color, size); adding an existing variant increments its
// quantity instead of appending a duplicate row. Quantities below one are
// normalized to one.
func (c *Cart) AddItem(item models.CartItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	for i := range c.Items {
		if c.Items[i].SameVariant(item) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// UpdateItem replaces the quantity at index. A quantity below one removes
// the row, matching RemoveItem. Out-of-range indexes are ignored.
func (c *Cart) UpdateItem(index, quantity int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	if quantity < 1 {
		c.RemoveItem(index)
		return
	}
	c.Items[index].Quantity = quantity
}

// RemoveItem deletes the row at index, preserving order of the rest.
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.Items) {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
}

// RemoveByIDs deletes every row whose server-assigned ID is in ids. Rows
// without an ID are kept; they only exist locally.
func (c *Cart) RemoveByIDs(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != "" {
			if _, ok := drop[item.ID]; ok {
				continue
			}
		}
		kept = append(kept, item)
	}
	c.Items = kept
}

// Subtotal sums unit price times quantity over all rows.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// Count returns the total quantity across rows.
func (c *Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Select returns the rows whose IDs are in ids, in cart order.
func (c *Cart) Select(ids []string) []models.CartItem {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var selected []models.CartItem
	for _, item := range c.Items {
		if _, ok := want[item.ID]; ok {
			selected = append(selected, item)
		}
	}
	return selected
}
