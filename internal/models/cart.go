package models

// CartItem is one row of a cart. ID is assigned by the commerce backend
// when the row exists server-side; locally created rows carry an empty ID
// until the next reconciliation.
type CartItem struct {
	ID            string `json:"id,omitempty"`
	ProductID     string `json:"product_id"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	Image         string `json:"image,omitempty"`
	Quantity      int    `json:"quantity"`
	SelectedColor string `json:"selected_color,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
}

// SameVariant reports whether two rows refer to the same purchasable
// variant. This is the merge identity for the cart: product plus the
// selected color and size.
func (i CartItem) SameVariant(other CartItem) bool {
	return i.ProductID == other.ProductID &&
		i.SelectedColor == other.SelectedColor &&
		i.SelectedSize == other.SelectedSize
}

// LineTotal returns unit price times quantity.
func (i CartItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
