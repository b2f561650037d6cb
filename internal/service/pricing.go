package service

import (
	"strings"

	"github.com/podomarket/storefront-service/internal/models"
)

const (
	// FreeDeliveryThreshold is the subtotal at which delivery is free.
	FreeDeliveryThreshold int64 = 30000
	// BaseDeliveryFee is the flat fee below the threshold.
	BaseDeliveryFee int64 = 3000

	orderNameMaxRunes = 50
)

// CheckoutTotal is the pricing breakdown for a selection of cart rows.
type CheckoutTotal struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// DeliveryFee returns the fee for a subtotal: zero for an empty
// selection, zero at or above the free-delivery threshold, the flat fee
// otherwise.
func DeliveryFee(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	if subtotal >= FreeDeliveryThreshold {
		return 0
	}
	return BaseDeliveryFee
}

// CalculateCheckoutTotal computes the breakdown over the selected rows.
func CalculateCheckoutTotal(items []models.CartItem) CheckoutTotal {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal()
	}
	fee := DeliveryFee(subtotal)
	return CheckoutTotal{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal + fee,
	}
}

// BuildOrderName joins the selected item names into the display name the
// payment widget shows, truncated to 50 runes with an ellipsis.
func BuildOrderName(items []models.CartItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if item.Name != "" {
			names = append(names, item.Name)
		}
	}
	name := strings.Join(names, ", ")
	runes := []rune(name)
	if len(runes) <= orderNameMaxRunes {
		return name
	}
	return string(runes[:orderNameMaxRunes]) + "..."
}
