// Package cart implements the shopping cart ledger: quantity edits, removal
// and the subtotal/shipping/total roll-up. Every operation returns a new
// slice and leaves its input untouched; the caller owns where the cart lives.
package cart

import (
	"math"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Item is one line of the cart.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"imageUrl"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	ProductLink string  `json:"productLink"`
}

// Totals is the order summary of a cart.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// SetQuantity sets the quantity of the item with the given id, never below 1.
// Unknown ids leave the cart unchanged.
func SetQuantity(items []Item, id string, quantity int) []Item {
	return lo.Map(items, func(it Item, _ int) Item {
		if it.ID == id {
			it.Quantity = max(1, quantity)
		}
		return it
	})
}

// Remove drops the item with the given id. Unknown ids leave the cart unchanged.
func Remove(items []Item, id string) []Item {
	return lo.Reject(items, func(it Item, _ int) bool { return it.ID == id })
}

// Add appends item, or bumps the quantity of an existing line with the same id.
func Add(items []Item, item Item) []Item {
	item.Quantity = max(1, item.Quantity)

	existing, ok := lo.Find(items, func(it Item) bool { return it.ID == item.ID })
	if !ok {
		return append(lo.Map(items, func(it Item, _ int) Item { return it }), item)
	}
	return SetQuantity(items, item.ID, addQuantity(existing.Quantity, item.Quantity))
}

// addQuantity sums two non-negative quantities, saturating at math.MaxInt.
func addQuantity(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

// Count is the number of line items.
func Count(items []Item) int {
	return len(items)
}

// LineTotal is unit price times quantity.
func LineTotal(item Item) float64 {
	return lineTotal(item).InexactFloat64()
}

func lineTotal(item Item) decimal.Decimal {
	return decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// ComputeTotals rolls the cart up. Shipping is only charged on a non-empty cart.
func ComputeTotals(items []Item, shippingCost float64) Totals {
	subtotal := decimal.Sum(decimal.Zero, lo.Map(items, func(it Item, _ int) decimal.Decimal {
		return lineTotal(it)
	})...)

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = decimal.NewFromFloat(shippingCost)
	}

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    subtotal.Add(shipping).InexactFloat64(),
	}
}
