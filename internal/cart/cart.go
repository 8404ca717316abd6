// Package cart implements the in-memory shopping cart and its derived
// totals. The engine is the only component that mutates line items; every
// mutation recomputes subtotal, discount, total and item count before
// returning, so the getters always reflect the current line items.
//
// A cart belongs to exactly one shopper session and is not safe for
// concurrent use.
package cart

import (
	"fmt"

	"github.com/fianka/shop-api/internal/models"
	"github.com/fianka/shop-api/internal/promo"
	"github.com/shopspring/decimal"
)

// LineItem is one (product, size, color) selection with a quantity.
type LineItem struct {
	ID       string         `json:"id"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Size     string         `json:"size,omitempty"`
	Color    string         `json:"color,omitempty"`
}

// LineItemID builds the identity key for a cart line. Adding the same key
// again increments quantity instead of appending a duplicate line.
func LineItemID(productID int64, size, color string) string {
	if size == "" {
		size = "default"
	}
	if color == "" {
		color = "default"
	}
	return fmt.Sprintf("%d-%s-%s", productID, size, color)
}

// Snapshot is the durable form of a cart. Totals are carried for display
// only; Restore recomputes them from the line items and re-validates the
// promo code, since prices may have changed and codes may have been
// revoked between sessions.
type Snapshot struct {
	Items     []LineItem      `json:"items"`
	PromoCode string          `json:"promo_code,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

type Engine struct {
	registry *promo.Registry

	items     []LineItem // insertion order kept for display
	promoCode string

	subtotal  decimal.Decimal
	discount  decimal.Decimal
	total     decimal.Decimal
	itemCount int
}

func NewEngine(registry *promo.Registry) *Engine {
	e := &Engine{registry: registry}
	e.recompute()
	return e
}

// AddItem appends a new line or increments the quantity of an existing
// line with the same (product, size, color) key. A non-positive quantity
// is clamped to 1.
func (e *Engine) AddItem(product models.Product, quantity int, size, color string) {
	if quantity < 1 {
		quantity = 1
	}

	id := LineItemID(product.ID, size, color)
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].Quantity += quantity
			e.recompute()
			return
		}
	}

	e.items = append(e.items, LineItem{
		ID:       id,
		Product:  product,
		Quantity: quantity,
		Size:     size,
		Color:    color,
	})
	e.recompute()
}

// RemoveItem deletes the matching line. Removing an unknown id is a no-op.
func (e *Engine) RemoveItem(lineItemID string) {
	for i := range e.items {
		if e.items[i].ID == lineItemID {
			e.items = append(e.items[:i], e.items[i+1:]...)
			break
		}
	}
	e.recompute()
}

// UpdateQuantity replaces a line's quantity. A quantity of zero or less
// removes the line.
func (e *Engine) UpdateQuantity(lineItemID string, quantity int) {
	if quantity <= 0 {
		e.RemoveItem(lineItemID)
		return
	}
	for i := range e.items {
		if e.items[i].ID == lineItemID {
			e.items[i].Quantity = quantity
			break
		}
	}
	e.recompute()
}

// Clear empties the cart and drops any applied promo code.
func (e *Engine) Clear() {
	e.items = nil
	e.promoCode = ""
	e.recompute()
}

// ApplyPromoCode validates the code against the registry. A valid code is
// stored normalized and the discount takes effect immediately. An invalid
// code leaves the cart, including any previously applied promo, unchanged;
// the rejection is reported through the returned Result, never as an error.
func (e *Engine) ApplyPromoCode(code string) promo.Result {
	result := e.registry.Validate(code)
	if result.Valid {
		e.promoCode = promo.Normalize(code)
		e.recompute()
	}
	return result
}

// RemovePromoCode clears promo state; the total reverts to the subtotal.
func (e *Engine) RemovePromoCode() {
	e.promoCode = ""
	e.recompute()
}

func (e *Engine) Subtotal() decimal.Decimal { return e.subtotal }
func (e *Engine) Discount() decimal.Decimal { return e.discount }
func (e *Engine) Total() decimal.Decimal    { return e.total }
func (e *Engine) ItemCount() int            { return e.itemCount }
func (e *Engine) PromoCode() string         { return e.promoCode }

// Items returns the cart lines in insertion order. The slice is a copy;
// mutating it does not affect the cart.
func (e *Engine) Items() []LineItem {
	items := make([]LineItem, len(e.items))
	copy(items, e.items)
	return items
}

// Snapshot captures the cart for durable storage.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Items:     e.Items(),
		PromoCode: e.promoCode,
		Subtotal:  e.subtotal,
		Discount:  e.discount,
		Total:     e.total,
		ItemCount: e.itemCount,
	}
}

// Restore rehydrates the cart from a snapshot. Stored totals are ignored:
// subtotal, discount, total and item count are recomputed from the line
// items, and the promo code is re-validated against the registry. A code
// revoked since the snapshot was taken is dropped silently.
func (e *Engine) Restore(s Snapshot) {
	e.items = make([]LineItem, len(s.Items))
	copy(e.items, s.Items)

	e.promoCode = ""
	if result := e.registry.Validate(s.PromoCode); result.Valid {
		e.promoCode = promo.Normalize(s.PromoCode)
	}
	e.recompute()
}

// recompute re-derives every total from the line items. Invariants held on
// exit: subtotal = sum(price*qty), discount in [0, subtotal],
// total = subtotal - discount, itemCount = sum(qty).
func (e *Engine) recompute() {
	subtotal := decimal.Zero
	count := 0
	for _, item := range e.items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.Product.Price.Mul(qty))
		count += item.Quantity
	}

	e.subtotal = subtotal
	e.itemCount = count
	e.discount = decimal.Zero
	if e.promoCode != "" {
		e.discount = e.registry.DiscountAmount(subtotal, e.promoCode)
	}
	e.total = subtotal.Sub(e.discount)
}
