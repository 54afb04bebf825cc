package cart

import (
	"sync"

	"github.com/plantsforlife/storefront/internal/catalog"
)

// Item is a product snapshot plus the selected quantity.
type Item struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Cart aggregates a shopper's selected products in memory. It is never
// persisted; it lives exactly as long as the shopper's session. Quantities
// are clamped to the product's stock at mutation time and re-validated by
// the store at order time.
type Cart struct {
	mu    sync.Mutex
	items []Item
}

func New() *Cart { return &Cart{} }

// Add puts qty units of a product in the cart, merging with an existing
// line. The resulting quantity is clamped to the product's stock; the
// returned flag reports whether clamping dropped part of the request so
// the caller can surface it immediately.
func (c *Cart) Add(p catalog.Product, qty int) (clamped bool) {
	if qty < 1 {
		qty = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == p.ProductID {
			want := c.items[i].Quantity + qty
			c.items[i].Quantity = min(want, p.Stock)
			return want > p.Stock
		}
	}
	c.items = append(c.items, Item{Product: p, Quantity: min(qty, p.Stock)})
	return qty > p.Stock
}

// Remove drops a line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// SetQuantity sets a line's quantity exactly. A non-positive qty removes
// the line; qty above stock clamps to stock and reports it.
func (c *Cart) SetQuantity(productID string, qty int) (clamped bool) {
	if qty < 1 {
		c.Remove(productID)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = min(qty, c.items[i].Stock)
			return qty > c.items[i].Stock
		}
	}
	return false
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the sum of price*quantity over current lines, recomputed on
// every call so it can never drift from the lines themselves.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// ItemCount is the sum of quantities over current lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Registry keeps one cart per authenticated user for the lifetime of the
// process. Carts are session state, not documents: nothing here touches
// the store.
type Registry struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewRegistry() *Registry {
	return &Registry{carts: map[string]*Cart{}}
}

// For returns the user's cart, creating it on first use.
func (r *Registry) For(userID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		c = New()
		r.carts[userID] = c
	}
	return c
}
