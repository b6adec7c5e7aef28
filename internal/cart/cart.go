// Package cart maintains the pending purchase selection for one
// browsing session: an in-memory item list with every mutation written
// through to a durable snapshot, the way a browser client keeps its
// cart in local storage.
package cart

import (
	"maison/internal/models"
)

// Item is a product snapshot in the cart plus the selected variant and
// quantity. Items are keyed by (product id, variant label): adding the
// same key again bumps the quantity instead of appending.
type Item struct {
	ProductID int    `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	Variant   string `json:"variant"`
	Quantity  int    `json:"quantity"`
}

// Store persists cart snapshots between sessions.
type Store interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// Cart is the reducer-style cart state. It is not safe for concurrent
// use; one cart belongs to one session.
type Cart struct {
	items []Item
	store Store
}

// Open hydrates a cart from its store. Malformed or missing stored
// data yields an empty cart rather than an error.
func Open(store Store) *Cart {
	c := &Cart{store: store}
	if items, err := store.Load(); err == nil && items != nil {
		c.items = items
	}
	return c
}

func (c *Cart) persist() error {
	return c.store.Save(c.items)
}

// Add puts one unit of the product's variant into the cart. An existing
// (product, variant) entry has its quantity incremented; anything else
// appends a new entry with quantity 1. No stock check happens here:
// stock is advisory until checkout.
func (c *Cart) Add(product models.Product, variant string) error {
	for i := range c.items {
		if c.items[i].ProductID == product.ID && c.items[i].Variant == variant {
			c.items[i].Quantity++
			return c.persist()
		}
	}
	c.items = append(c.items, Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Variant:   variant,
		Quantity:  1,
	})
	return c.persist()
}

// Remove deletes the matching entry. Removing an absent key is a no-op.
func (c *Cart) Remove(productID int, variant string) error {
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Variant == variant {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.persist()
		}
	}
	return nil
}

// UpdateQuantity replaces an entry's quantity. Values below 1 are
// silently ignored: the entry keeps its prior quantity and is neither
// clamped nor removed.
func (c *Cart) UpdateQuantity(productID int, variant string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	for i := range c.items {
		if c.items[i].ProductID == productID && c.items[i].Variant == variant {
			c.items[i].Quantity = quantity
			return c.persist()
		}
	}
	return nil
}

// Clear empties the cart. Called after a successful order placement.
func (c *Cart) Clear() error {
	c.items = nil
	return c.persist()
}

// Items returns a copy of the current entries.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct entries.
func (c *Cart) Len() int { return len(c.items) }

// Total is the sum of price x quantity over all entries, recomputed on
// every call. An empty cart totals 0.
func (c *Cart) Total() int {
	total := 0
	for _, item := range c.items {
		total += item.Price * item.Quantity
	}
	return total
}

// OrderItems renders the cart as checkout line items.
func (c *Cart) OrderItems() []models.OrderItem {
	out := make([]models.OrderItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Variant:   item.Variant,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return out
}
