package cart

import (
	"encoding/json"
	"fmt"
)

// Cart is the in-memory cart. It is not safe for concurrent use; Store adds
// locking and persistence on top.
type Cart struct {
	items []Item
}

func New(items ...Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.items = append(c.items, it.clone())
	}
	return c
}

func (c *Cart) find(id string) int {
	for i := range c.items {
		if c.items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add increments an existing line or appends a new one with a single empty
// link slot. Stock is not checked here; order creation is authoritative.
func (c *Cart) Add(p Product) error {
	if p.ID == "" {
		return ErrInvalidProduct
	}

	if i := c.find(p.ID); i >= 0 {
		c.items[i].Quantity++
		c.items[i].Links = append(c.items[i].Links, "")
		return nil
	}

	c.items = append(c.items, Item{
		ProductID: p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  1,
		Links:     []string{""},
	})
	return nil
}

// Remove deletes the line. Removing an absent id is a no-op.
func (c *Cart) Remove(id string) {
	if i := c.find(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity applies delta, never going below one, and resizes Links to
// match. Growing keeps existing text; shrinking drops trailing slots.
func (c *Cart) UpdateQuantity(id string, delta int) error {
	i := c.find(id)
	if i < 0 {
		return ErrItemNotFound
	}

	item := &c.items[i]
	item.Quantity = max(1, item.Quantity+delta)
	item.Links = resize(item.Links, item.Quantity)
	return nil
}

func (c *Cart) UpdateLink(id string, index int, value string) error {
	i := c.find(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if index < 0 || index >= len(c.items[i].Links) {
		return fmt.Errorf("%w: %d of %d", ErrLinkIndexOutOfRange, index, len(c.items[i].Links))
	}

	c.items[i].Links[index] = value
	return nil
}

func (c *Cart) Clear() {
	c.items = nil
}

// Total is Σ price × quantity, before any discount.
func (c *Cart) Total() int64 {
	var total int64
	for _, it := range c.items {
		total += it.Price * int64(it.Quantity)
	}
	return total
}

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Items returns a deep copy of the lines.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

// Decode parses a persisted snapshot. Anything that breaks the line
// invariants is rejected as a whole with ErrMalformedCart.
func Decode(data []byte) (*Cart, error) {
	if len(data) == 0 {
		return New(), nil
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !it.valid() || seen[it.ProductID] {
			return nil, ErrMalformedCart
		}
		seen[it.ProductID] = true
	}
	return New(items...), nil
}

func resize(links []string, n int) []string {
	out := make([]string, n)
	copy(out, links)
	return out
}
