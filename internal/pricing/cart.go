package pricing

// Cart stores the items a CartPricer evaluates.
type Cart interface {
	Add(item Item)
	Items() []Item
	Count() int
}

// MemoryCart is an in-memory Cart. It is not safe for concurrent use.
type MemoryCart struct {
	items []Item
}

// NewMemoryCart returns a cart pre-filled with items.
func NewMemoryCart(items ...Item) *MemoryCart {
	c := &MemoryCart{}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

// Add appends item to the cart.
func (c *MemoryCart) Add(item Item) {
	c.items = append(c.items, item)
}

// Items returns a copy of the cart contents.
func (c *MemoryCart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Count reports the number of line items.
func (c *MemoryCart) Count() int {
	return len(c.items)
}

// Contains reports whether an identical line item is in the cart.
func (c *MemoryCart) Contains(item Item) bool {
	for _, it := range c.items {
		if it.Category == item.Category && it.Name == item.Name && it.Qty == item.Qty && it.UnitPrice.Equal(item.UnitPrice) {
			return true
		}
	}
	return false
}
