package domain

import "time"

// Cart holds the items one client session intends to buy. Items are kept in
// insertion order, which is also the display order.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	SessionID string     `bson:"session_id" json:"session_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartItem is a single product line. Presence is binary: there is no quantity,
// and a cart never holds two items with the same ID.
type CartItem struct {
	ID             string `bson:"id" json:"id" validate:"required"`
	Name           string `bson:"name" json:"name" validate:"required"`
	ImageURL       string `bson:"image_url" json:"imageUrl"`
	Price          int64  `bson:"price" json:"price" validate:"gte=0"`
	Description    string `bson:"description" json:"description"`
	DefaultPriceID string `bson:"default_price_id" json:"defaultPriceId" validate:"required"`
}

func NewCart(sessionID string) *Cart {
	now := time.Now()
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Contains reports whether an item with the given id is in the cart.
func (c *Cart) Contains(id string) bool {
	return c.indexOf(id) >= 0
}

// Add appends item unless an item with the same ID is already present.
// It reports whether the cart changed.
func (c *Cart) Add(item CartItem) bool {
	if c.Contains(item.ID) {
		return false
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return true
}

// Remove deletes the item with the given id, keeping the order of the rest.
func (c *Cart) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	c.UpdatedAt = time.Now()
	return true
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.UpdatedAt = time.Now()
}

func (c *Cart) Len() int {
	return len(c.Items)
}

// Clone returns a deep copy so callers can't alias the stored slice.
func (c *Cart) Clone() *Cart {
	cp := *c
	cp.Items = make([]CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

// linear scan: carts stay in the tens of items
func (c *Cart) indexOf(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}
