package models

import "time"

// CartItem snapshots a product's name, price and image when it is added.
type CartItem struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Pieces    string  `json:"pieces,omitempty"`
}

// Cart is the single mutable basket owned by a user.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items      []CartItem `json:"items" gorm:"serializer:json;type:text"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Recalculate derives TotalItems and TotalPrice from Items. Every mutation
// of Items must be followed by a call to Recalculate before saving.
func (c *Cart) Recalculate() {
	c.TotalItems = 0
	c.TotalPrice = 0
	for _, item := range c.Items {
		c.TotalItems += item.Quantity
		c.TotalPrice += item.Price * float64(item.Quantity)
	}
}

// ItemIndex returns the position of the line for productID, or -1.
func (c *Cart) ItemIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
