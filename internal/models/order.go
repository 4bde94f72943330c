package models

import "time"

// Payment methods accepted at checkout.
const (
	PaymentCOD      = "COD"
	PaymentRazorpay = "Razorpay"
	PaymentStripe   = "Stripe"
	PaymentWallet   = "Wallet"
)

// OrderItem captures the product as it was when the order was placed.
type OrderItem struct {
	ProductID string  `json:"product"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"` // Price at the time of order
	Image     string  `json:"image"`
	Pieces    string  `json:"pieces,omitempty"`
}

// ShippingAddress is a denormalized copy; later address book edits never touch it.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address" validate:"required"`
	Landmark string `json:"landmark,omitempty"`
	City     string `json:"city"`
	Pincode  string `json:"pincode" validate:"required"`
	Type     string `json:"type"`
}

// PaymentResult is reserved for a payment gateway callback.
type PaymentResult struct {
	ID           string `json:"id,omitempty"`
	Status       string `json:"status,omitempty"`
	UpdateTime   string `json:"update_time,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// StatusEntry is one line of an order's append-only status log.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
	UpdatedBy string      `json:"updatedBy,omitempty"`
}

// Order represents a placed customer order.
type Order struct {
	ID                    string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                string          `json:"user" gorm:"index:idx_orders_user_created;type:varchar(36);not null"`
	Items                 []OrderItem     `json:"orderItems" gorm:"serializer:json;type:text"`
	ShippingAddress       ShippingAddress `json:"shippingAddress" gorm:"serializer:json;type:text"`
	PaymentMethod         string          `json:"paymentMethod" gorm:"not null"`
	PaymentResult         *PaymentResult  `json:"paymentResult,omitempty" gorm:"serializer:json;type:text"`
	ItemsPrice            float64         `json:"itemsPrice"`
	DeliveryPrice         float64         `json:"deliveryPrice"`
	TaxPrice              float64         `json:"taxPrice"`
	TotalPrice            float64         `json:"totalPrice"`
	IsPaid                bool            `json:"isPaid"`
	PaidAt                *time.Time      `json:"paidAt,omitempty"`
	IsDelivered           bool            `json:"isDelivered"`
	DeliveredAt           *time.Time      `json:"deliveredAt,omitempty"`
	Status                OrderStatus     `json:"orderStatus" gorm:"index;type:varchar(20);not null"`
	StatusHistory         []StatusEntry   `json:"statusHistory" gorm:"serializer:json;type:text"`
	EstimatedDeliveryTime *time.Time      `json:"estimatedDeliveryTime,omitempty"`
	ActualDeliveryTime    *time.Time      `json:"actualDeliveryTime,omitempty"`
	CancellationReason    string          `json:"cancellationReason,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	TrackingID            string          `json:"trackingId,omitempty"`
	CreatedAt             time.Time       `json:"createdAt" gorm:"index:idx_orders_user_created"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// SetItems replaces the line items and recomputes every derived price.
// TotalPrice always equals ItemsPrice + DeliveryPrice + TaxPrice.
func (o *Order) SetItems(items []OrderItem) {
	o.Items = items
	o.ItemsPrice = 0
	for _, item := range items {
		o.ItemsPrice += item.Price * float64(item.Quantity)
	}
	o.RecomputeTotal()
}

// RecomputeTotal refreshes TotalPrice after a price component changes.
func (o *Order) RecomputeTotal() {
	o.TotalPrice = o.ItemsPrice + o.DeliveryPrice + o.TaxPrice
}

// AppendStatus moves the order to status and records it in the history.
func (o *Order) AppendStatus(status OrderStatus, at time.Time, note, actor string) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    status,
		Timestamp: at,
		Note:      note,
		UpdatedBy: actor,
	})
}

// Tracking is the read-only projection served to the order tracking page.
type Tracking struct {
	Status            OrderStatus   `json:"status"`
	History           []StatusEntry `json:"history"`
	EstimatedDelivery *time.Time    `json:"estimatedDelivery,omitempty"`
	TrackingID        string        `json:"trackingId,omitempty"`
}

// Track returns the tracking projection of o.
func (o *Order) Track() Tracking {
	history := make([]StatusEntry, len(o.StatusHistory))
	copy(history, o.StatusHistory)
	return Tracking{
		Status:            o.Status,
		History:           history,
		EstimatedDelivery: o.EstimatedDeliveryTime,
		TrackingID:        o.TrackingID,
	}
}
