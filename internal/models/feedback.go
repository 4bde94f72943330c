package models

import "time"

// Feedback triage states.
const (
	FeedbackPending  = "pending"
	FeedbackReviewed = "reviewed"
	FeedbackResolved = "resolved"
)

// Feedback is a standalone customer rating and message.
type Feedback struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    *string   `json:"user,omitempty" gorm:"type:varchar(36)"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email,omitempty" validate:"omitempty,email"`
	Rating    int       `json:"rating" validate:"min=1,max=5"`
	Category  string    `json:"category" validate:"oneof=general food delivery app suggestion complaint"`
	Message   string    `json:"message" validate:"required"`
	OrderID   *string   `json:"orderId,omitempty" gorm:"type:varchar(36)"`
	Status    string    `json:"status" gorm:"index;type:varchar(10)" validate:"oneof=pending reviewed resolved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
