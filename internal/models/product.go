package models

import "time"

// Product categories form a closed set.
var ProductCategories = []string{
	"Special Thali", "Deluxe Thali", "Classic Thali", "Comfort Thali",
	"Standard Thali", "Jain Thali", "Rice Combo", "Healthy", "Breakfast",
}

// Product represents a catalog entry.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"not null" validate:"required,max=100"`
	Description   string    `json:"description" validate:"required,max=1000"`
	Price         float64   `json:"price" gorm:"not null" validate:"gte=0"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Category      string    `json:"category" gorm:"index:idx_products_category_type" validate:"required,oneof='Special Thali' 'Deluxe Thali' 'Classic Thali' 'Comfort Thali' 'Standard Thali' 'Jain Thali' 'Rice Combo' Healthy Breakfast"`
	Type          string    `json:"type,omitempty" gorm:"index:idx_products_category_type" validate:"omitempty,oneof=special deluxe classic comfort standard jain rice healthy breakfast"`
	Image         string    `json:"image" validate:"required"`
	Pieces        string    `json:"pieces,omitempty"`
	Time          string    `json:"time,omitempty"`
	Stock         int       `json:"stock" gorm:"not null" validate:"gte=0"`
	IsHot         bool      `json:"isHot"`
	IsBestseller  bool      `json:"isBestseller"`
	Discount      float64   `json:"discount" validate:"gte=0,lte=100"`
	Rating        float64   `json:"rating" validate:"gte=0,lte=5"`
	NumReviews    int       `json:"numReviews" validate:"gte=0"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Defaults applied when a create request omits the field.
const (
	DefaultProductStock  = 20
	DefaultProductRating = 4.5
)

// ProductFilter narrows and orders a catalog listing.
type ProductFilter struct {
	Category string
	Type     string
	Search   string
	InStock  bool
	Page     int
	Limit    int
	SortBy   string
	Desc     bool
}

// Offset returns the number of rows to skip for the requested page.
func (f ProductFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
