package repositories

import (
	"context"

	"flavorfix/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	// List returns one page of products matching filter and the total match count.
	// A zero Limit returns every match.
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	// AdjustStock adds delta to the stock of product id in one atomic step.
	// If the result would be negative nothing changes and an insufficient
	// stock error naming the product is returned.
	AdjustStock(ctx context.Context, id string, delta int) error
}

// productSortColumns whitelists the sortable fields and maps them to columns.
var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"rating":    "rating",
	"name":      "name",
	"discount":  "discount",
}

// ValidProductSort reports whether field may be used as ProductFilter.SortBy.
func ValidProductSort(field string) bool {
	_, ok := productSortColumns[field]
	return ok
}
