package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MemoryProductRepository) matches(p models.Product, f models.ProductFilter) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.InStock && p.Stock <= 0 {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

func productLess(a, b models.Product, sortBy string) (less, equal bool) {
	switch sortBy {
	case "price":
		return a.Price < b.Price, a.Price == b.Price
	case "rating":
		return a.Rating < b.Rating, a.Rating == b.Rating
	case "name":
		return a.Name < b.Name, a.Name == b.Name
	case "discount":
		return a.Discount < b.Discount, a.Discount == b.Discount
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}

// List returns one page of matching products.
func (r *MemoryProductRepository) List(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if r.matches(p, f) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		less, equal := productLess(matched[i], matched[j], f.SortBy)
		if equal {
			return matched[i].ID < matched[j].ID
		}
		if f.Desc {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	if f.Limit > 0 {
		start := f.Offset()
		if start > len(matched) {
			start = len(matched)
		}
		end := start + f.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, total, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.NotFound("product")
	}
	return &product, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return apperrors.NotFound("product")
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product")
	}
	delete(r.products, id)
	return nil
}

// Categories returns the distinct categories, sorted.
func (r *MemoryProductRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var categories []string
	for _, p := range r.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// Featured returns in-stock hot or bestseller products, newest first.
func (r *MemoryProductRepository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	all, _, err := r.List(ctx, models.ProductFilter{InStock: true, Desc: true})
	if err != nil {
		return nil, err
	}
	var featured []models.Product
	for _, p := range all {
		if p.IsHot || p.IsBestseller {
			featured = append(featured, p)
		}
		if limit > 0 && len(featured) == limit {
			break
		}
	}
	return featured, nil
}

// Count returns the number of products.
func (r *MemoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

// AdjustStock applies delta under the write lock, refusing to go below zero.
func (r *MemoryProductRepository) AdjustStock(_ context.Context, id string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return apperrors.NotFound("product")
	}
	if product.Stock+delta < 0 {
		return apperrors.InsufficientStock(product.Name, product.Stock)
	}
	product.Stock += delta
	product.UpdatedAt = time.Now()
	r.products[id] = product
	return nil
}
