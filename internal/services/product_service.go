package services

import (
	"context"
	"strings"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/validation"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	featuredLimit   = 10
)

// ProductQuery is the raw catalog query as received from the client.
type ProductQuery struct {
	Category string `query:"category"`
	Type     string `query:"type"`
	Search   string `query:"search"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
	SortBy   string `query:"sortBy"`
	Order    string `query:"order"`
}

// ProductPage is one page of a catalog listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

// ProductInput carries a product create or a partial update. Nil fields are
// left untouched on update and take their default on create.
type ProductInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price"`
	OriginalPrice *float64 `json:"originalPrice"`
	Category      *string  `json:"category"`
	Type          *string  `json:"type"`
	Image         *string  `json:"image"`
	Pieces        *string  `json:"pieces"`
	Time          *string  `json:"time"`
	Stock         *int     `json:"stock"`
	IsHot         *bool    `json:"isHot"`
	IsBestseller  *bool    `json:"isBestseller"`
	Discount      *float64 `json:"discount"`
	Rating        *float64 `json:"rating"`
	NumReviews    *int     `json:"numReviews"`
}

func (in ProductInput) apply(p *models.Product) {
	setIf(&p.Name, in.Name)
	setIf(&p.Description, in.Description)
	setIf(&p.Price, in.Price)
	if in.OriginalPrice != nil {
		v := *in.OriginalPrice
		p.OriginalPrice = &v
	}
	setIf(&p.Category, in.Category)
	setIf(&p.Type, in.Type)
	setIf(&p.Image, in.Image)
	setIf(&p.Pieces, in.Pieces)
	setIf(&p.Time, in.Time)
	setIf(&p.Stock, in.Stock)
	setIf(&p.IsHot, in.IsHot)
	setIf(&p.IsBestseller, in.IsBestseller)
	setIf(&p.Discount, in.Discount)
	setIf(&p.Rating, in.Rating)
	setIf(&p.NumReviews, in.NumReviews)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts normalizes q and returns the requested page. Sold out
// products are never listed.
func (s *ProductService) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ProductPage{Products: products, Total: total, Page: filter.Page, Pages: pages}, nil
}

func (q ProductQuery) filter() (models.ProductFilter, error) {
	f := models.ProductFilter{
		Category: q.Category,
		Type:     q.Type,
		Search:   strings.TrimSpace(q.Search),
		InStock:  true,
		Page:     q.Page,
		Limit:    q.Limit,
		SortBy:   q.SortBy,
		Desc:     true,
	}
	if strings.EqualFold(f.Category, "all") {
		f.Category = ""
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}
	if !repositories.ValidProductSort(f.SortBy) {
		return f, apperrors.Validation("sortBy must be one of [createdAt price rating name discount]")
	}
	switch strings.ToLower(q.Order) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		return f, apperrors.Validation("order must be one of [asc desc]")
	}
	return f, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Categories lists the categories currently present in the catalog.
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Featured returns up to ten in-stock hot or bestseller products.
func (s *ProductService) Featured(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// CreateProduct creates a product, defaulting stock and rating when omitted.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{
		Stock:  models.DefaultProductStock,
		Rating: models.DefaultProductRating,
	}
	in.apply(product)
	if err := validation.Struct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of in to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(product)
	if err := validation.Struct(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// CountProducts returns the catalog size.
func (s *ProductService) CountProducts(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
