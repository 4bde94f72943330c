package services

import (
	"context"
	"errors"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
)

// CartService manages the single cart of each user. Totals are re-derived
// from the items after every mutation.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err == nil {
		if cart.Items == nil {
			cart.Items = []models.CartItem{}
		}
		return cart, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		// Another request created it first.
		if errors.Is(err, apperrors.ErrConflict) {
			return s.cartRepo.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return cart, nil
}

// AddItem adds quantity of productID, merging into an existing line. The
// merged quantity must still fit the live stock.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperrors.InsufficientStock(product.Name, product.Stock)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if idx := cart.ItemIndex(productID); idx >= 0 {
		merged := cart.Items[idx].Quantity + quantity
		if product.Stock < merged {
			return nil, apperrors.InsufficientStock(product.Name, product.Stock)
		}
		cart.Items[idx].Quantity = merged
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  quantity,
			Pieces:    product.Pieces,
		})
	}
	return s.save(ctx, cart)
}

// UpdateItem sets the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity must be at least 1")
	}
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := cart.ItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("item in cart")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, apperrors.InsufficientStock(product.Name, product.Stock)
	}

	cart.Items[idx].Quantity = quantity
	return s.save(ctx, cart)
}

// RemoveItem drops the line for productID if present.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if idx := cart.ItemIndex(productID); idx >= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	}
	return s.save(ctx, cart)
}

// Clear empties the cart; the cart record itself is kept.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return s.save(ctx, cart)
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	cart.Recalculate()
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
