package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/config"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/validation"
	"flavorfix/pkg/rabbitmq"
)

const (
	defaultCity   = "Bangalore"
	notePlaced    = "Order placed successfully"
	noteCancelled = "Cancelled by user"
)

var paymentMethods = map[string]bool{
	models.PaymentCOD:      true,
	models.PaymentRazorpay: true,
	models.PaymentStripe:   true,
	models.PaymentWallet:   true,
}

// CreateOrderInput is the checkout request.
type CreateOrderInput struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
}

// StatusUpdate is an administrative status change.
type StatusUpdate struct {
	Status     models.OrderStatus `json:"status"`
	Note       string             `json:"note"`
	TrackingID string             `json:"trackingId"`
}

// OrderService handles the order lifecycle: checkout from the cart,
// cancellation and administrative status changes.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	publisher   EventPublisher
	cfg         config.OrderConfig
	now         func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	cartRepo repositories.CartRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	publisher EventPublisher,
	cfg config.OrderConfig,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		publisher:   publisher,
		cfg:         cfg,
		now:         time.Now,
	}
}

// SetClock replaces the time source.
func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// DeliveryPrice is free strictly above the threshold, a flat fee otherwise.
func (s *OrderService) DeliveryPrice(itemsPrice float64) float64 {
	if itemsPrice > s.cfg.FreeDeliveryThreshold {
		return 0
	}
	return s.cfg.DeliveryFee
}

// CreateOrder turns the user's cart into a pending order.
//
// Stock is reserved item by item with a conditional decrement. If a
// reservation or the order insert fails, every reservation made so far is
// released before returning. Clearing the cart happens after the order is
// stored; a failure there is logged and the order stands.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in CreateOrderInput) (*models.Order, error) {
	if in.ShippingAddress.Pincode == "" {
		return nil, apperrors.Validation("Pincode is required")
	}
	if err := validation.Struct(in.ShippingAddress); err != nil {
		return nil, err
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCOD
	}
	if !paymentMethods[in.PaymentMethod] {
		return nil, apperrors.Validation("paymentMethod must be one of [COD Razorpay Stripe Wallet]")
	}

	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if cart == nil || cart.IsEmpty() {
		return nil, apperrors.New(apperrors.KindEmptyCart, "Cart is empty")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Catalog stock may have moved since the items were added.
	for _, item := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.New(apperrors.KindNotFound, "%s is no longer available", item.Name)
			}
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, apperrors.InsufficientStock(product.Name, product.Stock)
		}
	}

	now := s.now()
	order := s.buildOrder(user, cart, in, now)

	reserved := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
			s.releaseStock(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.releaseStock(ctx, reserved)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	cart.Items = []models.CartItem{}
	cart.Recalculate()
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		log.Printf("Warning: order %s placed but cart of user %s was not cleared: %v", order.ID, userID, err)
	}

	publishOrderEvent(s.publisher, rabbitmq.RoutingOrderCreated, order, notePlaced, now)
	return order, nil
}

func (s *OrderService) buildOrder(user *models.User, cart *models.Cart, in CreateOrderInput, now time.Time) *models.Order {
	items := make([]models.OrderItem, len(cart.Items))
	for i, line := range cart.Items {
		items[i] = models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
			Image:     line.Image,
			Pieces:    line.Pieces,
		}
	}

	addr := in.ShippingAddress
	addr.FullName = user.Name
	addr.Phone = user.Phone
	if addr.City == "" {
		addr.City = defaultCity
	}
	if addr.Type == "" {
		addr.Type = models.AddressHome
	}

	eta := now.Add(s.cfg.EstimatedDelivery)
	order := &models.Order{
		UserID:                user.ID,
		ShippingAddress:       addr,
		PaymentMethod:         in.PaymentMethod,
		Notes:                 in.Notes,
		EstimatedDeliveryTime: &eta,
		CreatedAt:             now,
	}
	order.SetItems(items)
	order.DeliveryPrice = s.DeliveryPrice(order.ItemsPrice)
	order.RecomputeTotal()
	order.AppendStatus(models.StatusPending, now, notePlaced, "")
	return order
}

// releaseStock undoes reservations. It runs detached from the request
// context so a cancelled request still compensates.
func (s *OrderService) releaseStock(ctx context.Context, items []models.OrderItem) {
	s.moveStock(ctx, items, 1)
}

// reclaimStock takes back stock returned by a cancel that did not complete,
// so a retried cancel restores each item exactly once.
func (s *OrderService) reclaimStock(ctx context.Context, items []models.OrderItem) {
	s.moveStock(ctx, items, -1)
}

func (s *OrderService) moveStock(ctx context.Context, items []models.OrderItem, sign int) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, sign*item.Quantity); err != nil {
			log.Printf("Error adjusting stock of product %s by %d: %v", item.ProductID, sign*item.Quantity, err)
		}
	}
}

// CancelOrder cancels an order of userID that has not entered preparation
// and returns its items to stock. If a restore or the final save fails, the
// stock already returned is taken back and the order stays as it was.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.Forbidden("Not authorized to cancel this order")
	}
	if !order.Status.Cancellable() {
		return nil, apperrors.InvalidState("Order cannot be cancelled in %s status", order.Status)
	}

	restored := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		if err := s.productRepo.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				log.Printf("Product %s of order %s no longer exists, stock not restored", item.ProductID, order.ID)
				continue
			}
			s.reclaimStock(ctx, restored)
			return nil, err
		}
		restored = append(restored, item)
	}

	note := reason
	if note == "" {
		note = noteCancelled
	}
	now := s.now()
	order.CancellationReason = reason
	order.AppendStatus(models.StatusCancelled, now, note, userID)
	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.reclaimStock(ctx, restored)
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	publishOrderEvent(s.publisher, rabbitmq.RoutingOrderCancelled, order, note, now)
	return order, nil
}

// UpdateOrderStatus sets any known status on an order. Moves outside the
// lifecycle table are allowed for administrators and only logged.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actorID, orderID string, upd StatusUpdate) (*models.Order, error) {
	if !upd.Status.Valid() {
		return nil, apperrors.Validation("invalid order status: %s", upd.Status)
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := models.CanTransition(order.Status, upd.Status); err != nil {
		log.Printf("Admin %s override on order %s: %v", actorID, order.ID, err)
	}

	note := upd.Note
	if note == "" {
		note = fmt.Sprintf("Status updated to %s by admin", upd.Status)
	}
	now := s.now()
	order.AppendStatus(upd.Status, now, note, actorID)
	if upd.Status == models.StatusDelivered {
		order.IsDelivered = true
		order.DeliveredAt = &now
		order.ActualDeliveryTime = &now
	}
	if upd.TrackingID != "" {
		order.TrackingID = upd.TrackingID
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	publishOrderEvent(s.publisher, rabbitmq.RoutingOrderStatusUpdated, order, note, now)
	return order, nil
}

// GetOrder returns an order to its owner or to an administrator.
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != user.ID && !user.IsAdmin() {
		return nil, apperrors.Forbidden("Not authorized to view this order")
	}
	return order, nil
}

// TrackOrder returns the tracking projection of an order.
func (s *OrderService) TrackOrder(ctx context.Context, user *models.User, orderID string) (*models.Tracking, error) {
	order, err := s.GetOrder(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	track := order.Track()
	return &track, nil
}

// ListMyOrders returns the user's orders, newest first.
func (s *OrderService) ListMyOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orderRepo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}
