package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"flavorfix/internal/apperrors"
	"flavorfix/internal/config"
	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
	"flavorfix/internal/services"
	"flavorfix/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testOrderConfig = config.OrderConfig{
	FreeDeliveryThreshold: 500,
	DeliveryFee:           40,
	EstimatedDelivery:     45 * time.Minute,
}

var testShipping = models.ShippingAddress{Address: "12 MG Road", Pincode: "560001"}

type orderFixture struct {
	orders    *repositories.MemoryOrderRepository
	carts     *repositories.MemoryCartRepository
	products  *repositories.MemoryProductRepository
	users     *repositories.MemoryUserRepository
	cart      *services.CartService
	svc       *services.OrderService
	publisher *MockPublisher
	clock     *clock
	customer  *models.User
	admin     *models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:    repositories.NewMemoryOrderRepository(),
		carts:     repositories.NewMemoryCartRepository(),
		products:  repositories.NewMemoryProductRepository(),
		users:     repositories.NewMemoryUserRepository(),
		publisher: new(MockPublisher),
		clock:     newClock(),
	}
	f.publisher.On("Publish", rabbitmq.OrdersExchange, mock.AnythingOfType("string"), mock.Anything).Return(nil)
	f.build(f.orders, f.carts, f.products)
	f.customer = seedUser(t, f.users, "Asha", "9876543210", models.RoleUser)
	f.admin = seedUser(t, f.users, "Admin", "9000000000", models.RoleAdmin)
	return f
}

func (f *orderFixture) build(orders repositories.OrderRepository, carts repositories.CartRepository, products repositories.ProductRepository) {
	f.cart = services.NewCartService(carts, products)
	f.svc = services.NewOrderService(orders, carts, products, f.users, f.publisher, testOrderConfig)
	f.svc.SetClock(f.clock.Now)
}

func (f *orderFixture) add(t *testing.T, p *models.Product, qty int) {
	t.Helper()
	_, err := f.cart.AddItem(context.Background(), f.customer.ID, p.ID, qty)
	require.NoError(t, err)
}

func (f *orderFixture) place(t *testing.T) *models.Order {
	t.Helper()
	order, err := f.svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	require.NoError(t, err)
	return order
}

func TestOrderService_CreateOrderFreeDelivery(t *testing.T) {
	f := newOrderFixture(t)
	a := seedProduct(t, f.products, "A", 300, 10)
	b := seedProduct(t, f.products, "B", 250, 10)
	f.add(t, a, 1)
	f.add(t, b, 1)

	order := f.place(t)

	assert.Equal(t, 550.0, order.ItemsPrice)
	assert.Zero(t, order.DeliveryPrice)
	assert.Zero(t, order.TaxPrice)
	assert.Equal(t, 550.0, order.TotalPrice)
	assert.Equal(t, models.PaymentCOD, order.PaymentMethod)
	assert.Equal(t, models.StatusPending, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Order placed successfully", order.StatusHistory[0].Note)
	require.NotNil(t, order.EstimatedDeliveryTime)
	assert.Equal(t, f.clock.Now().Add(45*time.Minute), *order.EstimatedDeliveryTime)

	assert.Equal(t, "Asha", order.ShippingAddress.FullName)
	assert.Equal(t, "9876543210", order.ShippingAddress.Phone)
	assert.Equal(t, "Bangalore", order.ShippingAddress.City)
	assert.Equal(t, models.AddressHome, order.ShippingAddress.Type)

	assert.Equal(t, 9, stockOf(t, f.products, a.ID))
	assert.Equal(t, 9, stockOf(t, f.products, b.ID))

	cart, err := f.carts.GetByUserID(context.Background(), f.customer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalPrice)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalPrice, stored.TotalPrice)

	f.publisher.AssertCalled(t, "Publish", rabbitmq.OrdersExchange, rabbitmq.RoutingOrderCreated, mock.MatchedBy(func(body []byte) bool {
		var evt rabbitmq.OrderEvent
		return json.Unmarshal(body, &evt) == nil && evt.OrderID == order.ID && evt.Items == 2
	}))
}

func TestOrderService_CreateOrderDeliveryFee(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "Mini", 100, 5)
	f.add(t, p, 1)

	order := f.place(t)

	assert.Equal(t, 100.0, order.ItemsPrice)
	assert.Equal(t, 40.0, order.DeliveryPrice)
	assert.Equal(t, 140.0, order.TotalPrice)
}

func TestOrderService_DeliveryThresholdIsExclusive(t *testing.T) {
	f := newOrderFixture(t)
	assert.Equal(t, 40.0, f.svc.DeliveryPrice(500))
	assert.Zero(t, f.svc.DeliveryPrice(500.01))
}

func TestOrderService_CreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ok := seedProduct(t, f.products, "Fine", 100, 10)
	scarce := seedProduct(t, f.products, "Scarce", 80, 5)
	f.add(t, ok, 1)
	f.add(t, scarce, 5)

	// Stock drops after the item went into the cart.
	scarce.Stock = 2
	require.NoError(t, f.products.Update(ctx, scarce))

	_, err := f.svc.CreateOrder(ctx, f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	appErr := requireKind(t, err, apperrors.KindInsufficientStock)
	assert.Contains(t, appErr.Message, "Scarce")

	assert.Equal(t, 10, stockOf(t, f.products, ok.ID))
	assert.Equal(t, 2, stockOf(t, f.products, scarce.ID))
	cart, err := f.carts.GetByUserID(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "cart is untouched")
	n, _ := f.orders.Count(ctx)
	assert.Zero(t, n)
	f.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrderRejectsInput(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	requireKind(t, err, apperrors.KindEmptyCart)

	p := seedProduct(t, f.products, "P", 100, 5)
	f.add(t, p, 1)

	_, err = f.svc.CreateOrder(ctx, f.customer.ID, services.CreateOrderInput{
		ShippingAddress: models.ShippingAddress{Address: "somewhere"},
	})
	appErr := requireKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "Pincode is required", appErr.Message)

	_, err = f.svc.CreateOrder(ctx, f.customer.ID, services.CreateOrderInput{
		ShippingAddress: testShipping,
		PaymentMethod:   "Barter",
	})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.cart.Clear(ctx, f.customer.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateOrder(ctx, f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	requireKind(t, err, apperrors.KindEmptyCart)
}

func TestOrderService_StockNeverNegativeAcrossOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := seedProduct(t, f.products, "Last", 100, 5)
	other := seedUser(t, f.users, "Ravi", "9123456780", models.RoleUser)

	_, err := f.cart.AddItem(ctx, f.customer.ID, p.ID, 3)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, other.ID, p.ID, 3)
	require.NoError(t, err)

	f.place(t)
	_, err = f.svc.CreateOrder(ctx, other.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	requireKind(t, err, apperrors.KindInsufficientStock)

	assert.Equal(t, 2, stockOf(t, f.products, p.ID))
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := seedProduct(t, f.products, "A", 300, 10)
	b := seedProduct(t, f.products, "B", 250, 4)
	f.add(t, a, 2)
	f.add(t, b, 3)
	order := f.place(t)
	require.Equal(t, 8, stockOf(t, f.products, a.ID))
	require.Equal(t, 1, stockOf(t, f.products, b.ID))

	f.clock.Advance(time.Minute)
	cancelled, err := f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "")
	require.NoError(t, err)

	assert.Equal(t, 10, stockOf(t, f.products, a.ID))
	assert.Equal(t, 4, stockOf(t, f.products, b.ID))
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	require.Len(t, cancelled.StatusHistory, 2)
	assert.Equal(t, "Cancelled by user", cancelled.StatusHistory[1].Note)
	assert.Equal(t, models.StatusPending, cancelled.StatusHistory[0].Status, "history is append-only")
	f.publisher.AssertCalled(t, "Publish", rabbitmq.OrdersExchange, rabbitmq.RoutingOrderCancelled, mock.Anything)

	_, err = f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "again")
	requireKind(t, err, apperrors.KindInvalidState)
	assert.Equal(t, 10, stockOf(t, f.products, a.ID), "second cancel must not restore twice")
}

func TestOrderService_CancelRules(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 1)
	order := f.place(t)

	_, err := f.svc.CancelOrder(ctx, f.admin.ID, order.ID, "")
	requireKind(t, err, apperrors.KindForbidden)

	_, err = f.svc.CancelOrder(ctx, f.customer.ID, "missing", "")
	requireKind(t, err, apperrors.KindNotFound)

	_, err = f.svc.UpdateOrderStatus(ctx, f.admin.ID, order.ID, services.StatusUpdate{Status: models.StatusConfirmed})
	require.NoError(t, err)
	cancelled, err := f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "changed my mind")
	require.NoError(t, err, "confirmed orders are still cancellable")
	assert.Equal(t, "changed my mind", cancelled.CancellationReason)

	f.add(t, p, 1)
	delivered := f.place(t)
	_, err = f.svc.UpdateOrderStatus(ctx, f.admin.ID, delivered.ID, services.StatusUpdate{Status: models.StatusDelivered})
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(ctx, f.customer.ID, delivered.ID, "")
	requireKind(t, err, apperrors.KindInvalidState)

	f.add(t, p, 1)
	preparing := f.place(t)
	_, err = f.svc.UpdateOrderStatus(ctx, f.admin.ID, preparing.ID, services.StatusUpdate{Status: models.StatusPreparing})
	require.NoError(t, err)
	_, err = f.svc.CancelOrder(ctx, f.customer.ID, preparing.ID, "")
	requireKind(t, err, apperrors.KindInvalidState)
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 1)
	order := f.place(t)

	_, err := f.svc.UpdateOrderStatus(ctx, f.admin.ID, order.ID, services.StatusUpdate{Status: "shipped"})
	requireKind(t, err, apperrors.KindValidation)

	_, err = f.svc.UpdateOrderStatus(ctx, f.admin.ID, "missing", services.StatusUpdate{Status: models.StatusReady})
	requireKind(t, err, apperrors.KindNotFound)

	// Skipping straight to delivered is an admin override and is accepted.
	f.clock.Advance(30 * time.Minute)
	updated, err := f.svc.UpdateOrderStatus(ctx, f.admin.ID, order.ID, services.StatusUpdate{
		Status:     models.StatusDelivered,
		TrackingID: "TRK-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.True(t, updated.IsDelivered)
	require.NotNil(t, updated.DeliveredAt)
	assert.Equal(t, f.clock.Now(), *updated.DeliveredAt)
	assert.Equal(t, f.clock.Now(), *updated.ActualDeliveryTime)
	assert.Equal(t, "TRK-1", updated.TrackingID)

	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, f.admin.ID, last.UpdatedBy)
	assert.Equal(t, "Status updated to delivered by admin", last.Note)
	f.publisher.AssertCalled(t, "Publish", rabbitmq.OrdersExchange, rabbitmq.RoutingOrderStatusUpdated, mock.Anything)
}

func TestOrderService_TrackAndGetOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 1)
	order := f.place(t)
	stranger := seedUser(t, f.users, "Ravi", "9123456780", models.RoleUser)

	track, err := f.svc.TrackOrder(ctx, f.customer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, track.Status)
	assert.Len(t, track.History, 1)
	assert.Equal(t, order.EstimatedDeliveryTime, track.EstimatedDelivery)

	_, err = f.svc.TrackOrder(ctx, stranger, order.ID)
	requireKind(t, err, apperrors.KindForbidden)

	got, err := f.svc.GetOrder(ctx, f.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	mine, err := f.svc.ListMyOrders(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := f.svc.ListMyOrders(ctx, stranger.ID)
	require.NoError(t, err)
	assert.NotNil(t, theirs)
	assert.Empty(t, theirs)
}

func TestOrderService_NilPublisher(t *testing.T) {
	f := newOrderFixture(t)
	svc := services.NewOrderService(f.orders, f.carts, f.products, f.users, nil, testOrderConfig)
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 1)

	_, err := svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	assert.NoError(t, err)
}

func TestOrderService_PublishFailureIsNotFatal(t *testing.T) {
	f := newOrderFixture(t)
	failing := new(MockPublisher)
	failing.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker unreachable"))
	svc := services.NewOrderService(f.orders, f.carts, f.products, f.users, failing, testOrderConfig)
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 1)

	order, err := svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	failing.AssertNumberOfCalls(t, "Publish", 1)
}

// The checkout spans the catalog, order and cart stores without a shared
// transaction. The tests below pin down the compensations for each failure
// point and the one gap that remains: a failed cart clear.

// flakyProducts fails the stock reservation of one product, or its restore
// when restore is set.
type flakyProducts struct {
	*repositories.MemoryProductRepository
	failOn  string
	restore bool
}

func (r *flakyProducts) AdjustStock(ctx context.Context, id string, delta int) error {
	if id == r.failOn && (delta > 0) == r.restore {
		return errors.New("connection reset")
	}
	return r.MemoryProductRepository.AdjustStock(ctx, id, delta)
}

type failingOrders struct {
	*repositories.MemoryOrderRepository
}

func (failingOrders) Create(context.Context, *models.Order) error {
	return errors.New("disk full")
}

type failingOrderSave struct {
	*repositories.MemoryOrderRepository
}

func (failingOrderSave) Save(context.Context, *models.Order) error {
	return errors.New("disk full")
}

type failingCartSave struct {
	*repositories.MemoryCartRepository
	fail bool
}

func (r *failingCartSave) Save(ctx context.Context, cart *models.Cart) error {
	if r.fail {
		return errors.New("write conflict")
	}
	return r.MemoryCartRepository.Save(ctx, cart)
}

func TestOrderService_ReservationFailureReleasesEarlierItems(t *testing.T) {
	f := newOrderFixture(t)
	a := seedProduct(t, f.products, "A", 100, 10)
	b := seedProduct(t, f.products, "B", 100, 10)
	f.add(t, a, 2)
	f.add(t, b, 3)
	f.build(f.orders, f.carts, &flakyProducts{MemoryProductRepository: f.products, failOn: b.ID})

	_, err := f.svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	require.Error(t, err)

	assert.Equal(t, 10, stockOf(t, f.products, a.ID), "reservation of A is released")
	assert.Equal(t, 10, stockOf(t, f.products, b.ID))
	n, _ := f.orders.Count(context.Background())
	assert.Zero(t, n)
	cart, _ := f.carts.GetByUserID(context.Background(), f.customer.ID)
	assert.Len(t, cart.Items, 2)
}

func TestOrderService_OrderInsertFailureReleasesAllItems(t *testing.T) {
	f := newOrderFixture(t)
	a := seedProduct(t, f.products, "A", 100, 10)
	b := seedProduct(t, f.products, "B", 100, 10)
	f.add(t, a, 2)
	f.add(t, b, 3)
	f.build(failingOrders{f.orders}, f.carts, f.products)

	_, err := f.svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, 10, stockOf(t, f.products, a.ID))
	assert.Equal(t, 10, stockOf(t, f.products, b.ID))
	cart, _ := f.carts.GetByUserID(context.Background(), f.customer.ID)
	assert.Len(t, cart.Items, 2)
}

func TestOrderService_CartClearFailureKeepsOrder(t *testing.T) {
	f := newOrderFixture(t)
	p := seedProduct(t, f.products, "P", 100, 10)
	f.add(t, p, 2)
	carts := &failingCartSave{MemoryCartRepository: f.carts, fail: true}
	f.build(f.orders, carts, f.products)

	order, err := f.svc.CreateOrder(context.Background(), f.customer.ID, services.CreateOrderInput{ShippingAddress: testShipping})
	require.NoError(t, err)
	assert.Equal(t, 8, stockOf(t, f.products, p.ID))

	// Known gap: the order and stock decrement stand while the cart still
	// holds the items that were ordered.
	cart, _ := f.carts.GetByUserID(context.Background(), f.customer.ID)
	assert.Len(t, cart.Items, 1)
	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestOrderService_CancelRestoreFailureIsRetryable(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := seedProduct(t, f.products, "A", 100, 10)
	b := seedProduct(t, f.products, "B", 100, 10)
	f.add(t, a, 2)
	f.add(t, b, 3)
	order := f.place(t)

	f.build(f.orders, f.carts, &flakyProducts{MemoryProductRepository: f.products, failOn: b.ID, restore: true})
	_, err := f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "")
	require.Error(t, err)

	assert.Equal(t, 8, stockOf(t, f.products, a.ID), "restore of A is taken back")
	assert.Equal(t, 7, stockOf(t, f.products, b.ID))
	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	f.build(f.orders, f.carts, f.products)
	cancelled, err := f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, stockOf(t, f.products, a.ID))
	assert.Equal(t, 10, stockOf(t, f.products, b.ID))
}

func TestOrderService_CancelSaveFailureTakesStockBack(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	a := seedProduct(t, f.products, "A", 100, 10)
	b := seedProduct(t, f.products, "B", 100, 10)
	f.add(t, a, 2)
	f.add(t, b, 3)
	order := f.place(t)

	f.build(failingOrderSave{f.orders}, f.carts, f.products)
	_, err := f.svc.CancelOrder(ctx, f.customer.ID, order.ID, "changed my mind")
	assert.ErrorContains(t, err, "disk full")

	assert.Equal(t, 8, stockOf(t, f.products, a.ID))
	assert.Equal(t, 7, stockOf(t, f.products, b.ID))
	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}
