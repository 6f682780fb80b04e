package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/port"
)

type memoryOrderRepo struct {
	mu      sync.Mutex
	orders  map[int64]*domain.Order
	nextID  int64
	failing bool
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[int64]*domain.Order), nextID: 1}
}

func (r *memoryOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("database unavailable")
	}
	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *memoryOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *memoryOrderRepo) UpdateStatus(_ context.Context, id int64, from, to domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if order.Status != from {
		return domain.ErrStaleStatus
	}
	order.Status = to
	return nil
}

func (r *memoryOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, nil
}

func (r *memoryOrderRepo) Stats(_ context.Context) (*domain.DashboardStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.DashboardStats{}
	for _, order := range r.orders {
		if order.Status == domain.StatusCancelled {
			continue
		}
		stats.TotalOrders++
		stats.TotalSalesCents += order.TotalPriceCents
	}
	if stats.TotalOrders > 0 {
		stats.AvgOrderValueCents = stats.TotalSalesCents / stats.TotalOrders
	}
	return stats, nil
}

func (r *memoryOrderRepo) PendingCount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, order := range r.orders {
		if order.Status == domain.StatusPending {
			n++
		}
	}
	return n, nil
}

type stubCatalog struct {
	products map[int64]port.Product
}

func (c *stubCatalog) GetProduct(_ context.Context, id int64) (*port.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, port.ErrProductNotFound
	}
	return &product, nil
}

type fakeSession struct {
	cart      map[int64]int
	discount  *port.AppliedDiscount
	failClear bool
}

func (s *fakeSession) LoadCart(_ context.Context, _ string) (map[int64]int, error) {
	out := make(map[int64]int, len(s.cart))
	for pid, qty := range s.cart {
		out[pid] = qty
	}
	return out, nil
}

func (s *fakeSession) LoadDiscount(_ context.Context, _ string) (*port.AppliedDiscount, error) {
	return s.discount, nil
}

func (s *fakeSession) ClearCheckout(_ context.Context, _ string) error {
	if s.failClear {
		return errors.New("redis unavailable")
	}
	s.cart = map[int64]int{}
	s.discount = nil
	return nil
}

type stubCustomers struct {
	active map[int64]port.Customer
	all    map[int64]port.Customer
}

func (c *stubCustomers) FindActive(_ context.Context, id int64) (*port.Customer, error) {
	customer, ok := c.active[id]
	if !ok {
		return nil, port.ErrCustomerNotFound
	}
	return &customer, nil
}

func (c *stubCustomers) FindByID(_ context.Context, id int64) (*port.Customer, error) {
	customer, ok := c.all[id]
	if !ok {
		return nil, port.ErrCustomerNotFound
	}
	return &customer, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.NotificationEvent
	fail   bool
}

func (n *recordingNotifier) Publish(_ context.Context, event domain.NotificationEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("broker unavailable")
	}
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.NotificationKind
	for _, event := range n.events {
		out = append(out, event.Kind)
	}
	return out
}

const adminUserID = 1

type checkoutFixture struct {
	svc      *CheckoutService
	repo     *memoryOrderRepo
	catalog  *stubCatalog
	session  *fakeSession
	notifier *recordingNotifier
}

func newCheckoutFixture() *checkoutFixture {
	repo := newMemoryOrderRepo()
	catalog := &stubCatalog{products: map[int64]port.Product{
		1: {ID: 1, Title: "Keyboard", UnitPriceCents: 500},
		2: {ID: 2, Title: "Monitor", UnitPriceCents: 1200},
	}}
	session := &fakeSession{cart: map[int64]int{1: 2, 2: 1}}
	customers := &stubCustomers{
		active: map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
		all:    map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
	}
	notifier := &recordingNotifier{}
	svc := NewCheckoutService(repo, catalog, session, customers, notifier, adminUserID, otel.Tracer("test"))
	return &checkoutFixture{svc: svc, repo: repo, catalog: catalog, session: session, notifier: notifier}
}

func TestCheckoutCreatesOrderAndClearsSession(t *testing.T) {
	f := newCheckoutFixture()

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2200), result.TotalCents)
	assert.Equal(t, int64(0), result.DiscountCents)
	assert.Empty(t, result.Warnings)

	order, err := f.repo.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(500), order.Items[0].PriceAtPurchaseCents)
	assert.Equal(t, int64(1200), order.Items[1].PriceAtPurchaseCents)

	assert.Empty(t, f.session.cart, "cart cleared after successful checkout")
	assert.ElementsMatch(t,
		[]domain.NotificationKind{domain.KindOrderConfirmation, domain.KindOrderInvoice, domain.KindAdminAlert},
		f.notifier.kinds())
}

func TestCheckoutAppliesDiscountFromSession(t *testing.T) {
	f := newCheckoutFixture()
	f.session.discount = &port.AppliedDiscount{Code: "SAVE20", Percent: 20}

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(440), result.DiscountCents)
	assert.Equal(t, int64(1760), result.TotalCents)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.session.cart = map[int64]int{}

	_, err := f.svc.Checkout(context.Background(), "s1", 42)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutSkipsDeletedProducts(t *testing.T) {
	f := newCheckoutFixture()
	delete(f.catalog.products, 2)

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalCents)

	order, err := f.repo.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(1), order.Items[0].ProductID)
}

func TestCheckoutAllProductsDeletedEqualsEmptyCart(t *testing.T) {
	f := newCheckoutFixture()
	f.catalog.products = map[int64]port.Product{}

	_, err := f.svc.Checkout(context.Background(), "s1", 42)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutPersistenceFailureLeavesCartIntact(t *testing.T) {
	f := newCheckoutFixture()
	f.repo.failing = true

	_, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.Error(t, err)
	assert.Equal(t, map[int64]int{1: 2, 2: 1}, f.session.cart, "failed checkout must not touch the session")
}

func TestCheckoutSessionClearFailureIsWarning(t *testing.T) {
	f := newCheckoutFixture()
	f.session.failClear = true

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err, "order stands even if session cleanup fails")
	assert.NotEmpty(t, result.Warnings)
}

func TestCheckoutNotifierFailureIsWarning(t *testing.T) {
	f := newCheckoutFixture()
	f.notifier.fail = true

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err)
	assert.Len(t, result.Warnings, 3, "confirmation, invoice and admin alert all degraded to warnings")
}

func TestCheckoutGhostBuyerSkipsConfirmation(t *testing.T) {
	f := newCheckoutFixture()

	result, err := f.svc.Checkout(context.Background(), "s1", 999)
	require.NoError(t, err, "order creation does not require an active buyer record")
	assert.NotEmpty(t, result.Warnings)
	assert.ElementsMatch(t, []domain.NotificationKind{domain.KindAdminAlert}, f.notifier.kinds())
}

func TestCheckoutSnapshotSurvivesPriceChange(t *testing.T) {
	f := newCheckoutFixture()

	result, err := f.svc.Checkout(context.Background(), "s1", 42)
	require.NoError(t, err)

	// 涨价不影响已固化的快照
	f.catalog.products[1] = port.Product{ID: 1, Title: "Keyboard", UnitPriceCents: 9999}

	order, err := f.repo.FindByID(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), order.Items[0].PriceAtPurchaseCents)
	assert.Equal(t, int64(2200), order.TotalPriceCents)
}
