package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/port"
)

type lifecycleFixture struct {
	svc      *LifecycleService
	repo     *memoryOrderRepo
	catalog  *stubCatalog
	notifier *recordingNotifier
}

func newLifecycleFixture(t *testing.T) (*lifecycleFixture, int64) {
	t.Helper()
	repo := newMemoryOrderRepo()
	customers := &stubCustomers{
		active: map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
		all:    map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
	}
	catalog := &stubCatalog{products: map[int64]port.Product{}}
	notifier := &recordingNotifier{}
	svc := NewLifecycleService(repo, customers, catalog, notifier, otel.Tracer("test"))

	order, err := domain.NewOrder(42, []domain.OrderItem{
		{ProductID: 1, Quantity: 2, PriceAtPurchaseCents: 500},
		{ProductID: 2, Quantity: 1, PriceAtPurchaseCents: 1200},
	}, 20)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), order))
	return &lifecycleFixture{svc: svc, repo: repo, catalog: catalog, notifier: notifier}, order.ID
}

func TestShipPendingOrder(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	result, err := f.svc.Ship(context.Background(), orderID)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	order, err := f.repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, order.Status)
	assert.ElementsMatch(t, []domain.NotificationKind{domain.KindOrderShipped}, f.notifier.kinds())
}

func TestShipRejectsTerminalStates(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	_, err := f.svc.Ship(context.Background(), orderID)
	require.NoError(t, err)

	_, err = f.svc.Ship(context.Background(), orderID)
	assert.ErrorIs(t, err, domain.ErrAlreadyShipped)
}

func TestShipUnknownOrder(t *testing.T) {
	f, _ := newLifecycleFixture(t)

	_, err := f.svc.Ship(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelOwnPendingOrder(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	result, err := f.svc.Cancel(context.Background(), orderID, 42)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCancelled)
	assert.Equal(t, int64(1760), result.RefundCents, "refund is the discounted total the buyer actually paid")

	order, err := f.repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, order.Status)
	assert.ElementsMatch(t, []domain.NotificationKind{domain.KindOrderCancelled}, f.notifier.kinds())
}

func TestCancelByAnotherUserIsForbidden(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	_, err := f.svc.Cancel(context.Background(), orderID, 7)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	order, err := f.repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	_, err := f.svc.Cancel(context.Background(), orderID, 42)
	require.NoError(t, err)

	result, err := f.svc.Cancel(context.Background(), orderID, 42)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCancelled)
	assert.Len(t, f.notifier.kinds(), 1, "no second cancellation notification")
}

func TestCancelShippedOrderFails(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	_, err := f.svc.Ship(context.Background(), orderID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), orderID, 42)
	assert.ErrorIs(t, err, domain.ErrAlreadyShipped)
}

// raceOrderRepo 在第一次 CAS 写入前让另一个迁移抢先落库,
// 制造读取与状态更新之间的并发交错
type raceOrderRepo struct {
	*memoryOrderRepo
	winner domain.Status
	raced  bool
}

func (r *raceOrderRepo) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := r.memoryOrderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.raced {
		// 交错前的读取看到的是过期快照
		order.Status = domain.StatusPending
	}
	return order, nil
}

func (r *raceOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.Status) error {
	if !r.raced {
		r.raced = true
		if err := r.memoryOrderRepo.UpdateStatus(ctx, id, domain.StatusPending, r.winner); err != nil {
			return err
		}
	}
	return r.memoryOrderRepo.UpdateStatus(ctx, id, from, to)
}

func newRaceFixture(t *testing.T, winner domain.Status) (*LifecycleService, *recordingNotifier, int64) {
	t.Helper()
	repo := &raceOrderRepo{memoryOrderRepo: newMemoryOrderRepo(), winner: winner}
	customers := &stubCustomers{
		active: map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
		all:    map[int64]port.Customer{42: {ID: 42, Name: "Alice", Email: "alice@example.com"}},
	}
	notifier := &recordingNotifier{}
	svc := NewLifecycleService(repo, customers, &stubCatalog{products: map[int64]port.Product{}}, notifier, otel.Tracer("test"))

	order, err := domain.NewOrder(42, []domain.OrderItem{
		{ProductID: 1, Quantity: 1, PriceAtPurchaseCents: 500},
	}, 0)
	require.NoError(t, err)
	require.NoError(t, repo.memoryOrderRepo.Create(context.Background(), order))
	return svc, notifier, order.ID
}

func TestCancelLosingRaceToShipFails(t *testing.T) {
	svc, notifier, orderID := newRaceFixture(t, domain.StatusShipped)

	_, err := svc.Cancel(context.Background(), orderID, 42)
	assert.ErrorIs(t, err, domain.ErrAlreadyShipped)
	assert.Empty(t, notifier.kinds(), "losing transition must not notify")
}

func TestCancelLosingRaceToCancelIsIdempotent(t *testing.T) {
	svc, notifier, orderID := newRaceFixture(t, domain.StatusCancelled)

	result, err := svc.Cancel(context.Background(), orderID, 42)
	require.NoError(t, err)
	assert.True(t, result.AlreadyCancelled)
	assert.Empty(t, notifier.kinds())
}

func TestShipLosingRaceToCancelFails(t *testing.T) {
	svc, notifier, orderID := newRaceFixture(t, domain.StatusCancelled)

	_, err := svc.Ship(context.Background(), orderID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Empty(t, notifier.kinds())
}

func TestExportCSVWithPlaceholders(t *testing.T) {
	f, _ := newLifecycleFixture(t)
	f.catalog.products[1] = port.Product{ID: 1, Title: "Keyboard", UnitPriceCents: 500}

	// 第二单属于已删除的买家，行里引用已下架商品
	ghost, err := domain.NewOrder(99, []domain.OrderItem{
		{ProductID: 3, Quantity: 1, PriceAtPurchaseCents: 300},
	}, 0)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), ghost))

	out, err := f.svc.ExportCSV(context.Background())
	require.NoError(t, err)

	body := string(out)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	assert.Len(t, lines, 3, "header plus one row per order")
	assert.Equal(t, "Order ID,Date,Customer Name,Email,Items,Total ($),Status", lines[0])
	assert.Contains(t, body, "Alice")
	assert.Contains(t, body, "Keyboard (x2)")
	assert.Contains(t, body, "Deleted User")
	assert.Contains(t, body, "N/A")
	assert.Contains(t, body, "Deleted Product (x1)")
	assert.Contains(t, body, "17.60")
}

func TestDashboardStats(t *testing.T) {
	f, orderID := newLifecycleFixture(t)

	stats, err := f.svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(1760), stats.TotalSalesCents)
	assert.Equal(t, int64(1760), stats.AvgOrderValueCents)

	pending, err := f.svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	_, err = f.svc.Ship(context.Background(), orderID)
	require.NoError(t, err)
	pending, err = f.svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)
}
