package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/port"
)

type memoryCartRepo struct {
	carts map[string]domain.Cart
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{carts: make(map[string]domain.Cart)}
}

func (r *memoryCartRepo) Load(_ context.Context, sessionID string) (domain.Cart, error) {
	cart := domain.Cart{}
	for id, qty := range r.carts[sessionID] {
		cart[id] = qty
	}
	return cart, nil
}

func (r *memoryCartRepo) Increment(_ context.Context, sessionID string, productID domain.ProductID) (int, error) {
	if r.carts[sessionID] == nil {
		r.carts[sessionID] = domain.Cart{}
	}
	r.carts[sessionID][productID]++
	return r.carts[sessionID][productID], nil
}

func (r *memoryCartRepo) Remove(_ context.Context, sessionID string, productID domain.ProductID) error {
	delete(r.carts[sessionID], productID)
	return nil
}

func (r *memoryCartRepo) Quantity(_ context.Context, sessionID string, productID domain.ProductID) (int, error) {
	return r.carts[sessionID][productID], nil
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

type ruleFunc func(domain.Fact) (bool, error)

func (f ruleFunc) Evaluate(fact domain.Fact) (bool, error) { return f(fact) }

var allowAll = ruleFunc(func(domain.Fact) (bool, error) { return true, nil })

func setup(t *testing.T, rule domain.AdmissionRule) (*CartService, *memoryCartRepo, *stubCatalog) {
	t.Helper()
	repo := newMemoryCartRepo()
	catalog := &stubCatalog{products: map[int64]port.Product{
		1: {ID: 1, Title: "Keyboard", UnitPriceCents: 500},
		2: {ID: 2, Title: "Monitor", UnitPriceCents: 1200},
	}}
	svc := NewCartService(repo, catalog, rule, otel.Tracer("test"))
	return svc, repo, catalog
}

func TestAddItemInitializesAndIncrements(t *testing.T) {
	svc, repo, _ := setup(t, allowAll)

	qty, err := svc.AddItem(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	qty, err = svc.AddItem(context.Background(), "s1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, qty)

	assert.Equal(t, domain.Cart{1: 2}, repo.carts["s1"])
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, repo, _ := setup(t, allowAll)

	_, err := svc.AddItem(context.Background(), "s1", 99)
	assert.ErrorIs(t, err, port.ErrProductNotFound)
	assert.Empty(t, repo.carts["s1"])
}

func TestAddItemRuleRejectionLeavesCartUnchanged(t *testing.T) {
	capAtTwo := ruleFunc(func(fact domain.Fact) (bool, error) {
		return fact.Quantity <= 2, nil
	})
	svc, repo, _ := setup(t, capAtTwo)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := svc.AddItem(ctx, "s1", 1)
		require.NoError(t, err)
	}

	_, err := svc.AddItem(ctx, "s1", 1)
	assert.ErrorIs(t, err, domain.ErrRuleRejected)
	assert.Equal(t, 2, repo.carts["s1"][1])
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, repo, _ := setup(t, allowAll)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", 1)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, "s1", 1))
	require.NoError(t, svc.RemoveItem(ctx, "s1", 1), "second remove is a no-op")
	assert.Empty(t, repo.carts["s1"])
}

func TestViewProjectsAndSkipsMissingProducts(t *testing.T) {
	svc, _, catalog := setup(t, allowAll)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "s1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s1", 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "s1", 2)
	require.NoError(t, err)

	view, err := svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Equal(t, int64(1000), view.Items[0].SubtotalCents)
	assert.Equal(t, int64(1200), view.Items[1].SubtotalCents)
	assert.Equal(t, int64(2200), view.GrandTotalCents)

	// 商品下架后，对应行与总额一起消失
	delete(catalog.products, 2)
	view, err = svc.View(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1), view.Items[0].ProductID)
	assert.Equal(t, int64(1000), view.GrandTotalCents)
}
