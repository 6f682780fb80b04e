package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/promotion/domain"
)

type memoryCouponRepo struct {
	coupons map[string]*domain.Coupon // keyed by uppercase code
	nextID  int64
}

func newMemoryCouponRepo() *memoryCouponRepo {
	return &memoryCouponRepo{coupons: make(map[string]*domain.Coupon), nextID: 1}
}

func (r *memoryCouponRepo) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	coupon, ok := r.coupons[strings.ToUpper(code)]
	if !ok {
		return nil, domain.ErrCouponNotFound
	}
	copied := *coupon
	return &copied, nil
}

func (r *memoryCouponRepo) Create(_ context.Context, coupon *domain.Coupon) error {
	if _, ok := r.coupons[coupon.Code]; ok {
		return domain.ErrCodeTaken
	}
	coupon.ID = r.nextID
	r.nextID++
	copied := *coupon
	r.coupons[coupon.Code] = &copied
	return nil
}

func (r *memoryCouponRepo) SetActive(_ context.Context, id int64, active bool) error {
	for _, coupon := range r.coupons {
		if coupon.ID == id {
			coupon.Active = active
			return nil
		}
	}
	return domain.ErrCouponNotFound
}

func (r *memoryCouponRepo) Delete(_ context.Context, id int64) error {
	for code, coupon := range r.coupons {
		if coupon.ID == id {
			delete(r.coupons, code)
			return nil
		}
	}
	return domain.ErrCouponNotFound
}

func (r *memoryCouponRepo) List(_ context.Context) ([]domain.Coupon, error) {
	var out []domain.Coupon
	for _, coupon := range r.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

type memoryDiscountStore struct {
	discounts map[string]domain.AppliedDiscount
}

func newMemoryDiscountStore() *memoryDiscountStore {
	return &memoryDiscountStore{discounts: make(map[string]domain.AppliedDiscount)}
}

func (s *memoryDiscountStore) SaveDiscount(_ context.Context, sessionID string, d domain.AppliedDiscount) error {
	s.discounts[sessionID] = d
	return nil
}

func (s *memoryDiscountStore) LoadDiscount(_ context.Context, sessionID string) (*domain.AppliedDiscount, error) {
	d, ok := s.discounts[sessionID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (s *memoryDiscountStore) ClearDiscount(_ context.Context, sessionID string) error {
	delete(s.discounts, sessionID)
	return nil
}

func setup(t *testing.T) (*PromotionService, *memoryCouponRepo, *memoryDiscountStore) {
	t.Helper()
	repo := newMemoryCouponRepo()
	store := newMemoryDiscountStore()
	return NewPromotionService(repo, store, otel.Tracer("test")), repo, store
}

func TestCreateNormalizesCodeToUppercase(t *testing.T) {
	svc, _, _ := setup(t)

	coupon, err := svc.Create(context.Background(), "save20", 20)
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", coupon.Code)
	assert.True(t, coupon.Active)

	_, err = svc.Create(context.Background(), "SAVE20", 10)
	assert.ErrorIs(t, err, domain.ErrCodeTaken)
}

func TestCreateValidatesPercent(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Create(context.Background(), "BROKEN", 101)
	assert.ErrorIs(t, err, domain.ErrBadPercent)

	_, err = svc.Create(context.Background(), "BROKEN", -1)
	assert.ErrorIs(t, err, domain.ErrBadPercent)

	_, err = svc.Create(context.Background(), "  ", 10)
	assert.ErrorIs(t, err, domain.ErrEmptyCode)
}

func TestApplyMatchesCaseInsensitively(t *testing.T) {
	svc, _, store := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "SAVE20", 20)
	require.NoError(t, err)

	discount, err := svc.Apply(ctx, "s1", "save20")
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", discount.Code)
	assert.Equal(t, 20, discount.Percent)
	assert.Equal(t, *discount, store.discounts["s1"])
}

func TestApplyRejectsUnknownAndInactive(t *testing.T) {
	svc, repo, store := setup(t)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "s1", "NOPE")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)

	coupon, err := svc.Create(ctx, "EXPIRED", 15)
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(ctx, coupon.ID, false))

	_, err = svc.Apply(ctx, "s1", "EXPIRED")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
	assert.Empty(t, store.discounts, "rejected coupons leave the session untouched")
}

func TestAppliedDiscountSurvivesLaterDeactivation(t *testing.T) {
	svc, repo, store := setup(t)
	ctx := context.Background()

	coupon, err := svc.Create(ctx, "SAVE20", 20)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, "s1", "SAVE20")
	require.NoError(t, err)

	// 停用券不会作废已应用的会话折扣
	require.NoError(t, repo.SetActive(ctx, coupon.ID, false))
	loaded, err := store.LoadDiscount(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 20, loaded.Percent)

	// 但下一次 Apply 会重新校验
	_, err = svc.Apply(ctx, "s1", "SAVE20")
	assert.ErrorIs(t, err, domain.ErrCouponInvalid)
}

func TestClearRemovesDiscount(t *testing.T) {
	svc, _, store := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "SAVE20", 20)
	require.NoError(t, err)
	_, err = svc.Apply(ctx, "s1", "SAVE20")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "s1"))
	assert.Empty(t, store.discounts)
}
