// internal/service/promotion/application/service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/promotion/domain"
)

// PromotionService 负责券的查找校验、向会话附加/清除折扣，
// 以及后台的券管理。
type PromotionService struct {
	coupons   domain.CouponRepository
	discounts domain.DiscountStore
	tracer    trace.Tracer
}

func NewPromotionService(coupons domain.CouponRepository, discounts domain.DiscountStore, tracer trace.Tracer) *PromotionService {
	return &PromotionService{coupons: coupons, discounts: discounts, tracer: tracer}
}

// Apply 校验券码并把折扣快照写进会话。
// 券不存在或已停用都归结为 ErrCouponInvalid；快照写入后独立于券行的后续变更。
func (s *PromotionService) Apply(ctx context.Context, sessionID, code string) (*domain.AppliedDiscount, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.Apply")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.code", code))

	coupon, err := s.coupons.FindByCode(ctx, code)
	if errors.Is(err, domain.ErrCouponNotFound) {
		return nil, domain.ErrCouponInvalid
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !coupon.Active {
		return nil, domain.ErrCouponInvalid
	}

	discount := domain.AppliedDiscount{Code: coupon.Code, Percent: coupon.DiscountPercent}
	if err := s.discounts.SaveDiscount(ctx, sessionID, discount); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("coupon", coupon.Code).
		Int("percent", coupon.DiscountPercent).
		Msg("discount applied to session")
	return &discount, nil
}

// Clear 移除会话上的折扣。结算成功后由结算流程调用一次。
func (s *PromotionService) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "promotion.Clear")
	defer span.End()
	return s.discounts.ClearDiscount(ctx, sessionID)
}

// Create 创建一张新券（后台操作）。码在领域工厂里归一化为大写。
func (s *PromotionService) Create(ctx context.Context, code string, discountPercent int) (*domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.Create")
	defer span.End()

	coupon, err := domain.NewCoupon(code, discountPercent)
	if err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, coupon); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return coupon, nil
}

func (s *PromotionService) SetActive(ctx context.Context, id int64, active bool) error {
	ctx, span := s.tracer.Start(ctx, "promotion.SetActive")
	defer span.End()
	return s.coupons.SetActive(ctx, id, active)
}

func (s *PromotionService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "promotion.Delete")
	defer span.End()
	return s.coupons.Delete(ctx, id)
}

func (s *PromotionService) List(ctx context.Context) ([]domain.Coupon, error) {
	ctx, span := s.tracer.Start(ctx, "promotion.List")
	defer span.End()
	return s.coupons.List(ctx)
}
