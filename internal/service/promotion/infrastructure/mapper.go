// internal/service/promotion/infrastructure/mapper.go
package infrastructure

import (
	"gorm.io/gorm"

	"storefront/internal/service/promotion/domain"
)

// ToDomainCoupon 将数据库模型转换为领域模型
func ToDomainCoupon(model *CouponModel) *domain.Coupon {
	if model == nil {
		return nil
	}
	return &domain.Coupon{
		ID:              int64(model.ID),
		Code:            model.Code,
		DiscountPercent: model.DiscountPercent,
		Active:          model.Active,
	}
}

// FromDomainCoupon 将领域模型转换为数据库模型
func FromDomainCoupon(coupon *domain.Coupon) *CouponModel {
	if coupon == nil {
		return nil
	}
	return &CouponModel{
		Model:           gorm.Model{ID: uint(coupon.ID)},
		Code:            coupon.Code,
		DiscountPercent: coupon.DiscountPercent,
		Active:          coupon.Active,
	}
}
