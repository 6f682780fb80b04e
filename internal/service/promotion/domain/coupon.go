// internal/service/promotion/domain/coupon.go
package domain

import (
	"errors"
	"strings"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	// ErrCouponInvalid 覆盖"不存在"与"已停用"两种情况，对外统一为 invalid or expired。
	ErrCouponInvalid = errors.New("coupon is invalid or expired")
	ErrCodeTaken     = errors.New("coupon code already exists")
	ErrBadPercent    = errors.New("discount percent must be between 0 and 100")
	ErrEmptyCode     = errors.New("coupon code must not be empty")
)

// Coupon 是管理员定义的百分比折扣码。可重复使用，不做核销计数；
// 结算只复制它的 code 与 percent，绝不修改 Coupon 本身。
type Coupon struct {
	ID              int64
	Code            string
	DiscountPercent int
	Active          bool
}

// NewCoupon 创建一张新券。码统一归一化为大写后入库，
// 查询仍然大小写不敏感，所以混合大小写输入总能命中。
func NewCoupon(code string, discountPercent int) (*Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrEmptyCode
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, ErrBadPercent
	}
	return &Coupon{
		Code:            code,
		DiscountPercent: discountPercent,
		Active:          true,
	}, nil
}

// AppliedDiscount 是复制进会话的折扣快照。
// 复制之后独立于 Coupon 行的后续变更：停用或删除券不会作废已应用的折扣，
// 直到下一次 Apply 才会重新校验。
type AppliedDiscount struct {
	Code    string `json:"code"`
	Percent int    `json:"percent"`
}
