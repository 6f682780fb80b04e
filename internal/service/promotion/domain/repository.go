// internal/service/promotion/domain/repository.go
package domain

import "context"

// CouponRepository 定义优惠券的持久化接口。
type CouponRepository interface {
	// FindByCode 大小写不敏感地精确匹配券码。
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, coupon *Coupon) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Coupon, error)
}

// DiscountStore 保存会话作用域的已应用折扣。
type DiscountStore interface {
	SaveDiscount(ctx context.Context, sessionID string, discount AppliedDiscount) error
	// LoadDiscount 在没有折扣时返回 (nil, nil)。
	LoadDiscount(ctx context.Context, sessionID string) (*AppliedDiscount, error)
	ClearDiscount(ctx context.Context, sessionID string) error
}
