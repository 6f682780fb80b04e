package domain

import (
	"errors"
	"time"

	"storefront/internal/pkg/money"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrForbidden        = errors.New("operation not permitted for this user")
	ErrAlreadyShipped   = errors.New("order has already been shipped")
	ErrAlreadyCancelled = errors.New("order has already been cancelled")
	ErrEmptyOrder       = errors.New("order must contain at least one item")
)

// OrderItem 下单时刻的价格快照。目录后续改价或删品不影响已存在的行。
type OrderItem struct {
	ID                   int64
	ProductID            int64
	Quantity             int
	PriceAtPurchaseCents int64
}

// Order 订单聚合根
type Order struct {
	ID                  int64
	UserID              int64
	CreatedDate         time.Time
	TotalPriceCents     int64
	DiscountAmountCents int64
	Status              Status
	Items               []OrderItem
}

// NewOrder 根据明细行和折扣百分比构建待支付订单。
// 总价从明细行计算得出，保证 TotalPriceCents 与行快照一致。
func NewOrder(userID int64, items []OrderItem, discountPercent int) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	var rawTotal int64
	for _, item := range items {
		lineTotal, err := money.LineTotal(item.PriceAtPurchaseCents, item.Quantity)
		if err != nil {
			return nil, err
		}
		rawTotal += lineTotal
	}
	discount := money.Discount(rawTotal, money.ClampPercent(discountPercent))
	return &Order{
		UserID:              userID,
		CreatedDate:         time.Now().UTC(),
		TotalPriceCents:     rawTotal - discount,
		DiscountAmountCents: discount,
		Status:              StatusPending,
		Items:               items,
	}, nil
}

// Ship 校验发货迁移。只有待支付订单可以发货。
func (o *Order) Ship() error {
	switch o.Status {
	case StatusShipped:
		return ErrAlreadyShipped
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	return nil
}

// Cancel 校验取消迁移。买家只能取消自己的待支付订单。
// 对已取消订单返回 ErrAlreadyCancelled，调用方可视为幂等成功。
func (o *Order) Cancel(requestingUserID int64) error {
	if o.UserID != requestingUserID {
		return ErrForbidden
	}
	switch o.Status {
	case StatusShipped:
		return ErrAlreadyShipped
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	return nil
}
