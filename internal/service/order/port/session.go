package port

import "context"

// AppliedDiscount 会话中暂存的折扣快照
type AppliedDiscount struct {
	Code    string
	Percent int
}

// SessionState 结算时读取并清理的会话状态
type SessionState interface {
	// LoadCart 返回购物车 product id -> quantity
	LoadCart(ctx context.Context, sessionID string) (map[int64]int, error)
	// LoadDiscount 无折扣时返回 (nil, nil)
	LoadDiscount(ctx context.Context, sessionID string) (*AppliedDiscount, error)
	// ClearCheckout 一次性清空购物车与折扣
	ClearCheckout(ctx context.Context, sessionID string) error
}
