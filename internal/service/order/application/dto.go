package application

// CheckoutResult 结算成功的返回值。Warnings 收集不影响订单创建的后置失败,
// 例如会话清理失败或通知投递失败。
type CheckoutResult struct {
	OrderID       int64    `json:"order_id"`
	TotalCents    int64    `json:"total_cents"`
	DiscountCents int64    `json:"discount_cents"`
	Warnings      []string `json:"warnings,omitempty"`
}

// CancelResult AlreadyCancelled 为真表示订单此前已取消，本次请求视为幂等成功
type CancelResult struct {
	OrderID          int64    `json:"order_id"`
	AlreadyCancelled bool     `json:"already_cancelled"`
	RefundCents      int64    `json:"refund_cents"`
	Warnings         []string `json:"warnings,omitempty"`
}

type ShipResult struct {
	OrderID  int64    `json:"order_id"`
	Warnings []string `json:"warnings,omitempty"`
}
