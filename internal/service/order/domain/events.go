package domain

// NotificationKind 通知事件类型
type NotificationKind string

const (
	KindOrderConfirmation NotificationKind = "order-confirmation"
	KindOrderInvoice      NotificationKind = "invoice-document"
	KindOrderShipped      NotificationKind = "order-shipped"
	KindOrderCancelled    NotificationKind = "order-cancelled"
	KindAdminAlert        NotificationKind = "admin-alert"
	KindPasswordReset     NotificationKind = "password-reset"
)

// NotificationEvent 投递到消息队列的通知信封。
// 消费侧按 Kind 渲染内容，Payload 携带渲染所需的订单数据。
type NotificationEvent struct {
	EventID        string              `json:"event_id"`
	Kind           NotificationKind    `json:"kind"`
	RecipientID    int64               `json:"recipient_id"`
	RecipientEmail string              `json:"recipient_email"`
	OrderID        int64               `json:"order_id,omitempty"`
	Payload        NotificationPayload `json:"payload"`
}

type NotificationPayload struct {
	Lines            []NotificationLine `json:"lines,omitempty"`
	TotalCents       int64              `json:"total_cents,omitempty"`
	DiscountCents    int64              `json:"discount_cents,omitempty"`
	RefundCents      int64              `json:"refund_cents,omitempty"`
	TrackingHint     string             `json:"tracking_hint,omitempty"`
	PasswordResetURL string             `json:"password_reset_url,omitempty"`
}

type NotificationLine struct {
	ProductID  int64  `json:"product_id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}
