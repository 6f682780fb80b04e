package notification

import (
	"context"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/domain"
)

// Sender 负责把一条通知真正送达收件人。
// 生产环境可以接邮件网关或短信通道，这里先落日志。
type Sender interface {
	Send(ctx context.Context, event domain.NotificationEvent) error
}

// LogSender 把通知渲染成结构化日志
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, event domain.NotificationEvent) error {
	entry := logger.Ctx(ctx).Info().
		Str("event_id", event.EventID).
		Str("kind", string(event.Kind)).
		Int64("recipient_id", event.RecipientID).
		Str("recipient_email", event.RecipientEmail)
	if event.OrderID != 0 {
		entry = entry.Int64("order_id", event.OrderID)
	}
	switch event.Kind {
	case domain.KindOrderConfirmation:
		entry.Int64("total_cents", event.Payload.TotalCents).
			Int("line_count", len(event.Payload.Lines)).
			Msg("order confirmation sent")
	case domain.KindOrderInvoice:
		entry.Int64("total_cents", event.Payload.TotalCents).Msg("invoice document sent")
	case domain.KindOrderShipped:
		entry.Msg("shipping notice sent")
	case domain.KindOrderCancelled:
		entry.Int64("refund_cents", event.Payload.RefundCents).Msg("cancellation notice sent")
	case domain.KindAdminAlert:
		entry.Int64("total_cents", event.Payload.TotalCents).Msg("admin alert sent")
	case domain.KindPasswordReset:
		entry.Msg("password reset email sent")
	default:
		entry.Msg("notification sent")
	}
	return nil
}
