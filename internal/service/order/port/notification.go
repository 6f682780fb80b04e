package port

import (
	"context"

	"storefront/internal/service/order/domain"
)

// NotificationProducer 把通知事件投递到消息队列。
// 投递失败不影响订单状态，调用方记录警告即可。
type NotificationProducer interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}
