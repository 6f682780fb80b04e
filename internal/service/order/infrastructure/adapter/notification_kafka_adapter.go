package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// NotificationKafkaAdapter 实现了 port.NotificationProducer 接口。
// 以收件人 ID 作为消息 key，同一收件人的通知落在同一分区保持有序。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) Publish(ctx context.Context, event domain.NotificationEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal notification event")
	}
	key := []byte(strconv.FormatInt(event.RecipientID, 10))
	// mq.ProduceMessage 会自动注入追踪上下文
	return mq.ProduceMessage(ctx, a.writer, key, eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
