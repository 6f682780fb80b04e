package notification

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/mq"
	"storefront/internal/service/order/domain"
)

// Dispatcher 消费通知主题，把事件交给 Sender 投递。
// 单条消息的失败只记录不上抛，消费循环永不因坏消息停摆。
type Dispatcher struct {
	sender Sender
	tracer trace.Tracer
}

func NewDispatcher(sender Sender, tracer trace.Tracer) *Dispatcher {
	return &Dispatcher{sender: sender, tracer: tracer}
}

// HandleMessage 处理从 Kafka 收到的单条消息
func (d *Dispatcher) HandleMessage(msg kafka.Message) {
	// 从消息头中提取追踪上下文，把消费端挂到上游的追踪链路上
	ctx := mq.ExtractTraceContext(context.Background(), msg.Headers)

	spanOpts := []trace.SpanStartOption{
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.message.offset", msg.Offset),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	}
	ctx, span := d.tracer.Start(ctx, "notification.Dispatch", spanOpts...)
	defer span.End()

	var event domain.NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal notification event")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("notification.kind", string(event.Kind)),
		attribute.Int64("notification.recipient_id", event.RecipientID),
	)

	if err := d.sender.Send(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("event_id", event.EventID).
			Str("kind", string(event.Kind)).
			Msg("failed to deliver notification")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.AddEvent("notification delivered")
}
