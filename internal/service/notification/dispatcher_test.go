package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/service/order/domain"
)

type recordingSender struct {
	events []domain.NotificationEvent
	fail   bool
}

func (s *recordingSender) Send(_ context.Context, event domain.NotificationEvent) error {
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.events = append(s.events, event)
	return nil
}

func messageFor(t *testing.T, event domain.NotificationEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "notifications", Value: value}
}

func TestHandleMessageDeliversEvent(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, otel.Tracer("test"))

	event := domain.NotificationEvent{
		EventID:        "evt-1",
		Kind:           domain.KindOrderConfirmation,
		RecipientID:    42,
		RecipientEmail: "alice@example.com",
		OrderID:        7,
		Payload:        domain.NotificationPayload{TotalCents: 1760},
	}
	dispatcher.HandleMessage(messageFor(t, event))

	require.Len(t, sender.events, 1)
	assert.Equal(t, event, sender.events[0])
}

func TestHandleMessageSwallowsBadPayload(t *testing.T) {
	sender := &recordingSender{}
	dispatcher := NewDispatcher(sender, otel.Tracer("test"))

	dispatcher.HandleMessage(kafka.Message{Topic: "notifications", Value: []byte("{not json")})
	assert.Empty(t, sender.events)
}

func TestHandleMessageSwallowsSenderFailure(t *testing.T) {
	sender := &recordingSender{fail: true}
	dispatcher := NewDispatcher(sender, otel.Tracer("test"))

	// 投递失败不 panic、不上抛
	dispatcher.HandleMessage(messageFor(t, domain.NotificationEvent{
		EventID: "evt-2",
		Kind:    domain.KindOrderShipped,
	}))
	assert.Empty(t, sender.events)
}
