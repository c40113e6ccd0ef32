// Package eventbus publishes and consumes workflow execution events over a
// watermill publisher/subscriber pair.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/pinkflow/pinkflow/pkg/events"
)

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type EventHandler func(ctx context.Context, event events.Event) error

type EventBus interface {
	EventPublisher
	Subscribe(ctx context.Context, handler EventHandler) error
	Close() error
}

// WatermillEventBus routes execution events over any watermill transport.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
	}
}

func (eb *WatermillEventBus) Publish(_ context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewULID(), payload)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.Topic, msg)
}

// Subscribe decodes incoming messages by their event_type metadata and hands
// them to the handler. Messages with unknown types are nacked.
func (eb *WatermillEventBus) Subscribe(ctx context.Context, handler EventHandler) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := decode(msg)
			if err != nil {
				msg.Nack()

				continue
			}

			if err := handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}

func decode(msg *message.Message) (events.Event, error) {
	eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

	switch eventType {
	case events.ExecutionStartedEvent:
		var event events.ExecutionStarted

		return &event, json.Unmarshal(msg.Payload, &event)
	case events.ExecutionCompletedEvent:
		var event events.ExecutionCompleted

		return &event, json.Unmarshal(msg.Payload, &event)
	case events.ExecutionFailedEvent:
		var event events.ExecutionFailed

		return &event, json.Unmarshal(msg.Payload, &event)
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
}
