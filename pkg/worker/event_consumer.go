package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

// Subscriber is the receiving half of a message broker.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// EventHandler reacts to one decoded store event.
type EventHandler func(ctx context.Context, evt model.Event) error

// EventConsumer feeds store events from a broker channel to a handler.
// Undecodable messages and handler errors are logged and skipped.
type EventConsumer struct {
	sub     Subscriber
	channel string
	handle  EventHandler
	logger  *logger.Logger
}

func NewEventConsumer(sub Subscriber, channel string, handle EventHandler, logger *logger.Logger) *EventConsumer {
	return &EventConsumer{sub: sub, channel: channel, handle: handle, logger: logger}
}

// Start blocks until ctx ends or the subscription closes.
func (c *EventConsumer) Start(ctx context.Context) error {
	messages, err := c.sub.Subscribe(ctx, c.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	c.logger.Info("Consuming store events", "channel", c.channel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var evt model.Event
			if err := json.Unmarshal(msg, &evt); err != nil {
				c.logger.Error(err, "Discarding malformed event")
				continue
			}
			if err := c.handle(ctx, evt); err != nil {
				c.logger.Error(err, "Failed to handle event", "event_type", string(evt.Type))
			}
		}
	}
}

// LogEvents is an EventHandler that writes each event to the log.
func LogEvents(logger *logger.Logger) EventHandler {
	return func(_ context.Context, evt model.Event) error {
		logger.Info("Store event",
			"event_type", string(evt.Type),
			"occurred_at", evt.OccurredAt,
			"payload", evt.Payload)
		return nil
	}
}
