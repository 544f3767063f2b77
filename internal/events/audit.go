package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// LogEvents subscribes to topic and writes one log line per event until ctx is done
func LogEvents(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			logger.Info("Session event",
				"event_id", msg.UUID,
				"event_type", msg.Metadata.Get("event_type"),
				"payload", string(msg.Payload))
			msg.Ack()
		}
	}()

	return nil
}
