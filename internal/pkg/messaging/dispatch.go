package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bridj/tripmailer/internal/pkg/stacktrace"
)

// delivery is a received message as the consume loops see it.
type delivery interface {
	Message
	Nackable
	hasResponded() bool
}

// dispatch calls handler for one message. A panic becomes an error. With
// autoAck the outcome is acked or nacked unless the handler responded first.
// Only a failed ack or nack is returned.
func dispatch(ctx context.Context, driver string, msg delivery, handler Handler, autoAck bool) error {
	herr := safeCall(ctx, driver, msg, handler)

	switch {
	case !autoAck || msg.hasResponded():
		return nil
	case herr != nil:
		return msg.Nack(ctx)
	default:
		return msg.Ack(ctx)
	}
}

func safeCall(ctx context.Context, driver string, msg Message, handler Handler) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic in messaging handler", "driver", driver, "source", msg.Source(), "panic", rvr, stacktrace.Attr(1))
			err = fmt.Errorf("messaging: panic handling %s: %v", msg.Source(), rvr)
		}
	}()
	return handler(ctx, msg)
}
