// Package messaging consumes domain events (booking confirmed, booking
// cancelled, traveler registered) from NATS or Kafka behind one API.
//
// A Handler decides the outcome of a message by its return value; with
// WithAutoAck a nil error acks and anything else nacks.
package messaging

import (
	"context"
	"io"
	"time"
)

// Messaging is a connected broker client.
type Messaging interface {
	io.Closer
	Consumer
}

type Consumer interface {
	// Consume blocks, feeding messages from source (subject or topic) to
	// handler until ctx is done or the client fails.
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

type Handler func(ctx context.Context, msg Message) error

type Header struct {
	Key   string
	Value []byte
}

// Message is a received event. Key is nil and ID may be empty on brokers
// that do not provide them; Timestamp falls back to the receive time.
type Message interface {
	Body() []byte
	Key() []byte
	Headers() []Header
	ID() string
	Source() string
	Timestamp() time.Time
	Ack(ctx context.Context) error
}

// Nackable messages can be handed back for redelivery.
type Nackable interface {
	Nack(ctx context.Context) error
}

// HeaderValue returns the first value stored under key, or "".
func HeaderValue(headers []Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// HeaderCarrier lets the OpenTelemetry propagator read trace context from
// message headers. It is read-only.
type HeaderCarrier []Header

func (c HeaderCarrier) Get(key string) string { return HeaderValue(c, key) }

func (c HeaderCarrier) Set(string, string) {}

func (c HeaderCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = h.Key
	}
	return keys
}
