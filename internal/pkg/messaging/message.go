package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/segmentio/kafka-go"
)

// settled lets only the first Ack or Nack of a message reach the broker.
type settled struct{ done atomic.Bool }

func (s *settled) hasResponded() bool { return s.done.Load() }

func (s *settled) settle(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.done.Swap(true) {
		return nil
	}
	return fn()
}

type kafkaMessage struct {
	settled
	reader *kafka.Reader
	msg    kafka.Message
}

func newKafkaMessage(reader *kafka.Reader, msg kafka.Message) *kafkaMessage {
	return &kafkaMessage{reader: reader, msg: msg}
}

func (m *kafkaMessage) Body() []byte         { return m.msg.Value }
func (m *kafkaMessage) Key() []byte          { return m.msg.Key }
func (m *kafkaMessage) Source() string       { return m.msg.Topic }
func (m *kafkaMessage) Timestamp() time.Time { return m.msg.Time }

// ID is topic/partition/offset, unique within a cluster.
func (m *kafkaMessage) ID() string {
	return fmt.Sprintf("%s/%d/%d", m.msg.Topic, m.msg.Partition, m.msg.Offset)
}

func (m *kafkaMessage) Headers() []Header {
	if len(m.msg.Headers) == 0 {
		return nil
	}
	out := make([]Header, len(m.msg.Headers))
	for i, h := range m.msg.Headers {
		out[i] = Header{Key: h.Key, Value: h.Value}
	}
	return out
}

// Ack commits the offset for the group.
func (m *kafkaMessage) Ack(ctx context.Context) error {
	return m.settle(ctx, func() error { return m.reader.CommitMessages(ctx, m.msg) })
}

// Nack leaves the offset uncommitted; the group sees the message again after
// a rebalance or restart.
func (m *kafkaMessage) Nack(ctx context.Context) error {
	return m.settle(ctx, func() error { return nil })
}

type natsMessage struct {
	settled
	msg      *nats.Msg
	received time.Time
}

func newNATSMessage(msg *nats.Msg, received time.Time) *natsMessage {
	return &natsMessage{msg: msg, received: received}
}

func (m *natsMessage) Body() []byte         { return m.msg.Data }
func (m *natsMessage) Key() []byte          { return nil }
func (m *natsMessage) Source() string       { return m.msg.Subject }
func (m *natsMessage) Timestamp() time.Time { return m.received }

// ID is the Nats-Msg-Id header, set only by deduplicating publishers.
func (m *natsMessage) ID() string { return m.msg.Header.Get(nats.MsgIdHdr) }

func (m *natsMessage) Headers() []Header {
	var out []Header
	for k, values := range m.msg.Header {
		for _, v := range values {
			out = append(out, Header{Key: k, Value: []byte(v)})
		}
	}
	return out
}

func (m *natsMessage) Ack(ctx context.Context) error {
	return m.settle(ctx, func() error { return ignoreNoReply(m.msg.Ack()) })
}

func (m *natsMessage) Nack(ctx context.Context) error {
	return m.settle(ctx, func() error { return ignoreNoReply(m.msg.Nak()) })
}

// ignoreNoReply drops the errors a plain (non-JetStream) subscription returns
// when there is nothing to acknowledge.
func ignoreNoReply(err error) error {
	if errors.Is(err, nats.ErrMsgNoReply) || errors.Is(err, nats.ErrMsgNotBound) {
		return nil
	}
	return err
}
