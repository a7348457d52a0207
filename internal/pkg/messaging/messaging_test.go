package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeMessage struct {
	headers []Header
	acked   int
	nacked  int
	resp    bool
}

func (m *fakeMessage) Body() []byte         { return nil }
func (m *fakeMessage) Key() []byte          { return nil }
func (m *fakeMessage) Headers() []Header    { return m.headers }
func (m *fakeMessage) ID() string           { return "1" }
func (m *fakeMessage) Source() string       { return "booking_confirmed" }
func (m *fakeMessage) Timestamp() time.Time { return time.Time{} }
func (m *fakeMessage) hasResponded() bool   { return m.resp }
func (m *fakeMessage) Ack(context.Context) error {
	m.acked++
	return nil
}
func (m *fakeMessage) Nack(context.Context) error {
	m.nacked++
	return nil
}

func TestDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("AckOnSuccess", func(t *testing.T) {
		msg := &fakeMessage{}
		err := dispatch(ctx, "test", msg, func(context.Context, Message) error { return nil }, true)

		require.NoError(t, err)
		assert.Equal(t, 1, msg.acked)
		assert.Zero(t, msg.nacked)
	})

	t.Run("NackOnError", func(t *testing.T) {
		msg := &fakeMessage{}
		err := dispatch(ctx, "test", msg, func(context.Context, Message) error { return errors.New("boom") }, true)

		require.NoError(t, err)
		assert.Equal(t, 1, msg.nacked)
	})

	t.Run("NackOnPanic", func(t *testing.T) {
		msg := &fakeMessage{}
		err := dispatch(ctx, "test", msg, func(context.Context, Message) error { panic("boom") }, true)

		require.NoError(t, err)
		assert.Equal(t, 1, msg.nacked)
	})

	t.Run("ManualAck", func(t *testing.T) {
		msg := &fakeMessage{}
		err := dispatch(ctx, "test", msg, func(context.Context, Message) error { return nil }, false)

		require.NoError(t, err)
		assert.Zero(t, msg.acked)
	})
}

func TestHeaderCarrier(t *testing.T) {
	headers := []Header{
		{Key: "traceparent", Value: []byte("00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")},
		{Key: "cID", Value: []byte("abc")},
	}

	assert.Equal(t, "abc", HeaderValue(headers, "cID"))
	assert.Empty(t, HeaderValue(headers, "missing"))

	ctx := propagation.TraceContext{}.Extract(context.Background(), HeaderCarrier(headers))
	sc := trace.SpanContextFromContext(ctx)
	assert.True(t, sc.IsRemote())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", sc.TraceID().String())
}

func TestNewFromDriver(t *testing.T) {
	_, err := NewFromDriver("sqs", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrBrokerRequired)

	_, err = NewFromDriver(" Kafka ", FactoryOptions{})
	assert.ErrorIs(t, err, ErrBrokerRequired)

	k, err := NewFromDriver("kafka", FactoryOptions{Kafka: KafkaConfig{Brokers: []string{"localhost:9092"}}})
	require.NoError(t, err)

	err = k.Consume(context.Background(), "booking_confirmed", func(context.Context, Message) error { return nil })
	assert.ErrorIs(t, err, ErrGroupRequired)
	assert.NoError(t, k.Close())
}

func TestRegistry(t *testing.T) {
	var r registry[int]
	require.NoError(t, r.add(1))
	require.NoError(t, r.add(2))
	r.remove(1)

	items, ok := r.close()
	assert.True(t, ok)
	assert.Equal(t, []int{2}, items)

	_, ok = r.close()
	assert.False(t, ok)
	assert.ErrorIs(t, r.add(3), ErrClosed)
}

func TestFanOut(t *testing.T) {
	in := make(chan int)
	got := make(chan int, 3)
	wait := fanOut(0, in, func(v int) error { got <- v; return nil })

	for v := range 3 {
		in <- v
	}
	close(in)
	wait()
	close(got)

	sum := 0
	for v := range got {
		sum += v
	}
	assert.Equal(t, 3, sum)
}

func TestCheckConsume(t *testing.T) {
	noop := func(context.Context, Message) error { return nil }

	assert.ErrorIs(t, checkConsume(context.Background(), "", noop), ErrSourceRequired)
	assert.ErrorIs(t, checkConsume(context.Background(), "traveler_registered", nil), ErrHandlerRequired)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, checkConsume(ctx, "traveler_registered", noop), context.Canceled)
}
