package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig is built from the messaging.kafka.* keys.
type KafkaConfig struct {
	Brokers []string
	Dialer  *kafka.Dialer

	// MaxWait bounds a single fetch.
	MaxWait time.Duration

	// StartOffset applies to a group with no committed offset:
	// kafka.FirstOffset or kafka.LastOffset.
	StartOffset int64
}

// Kafka reads topics through consumer groups. Offsets are committed per
// acked message, so a nacked booking event is read again after a rebalance.
type Kafka struct {
	cfg     KafkaConfig
	readers registry[*kafka.Reader]
}

func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrBrokerRequired
	}
	cfg.Brokers = slices.Clone(cfg.Brokers)
	return &Kafka{cfg: cfg}, nil
}

func (k *Kafka) Close() error {
	readers, ok := k.readers.close()
	if !ok {
		return nil
	}

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// Consume blocks until ctx is done, a fetch fails or an ack (offset commit)
// fails. WithGroup is required.
func (k *Kafka) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if err := checkConsume(ctx, topic, handler); err != nil {
		return err
	}
	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.cfg.Brokers,
		Dialer:      k.cfg.Dialer,
		GroupID:     co.group,
		Topic:       topic,
		MaxBytes:    10e6,
		MaxWait:     k.cfg.MaxWait,
		StartOffset: k.cfg.StartOffset,
	})
	if err := k.readers.add(reader); err != nil {
		return errors.Join(err, reader.Close())
	}
	defer k.readers.remove(reader)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	failed := newFirstError()
	fetched := make(chan kafka.Message)

	go func() {
		defer close(fetched)
		for {
			m, err := reader.FetchMessage(runCtx)
			if err != nil {
				failed.set(err)
				return
			}
			select {
			case fetched <- m:
			case <-runCtx.Done():
				return
			}
		}
	}()

	wait := fanOut(co.concurrency, fetched, func(m kafka.Message) error {
		err := dispatch(runCtx, DriverKafka, newKafkaMessage(reader, m), handler, co.autoAck)
		if err != nil {
			failed.set(err)
			cancel()
		}
		return err
	})

	var cause error
	select {
	case cause = <-failed.ch:
	case <-ctx.Done():
		cause = ctx.Err()
	}
	cancel()
	wait()

	if !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		cause = fmt.Errorf("messaging: kafka consume %s: %w", topic, cause)
	}
	return errors.Join(cause, reader.Close())
}
