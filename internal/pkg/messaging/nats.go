package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSConfig is built from the messaging.nats.* keys.
type NATSConfig struct {
	URL     string
	Options []nats.Option
}

// NATS consumes core NATS subjects through queue subscriptions, so replicas
// sharing a queue group split the events between them.
type NATS struct {
	conn *nats.Conn
	subs registry[*nats.Subscription]
}

func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrBrokerRequired
	}

	conn, err := nats.Connect(cfg.URL, cfg.Options...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// Close drains every live subscription, then the connection.
func (n *NATS) Close() error {
	subs, ok := n.subs.close()
	if !ok {
		return nil
	}

	var errs []error
	for _, sub := range subs {
		if err := sub.Drain(); !errors.Is(err, nats.ErrBadSubscription) {
			errs = append(errs, err)
		}
	}
	if err := n.conn.Drain(); !errors.Is(err, nats.ErrConnectionClosed) {
		errs = append(errs, err)
	}
	n.conn.Close()

	return errors.Join(errs...)
}

// Consume blocks until ctx is done. Core NATS has no redelivery, so a nack
// only ends up in the handler's logs.
func (n *NATS) Consume(ctx context.Context, subject string, handler Handler, opts ...ConsumeOption) error {
	if err := checkConsume(ctx, subject, handler); err != nil {
		return err
	}
	co := newConsumeOptions(opts...)

	inbox := make(chan *nats.Msg, max(co.concurrency, 1))
	sub, err := n.conn.QueueSubscribe(subject, co.queueGroup, func(m *nats.Msg) {
		select {
		case inbox <- m:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe %s: %w", subject, err)
	}

	wait := fanOut(co.concurrency, inbox, func(m *nats.Msg) error {
		_ = dispatch(ctx, DriverNATS, newNATSMessage(m, time.Now()), handler, co.autoAck) //nolint:errcheck // nothing to retry on core NATS
		return nil
	})

	stop := func(cause error) error {
		drainErr := sub.Drain()
		close(inbox)
		wait()
		return errors.Join(cause, drainErr)
	}

	if err := n.subs.add(sub); err != nil {
		return stop(err)
	}
	defer n.subs.remove(sub)

	if err := n.conn.Flush(); err != nil {
		return stop(fmt.Errorf("messaging: nats flush: %w", err))
	}

	<-ctx.Done()
	return stop(ctx.Err())
}
