package messaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DriverNATS  = "nats"
	DriverKafka = "kafka"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the settings of every driver; only the selected one is read.
type FactoryOptions struct {
	Kafka KafkaConfig
	NATS  NATSConfig
}

// NewFromDriver builds the client named by messaging.driver, ignoring case
// and surrounding spaces.
func NewFromDriver(driver string, opts FactoryOptions) (Messaging, error) {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case DriverKafka:
		return NewKafka(opts.Kafka)
	case DriverNATS:
		return NewNATS(opts.NATS)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// ConsumeOption tunes a single Consume call. Options that do not apply to
// the selected driver are ignored.
type ConsumeOption func(*consumeOptions)

type consumeOptions struct {
	concurrency int
	autoAck     bool
	group       string // kafka consumer group
	queueGroup  string // nats queue group
}

func newConsumeOptions(opts ...ConsumeOption) consumeOptions {
	var co consumeOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&co)
		}
	}
	return co
}

// WithConcurrency sets how many messages are handled at once. Values below one mean one.
func WithConcurrency(n int) ConsumeOption { return func(o *consumeOptions) { o.concurrency = n } }

func WithGroup(group string) ConsumeOption { return func(o *consumeOptions) { o.group = group } }

func WithQueueGroup(group string) ConsumeOption {
	return func(o *consumeOptions) { o.queueGroup = group }
}

// WithAutoAck acks after a nil handler error and nacks after any other,
// unless the handler already responded itself.
func WithAutoAck(on bool) ConsumeOption { return func(o *consumeOptions) { o.autoAck = on } }
