package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bridj/tripmailer/internal/pkg/config"
	"github.com/bridj/tripmailer/internal/pkg/goroutine"
	"github.com/bridj/tripmailer/internal/pkg/idempotency"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/messaging"
	"github.com/bridj/tripmailer/internal/pkg/uid"
	"github.com/bridj/tripmailer/internal/shared/event"
)

type MQDependency struct {
	Config      config.Config
	Goroutine   *goroutine.Manager
	Messaging   messaging.Messaging
	UUID        uid.StringID
	Idempotency idempotency.Idempotency
	Instrument  instrument.Instrumentation
}

func RegisterMQConsumer(ctx context.Context, dep MQDependency, uc ucSender) {
	mqHandler := &MQHandler{uc: uc, uuid: dep.UUID, idem: dep.Idempotency, ins: dep.Instrument}

	enableConsumerNames := dep.Config.GetArray("modules.mailer.consumer_names")
	concurrency := dep.Config.GetInt("modules.mailer.consumer_concurrency")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		handler messaging.Handler
	}{
		{
			name:    event.BookingConfirmedConsumerMailer,
			topic:   event.BookingConfirmedDestination,
			handler: mqHandler.BookingConfirmed,
		},
		{
			name:    event.BookingCancelledConsumerMailer,
			topic:   event.BookingCancelledDestination,
			handler: mqHandler.BookingCancelled,
		},
		{
			name:    event.TravelerRegisteredConsumerMailer,
			topic:   event.TravelerRegisteredDestination,
			handler: mqHandler.TravelerRegistered,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		err := dep.Goroutine.Go(ctx, "consumer:"+consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return dep.Messaging.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithQueueGroup(consumer.name),
				messaging.WithGroup(consumer.name),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
			)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name, "error", err)
		}
	}
}
