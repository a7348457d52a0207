package inbound

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/mailer/usecase"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/idempotency"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/messaging"
	"github.com/bridj/tripmailer/internal/pkg/router"
	"github.com/bridj/tripmailer/internal/pkg/uid"
	"github.com/bridj/tripmailer/internal/shared/event"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   ucSender
	uuid uid.StringID
	idem idempotency.Idempotency
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID := router.NormalizeCorrelationID(messaging.HeaderValue(headers, keyOfCorrelationID)); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) start(ctx context.Context, msg messaging.Message, name string) (context.Context, trace.Span) {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())
	ctx = otel.GetTextMapPropagator().Extract(ctx, messaging.HeaderCarrier(msg.Headers()))

	return h.ins.Tracer("mailer.inbound.mq").Start(ctx, name)
}

// sendOnce runs send at most once per kind and id. Send failures are logged and
// swallowed so the broker does not redeliver; only an idempotency store failure,
// where nothing was sent, is returned.
func (h *MQHandler) sendOnce(ctx context.Context, kind entity.Kind, id int64, send func(context.Context) error) error {
	key := "mailer:" + kind.String() + ":" + strconv.FormatInt(id, 10)

	var sendErr error
	run := func(ctx context.Context) error {
		sendErr = send(ctx)
		return sendErr
	}

	var err error
	if h.idem != nil {
		err = h.idem.Exec(ctx, key, run)
	} else {
		err = run(ctx)
	}

	switch {
	case sendErr != nil:
		switch goerror.CodeOf(sendErr) {
		case goerror.CodeNotFound, goerror.CodeInvalidInput:
			slog.WarnContext(ctx, "dropping undeliverable email event", "key", key, "error", sendErr)
		default:
			slog.ErrorContext(ctx, "failed to send email", "key", key, "error", sendErr)
		}
		return nil
	case idempotency.IsDuplicate(err):
		slog.InfoContext(ctx, "skipping duplicate email event", "key", key, "reason", err)
		return nil
	case err != nil:
		slog.ErrorContext(ctx, "failed to track email event", "key", key, "error", err)
		return err
	}

	return nil
}

func (h *MQHandler) BookingConfirmed(ctx context.Context, msg messaging.Message) error {
	ctx, span := h.start(ctx, msg, "BookingConfirmed")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: booking confirmed", "msg_body", string(body))

	var payload event.BookingConfirmedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of booking confirmed", "msg_body", string(body), "error", err)
		return nil
	}

	price, err := decimal.NewFromString(payload.Price)
	if err != nil {
		slog.ErrorContext(ctx, "invalid price in booking confirmed", "price", payload.Price, "error", err)
		return nil
	}

	return h.sendOnce(ctx, entity.KindBookingConfirmation, payload.BookingID, func(ctx context.Context) error {
		return h.uc.SendBookingConfirmation(ctx, usecase.BookingConfirmationInput{
			TravelerID: payload.TravelerID,
			BookingID:  payload.BookingID,
			Price:      price,
			Currency:   payload.Currency,
		})
	})
}

func (h *MQHandler) BookingCancelled(ctx context.Context, msg messaging.Message) error {
	ctx, span := h.start(ctx, msg, "BookingCancelled")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: booking cancelled", "msg_body", string(body))

	var payload event.BookingCancelledMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of booking cancelled", "msg_body", string(body), "error", err)
		return nil
	}

	return h.sendOnce(ctx, entity.KindBookingCancellation, payload.BookingID, func(ctx context.Context) error {
		return h.uc.SendBookingCancellation(ctx, usecase.BookingCancellationInput{BookingID: payload.BookingID})
	})
}

func (h *MQHandler) TravelerRegistered(ctx context.Context, msg messaging.Message) error {
	ctx, span := h.start(ctx, msg, "TravelerRegistered")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: traveler registered", "msg_body", string(body))

	var payload event.TravelerRegisteredMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of traveler registered", "msg_body", string(body), "error", err)
		return nil
	}

	return h.sendOnce(ctx, entity.KindWelcome, payload.TravelerID, func(ctx context.Context) error {
		return h.uc.SendWelcome(ctx, usecase.WelcomeInput{TravelerID: payload.TravelerID})
	})
}
