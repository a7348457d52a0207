package email

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"

	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/mail"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type subjects interface {
	Translate(key string) (string, error)
}

// Mail sends composed emails through the provider.
type Mail struct {
	client   mail.Mailer
	subjects subjects
	from     string
	ins      instrument.Instrumentation
	sent     metric.Int64Counter
}

func New(client mail.Mailer, subjects subjects, from string, ins instrument.Instrumentation) (*Mail, error) {
	sent, err := ins.Meter("mailer.outbound.email").Int64Counter("mailer.email.sent",
		metric.WithDescription("Number of template emails handed to the provider"))
	if err != nil {
		return nil, err
	}

	return &Mail{client: client, subjects: subjects, from: from, ins: ins, sent: sent}, nil
}

func (m *Mail) SendEmail(ctx context.Context, email, name, template, subjectKey string, vars map[string]string) (err error) {
	ctx, span := m.ins.Tracer("mailer.outbound.email").Start(ctx, "SendEmail")
	defer func() {
		outcome := "sent"
		if err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		m.sent.Add(ctx, 1, metric.WithAttributes(
			attribute.String("template", template),
			attribute.String("outcome", outcome),
		))
		span.End()
	}()

	subject, err := m.subjects.Translate(subjectKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to translate email subject", "subject_key", subjectKey, "error", err)
		return goerror.NewServer(err)
	}

	msg := mail.TemplateMessage{
		Template:  template,
		Subject:   subject,
		From:      m.from,
		To:        []mail.Recipient{{Email: email, Name: name}},
		Vars:      make([]mail.Var, 0, len(vars)),
		InlineCSS: true,
	}
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		msg.Vars = append(msg.Vars, mail.Var{Name: k, Content: vars[k]})
	}

	results, err := m.client.SendTemplate(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send template email", "template", template, "error", err)

		var perr *mail.ProviderError
		switch {
		case errors.Is(err, mail.ErrRecipientRejected):
			return goerror.NewUpstream(err, "Email recipient rejected")
		case errors.As(err, &perr):
			return goerror.NewUpstream(err, "Email provider error")
		default:
			return goerror.NewUpstream(err, "Email provider unavailable")
		}
	}

	for _, r := range results {
		slog.InfoContext(ctx, "template email accepted", "template", template, "status", r.Status, "message_id", r.ID)
	}

	return nil
}
