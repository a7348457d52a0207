package mailer

import (
	"context"

	"github.com/bridj/tripmailer/internal/mailer/inbound"
	"github.com/bridj/tripmailer/internal/mailer/outbound/db"
	"github.com/bridj/tripmailer/internal/mailer/outbound/email"
	"github.com/bridj/tripmailer/internal/mailer/usecase"
	"github.com/bridj/tripmailer/internal/pkg/config"
	"github.com/bridj/tripmailer/internal/pkg/goroutine"
	"github.com/bridj/tripmailer/internal/pkg/i18n"
	"github.com/bridj/tripmailer/internal/pkg/idempotency"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/mail"
	"github.com/bridj/tripmailer/internal/pkg/messaging"
	"github.com/bridj/tripmailer/internal/pkg/router"
	"github.com/bridj/tripmailer/internal/pkg/uid"
	"github.com/bridj/tripmailer/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependency struct {
	Ctx         context.Context
	DBConn      *pgxpool.Pool
	Messaging   messaging.Messaging
	Config      config.Config
	Instrument  instrument.Instrumentation
	UUID        uid.StringID
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Router      *router.Router
	Mailer      mail.Mailer
	Translator  i18n.Translator
	Idempotency idempotency.Idempotency
}

func New(dep Dependency) error {
	dbMailer := db.NewDB(dep.DBConn, dep.Instrument)

	repoMail, err := email.New(dep.Mailer, dep.Translator, dep.Config.GetString("mail.from"), dep.Instrument)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbMailer,
		RepoMail:   repoMail,
		Translator: dep.Translator,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)
	if dep.Ctx != nil && dep.Messaging != nil {
		inbound.RegisterMQConsumer(dep.Ctx, inbound.MQDependency{
			Config:      dep.Config,
			Goroutine:   dep.Goroutine,
			Messaging:   dep.Messaging,
			UUID:        dep.UUID,
			Idempotency: dep.Idempotency,
			Instrument:  dep.Instrument,
		}, uc)
	}

	return nil
}
