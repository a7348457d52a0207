// Package app builds the trip mailer process: config, telemetry, the
// Postgres/Redis/mail/broker clients, the HTTP server and the mailer module.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"

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
	"github.com/redis/go-redis/v9"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	goroutine  *goroutine.Manager
	validator  validator.Validator
	uuid       uid.StringID
	translator i18n.Translator

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mailer    mail.Mailer
	messaging messaging.Messaging

	router     *router.Router
	httpServer *http.Server

	// closers run last-registered first on Stop.
	closers []closer
}

// New builds every dependency in order and exits the process on the first failure.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	for _, step := range []func(){
		a.initConfig,
		a.initInstrument,
		a.initLibraries,
		a.initDatabase,
		a.initCache,
		a.initMail,
		a.initMessaging,
		a.initHTTPServer,
		a.initModules,
	} {
		step()
	}

	return a
}

func (a *App) onClose(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// fatal logs err and exits. Only used while the process is starting.
func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append([]any{"error", err}, args...)...)
	os.Exit(1)
}
