package app

import (
	"cmp"
	"context"
	"net/http"
	"os"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/config"
	"github.com/bridj/tripmailer/internal/pkg/goroutine"
	"github.com/bridj/tripmailer/internal/pkg/i18n"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/router"
	"github.com/bridj/tripmailer/internal/pkg/uid"
	"github.com/bridj/tripmailer/internal/pkg/validator"
	"github.com/rs/cors"
)

// configPath resolves CONFIG_PATH, falling back to the container mount or,
// with LOCAL=true, the repository copy.
func configPath() string {
	if os.Getenv("LOCAL") == "true" {
		return cmp.Or(os.Getenv("CONFIG_PATH"), "./config/config.yaml")
	}
	return cmp.Or(os.Getenv("CONFIG_PATH"), "/config/config.yaml")
}

func (a *App) initConfig() {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		fatal("failed to init config", err)
	}

	a.config = cfg
	a.onClose("Config", func(context.Context) error { return cfg.Close() })
}

func (a *App) initInstrument() {
	c := a.config
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          c.GetBool("instrument.enabled"),
		ServiceName:      c.GetString("instrument.service_name"),
		ServiceVersion:   c.GetString("instrument.service_version"),
		Environment:      c.GetString("instrument.env"),
		OTLPEndpoint:     c.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       c.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: c.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  c.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       c.GetArray("instrument.log_mask_fields"),
		LogLevel:         c.GetString("instrument.log_level"),
	})
	if err != nil {
		fatal("failed to init instrumentation", err)
	}

	a.ins = ins
	a.onClose("Instrument", ins.Shutdown)
}

// initLibraries builds the stateless helpers: ID generator, goroutine
// manager, validator (aware of the known brands) and the subject catalog.
func (a *App) initLibraries() {
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	v, err := validator.NewV10Validator(entity.Brands()...)
	if err != nil {
		fatal("failed to init validator", err)
	}
	a.validator = v

	catalog, err := i18n.New(i18n.Options{
		Locale: a.config.GetString("locale.default"),
		Path:   a.config.GetString("locale.path"),
	})
	if err != nil {
		fatal("failed to init locale catalog", err, "path", a.config.GetString("locale.path"))
	}
	a.translator = catalog
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	a.router.RegisterHealth(a.config.GetSecond("app.server.health_timeout_seconds"),
		router.HealthCheck{Name: "database", Check: a.dbConn.Ping},
		router.HealthCheck{Name: "redis", Check: func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() }},
	)

	handler := cors.New(cors.Options{
		AllowedOrigins:   a.config.GetArray("app.server.cors"),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	const prefix = "app.server.http."
	a.httpServer = &http.Server{
		Addr:              a.config.GetString(prefix + "address"),
		Handler:           handler,
		ReadTimeout:       a.config.GetSecond(prefix + "read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond(prefix + "read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond(prefix + "write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond(prefix + "idle_timeout_seconds"),
	}
}
