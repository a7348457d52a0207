package app

import "github.com/bridj/tripmailer/internal/mailer"

// initModules mounts the mailer routes and, with a broker configured, its
// event consumers. modules.mailer.enabled=false leaves only /health.
func (a *App) initModules() {
	if !a.config.GetBool("modules.mailer.enabled") {
		return
	}

	err := mailer.New(mailer.Dependency{
		Ctx:         a.ctx,
		DBConn:      a.dbConn,
		Messaging:   a.messaging,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Goroutine:   a.goroutine,
		Validator:   a.validator,
		Router:      a.router,
		Mailer:      a.mailer,
		Translator:  a.translator,
		Idempotency: a.idemp,
	})
	if err != nil {
		fatal("failed to init module mailer", err)
	}
}
