package main

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/bridj/tripmailer/internal/app"
)

const shutdownGrace = 10 * time.Second

// @title           Trip Mailer API
// @version         1.0
// @description     Sends booking confirmation, booking cancellation and welcome emails through the transactional email provider.
// @server          http://localhost:8080
func main() {
	a := app.New()
	<-a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	a.Stop(ctx)
}
