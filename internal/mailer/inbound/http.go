package inbound

import (
	"github.com/bridj/tripmailer/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/mailer/booking-confirmation", end.SendBookingConfirmation)
	r.POST("/api/v1/mailer/booking-cancellation", end.SendBookingCancellation)
	r.POST("/api/v1/mailer/welcome", end.SendWelcome)
	r.POST("/api/v1/mailer/preview/:kind", end.Preview)
}
