package inbound

import (
	"context"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/mailer/usecase"
)

type ucSender interface {
	SendBookingConfirmation(ctx context.Context, in usecase.BookingConfirmationInput) error
	SendBookingCancellation(ctx context.Context, in usecase.BookingCancellationInput) error
	SendWelcome(ctx context.Context, in usecase.WelcomeInput) error
}

type uc interface {
	ucSender

	Preview(ctx context.Context, in usecase.PreviewInput) (*entity.Composition, error)
}
