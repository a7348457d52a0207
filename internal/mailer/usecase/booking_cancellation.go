package usecase

import (
	"context"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
)

type BookingCancellationInput struct {
	BookingID int64 `validate:"required,gt=0"`
}

// ComposeBookingCancellation prices the email from the booking and its zone's currency.
// It carries no payment method.
func (s *Usecase) ComposeBookingCancellation(ctx context.Context, in BookingCancellationInput) (*entity.Composition, error) {
	ctx, span := s.startSpan(ctx, "ComposeBookingCancellation")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	booking, err := s.getBooking(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}

	traveler, err := s.getTraveler(ctx, booking.TravelerID)
	if err != nil {
		return nil, err
	}

	zone, err := s.getZone(ctx, booking.ZoneID)
	if err != nil {
		return nil, err
	}

	vars, err := s.tripVars(ctx, traveler, booking, zone)
	if err != nil {
		return nil, err
	}
	vars[entity.VarTripPrice] = FormatPrice(booking.Price, zone.Currency)

	return s.composition(entity.KindBookingCancellation, traveler.RegisteringApp, traveler, vars)
}

func (s *Usecase) SendBookingCancellation(ctx context.Context, in BookingCancellationInput) error {
	ctx, span := s.startSpan(ctx, "SendBookingCancellation")
	defer span.End()

	c, err := s.ComposeBookingCancellation(ctx, in)
	if err != nil {
		return err
	}

	return s.send(ctx, c)
}
