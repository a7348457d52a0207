package usecase

import (
	"context"
	"strings"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/shopspring/decimal"
)

// BookingConfirmationInput carries the price actually charged, which may differ from the
// booking's stored price.
type BookingConfirmationInput struct {
	TravelerID int64 `validate:"required,gt=0"`
	BookingID  int64 `validate:"required,gt=0"`
	Price      decimal.Decimal
	Currency   string `validate:"required,max=8"`
}

func (s *Usecase) ComposeBookingConfirmation(ctx context.Context, in BookingConfirmationInput) (*entity.Composition, error) {
	ctx, span := s.startSpan(ctx, "ComposeBookingConfirmation")
	defer span.End()

	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	traveler, err := s.getTraveler(ctx, in.TravelerID)
	if err != nil {
		return nil, err
	}

	booking, err := s.getBooking(ctx, in.BookingID)
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
	vars[entity.VarTripPrice] = FormatPrice(in.Price, in.Currency)
	vars[entity.VarPaymentMethod] = FormatPaymentMethod(booking.PaymentMethod)

	return s.composition(entity.KindBookingConfirmation, traveler.RegisteringApp, traveler, vars)
}

func (s *Usecase) SendBookingConfirmation(ctx context.Context, in BookingConfirmationInput) error {
	ctx, span := s.startSpan(ctx, "SendBookingConfirmation")
	defer span.End()

	c, err := s.ComposeBookingConfirmation(ctx, in)
	if err != nil {
		return err
	}

	return s.send(ctx, c)
}
