package usecase

import (
	"context"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/shopspring/decimal"
)

// PreviewInput selects the email to compose. Brand, when set, overrides the traveler's
// registering app.
type PreviewInput struct {
	Kind       entity.Kind
	TravelerID int64
	BookingID  int64
	Price      decimal.Decimal
	Currency   string
	Brand      string `validate:"omitempty,brand"`
}

// Preview composes an email without sending it.
func (s *Usecase) Preview(ctx context.Context, in PreviewInput) (*entity.Composition, error) {
	ctx, span := s.startSpan(ctx, "Preview")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var (
		c   *entity.Composition
		err error
	)
	switch in.Kind {
	case entity.KindBookingConfirmation:
		c, err = s.ComposeBookingConfirmation(ctx, BookingConfirmationInput{
			TravelerID: in.TravelerID,
			BookingID:  in.BookingID,
			Price:      in.Price,
			Currency:   in.Currency,
		})
	case entity.KindBookingCancellation:
		c, err = s.ComposeBookingCancellation(ctx, BookingCancellationInput{BookingID: in.BookingID})
	case entity.KindWelcome:
		c, err = s.ComposeWelcome(ctx, WelcomeInput{TravelerID: in.TravelerID})
	default:
		return nil, goerror.NewBusiness("unknown email kind", goerror.CodeNotFound)
	}
	if err != nil {
		return nil, err
	}

	if in.Brand != "" {
		variant, _ := entity.VariantFor(c.Kind, entity.BrandFromString(in.Brand))
		c.Template = variant.Template
		c.SubjectKey = variant.SubjectKey
	}

	return c, nil
}
