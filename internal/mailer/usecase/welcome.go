package usecase

import (
	"context"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
)

type WelcomeInput struct {
	TravelerID int64 `validate:"required,gt=0"`
}

func (s *Usecase) ComposeWelcome(ctx context.Context, in WelcomeInput) (*entity.Composition, error) {
	ctx, span := s.startSpan(ctx, "ComposeWelcome")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	traveler, err := s.getTraveler(ctx, in.TravelerID)
	if err != nil {
		return nil, err
	}

	vars := map[string]string{
		entity.VarFirstName: traveler.FirstName,
		entity.VarLastName:  traveler.LastName,
	}

	return s.composition(entity.KindWelcome, traveler.RegisteringApp, traveler, vars)
}

func (s *Usecase) SendWelcome(ctx context.Context, in WelcomeInput) error {
	ctx, span := s.startSpan(ctx, "SendWelcome")
	defer span.End()

	c, err := s.ComposeWelcome(ctx, in)
	if err != nil {
		return err
	}

	return s.send(ctx, c)
}
