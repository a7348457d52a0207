package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/i18n"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetTraveler(ctx context.Context, id int64) (*entity.Traveler, error)
	GetBooking(ctx context.Context, id int64) (*entity.Booking, error)
	GetZone(ctx context.Context, id int64) (*entity.Zone, error)
	GetLocation(ctx context.Context, id int64) (*entity.Location, error)
}

type repoMail interface {
	SendEmail(ctx context.Context, email, name, template, subjectKey string, vars map[string]string) error
}

type Usecase struct {
	repoDB     repoDB
	repoMail   repoMail
	translator i18n.Translator
	validator  validator.Validator
	ins        instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	RepoMail   repoMail
	Translator i18n.Translator
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:     dep.RepoDB,
		repoMail:   dep.RepoMail,
		translator: dep.Translator,
		validator:  dep.Validator,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("mailer.usecase").Start(ctx, name)
}

// lookupError turns a repository error into the error returned to callers.
func (s *Usecase) lookupError(ctx context.Context, record string, id int64, err error) error {
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, record+" not found", record+"_id", id)
		return goerror.NewBusiness(record+" not found", goerror.CodeNotFound)
	}

	slog.ErrorContext(ctx, "failed to repo get "+record, record+"_id", id, "error", err)
	return goerror.NewServer(err)
}

func (s *Usecase) getTraveler(ctx context.Context, id int64) (*entity.Traveler, error) {
	traveler, err := s.repoDB.GetTraveler(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, "traveler", id, err)
	}

	return traveler, nil
}

func (s *Usecase) getBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	booking, err := s.repoDB.GetBooking(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, "booking", id, err)
	}

	return booking, nil
}

func (s *Usecase) getZone(ctx context.Context, id int64) (*entity.Zone, error) {
	zone, err := s.repoDB.GetZone(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, "zone", id, err)
	}

	return zone, nil
}

func (s *Usecase) getLocation(ctx context.Context, id int64) (*entity.Location, error) {
	location, err := s.repoDB.GetLocation(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, "location", id, err)
	}

	return location, nil
}

// tripVars builds the variables shared by booking emails. Times are shown in the zone's
// time zone.
func (s *Usecase) tripVars(ctx context.Context, traveler *entity.Traveler, booking *entity.Booking, zone *entity.Zone) (map[string]string, error) {
	loc, err := time.LoadLocation(zone.TimeZone)
	if err != nil {
		slog.ErrorContext(ctx, "invalid zone time zone", "zone_id", zone.ID, "time_zone", zone.TimeZone, "error", err)
		return nil, goerror.NewServer(err)
	}

	origin, err := s.getLocation(ctx, booking.OriginID)
	if err != nil {
		return nil, err
	}

	travelTime := booking.PickupScheduledAt.In(loc)
	bookingTime := booking.CreatedAt.In(loc)

	vars := map[string]string{
		entity.VarFirstName: traveler.FirstName,
		entity.VarLastName:  traveler.LastName,
		entity.VarOrigin:    origin.Name,
	}

	for name, lv := range map[string]struct {
		t      time.Time
		format string
	}{
		entity.VarDate:        {t: travelTime, format: entity.FormatTripList},
		entity.VarTime:        {t: travelTime, format: entity.FormatTimeOnly},
		entity.VarBookingDate: {t: bookingTime, format: entity.FormatDateAndTime},
	} {
		vars[name], err = s.translator.Localize(lv.t, lv.format)
		if err != nil {
			slog.ErrorContext(ctx, "failed to localize time", "format", lv.format, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	return vars, nil
}

func (s *Usecase) composition(kind entity.Kind, brand entity.Brand, traveler *entity.Traveler, vars map[string]string) (*entity.Composition, error) {
	variant, ok := entity.VariantFor(kind, brand)
	if !ok {
		return nil, goerror.NewServer(errors.New("no email variant for kind " + kind.String()))
	}

	return &entity.Composition{
		Kind:       kind,
		Template:   variant.Template,
		SubjectKey: variant.SubjectKey,
		Vars:       vars,
		Recipient: entity.Recipient{
			Email: traveler.Email,
			Name:  traveler.FirstName,
		},
	}, nil
}

func (s *Usecase) send(ctx context.Context, c *entity.Composition) error {
	return s.repoMail.SendEmail(ctx, c.Recipient.Email, c.Recipient.Name, c.Template, c.SubjectKey, c.Vars)
}
