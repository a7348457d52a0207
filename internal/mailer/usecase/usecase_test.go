package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/i18n"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepoDB struct {
	mock.Mock
}

func (m *mockRepoDB) GetTraveler(ctx context.Context, id int64) (*entity.Traveler, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*entity.Traveler)
	return v, args.Error(1)
}

func (m *mockRepoDB) GetBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*entity.Booking)
	return v, args.Error(1)
}

func (m *mockRepoDB) GetZone(ctx context.Context, id int64) (*entity.Zone, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*entity.Zone)
	return v, args.Error(1)
}

func (m *mockRepoDB) GetLocation(ctx context.Context, id int64) (*entity.Location, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*entity.Location)
	return v, args.Error(1)
}

type mockRepoMail struct {
	mock.Mock
}

func (m *mockRepoMail) SendEmail(ctx context.Context, email, name, template, subjectKey string, vars map[string]string) error {
	return m.Called(ctx, email, name, template, subjectKey, vars).Error(0)
}

type fixture struct {
	uc   *Usecase
	db   *mockRepoDB
	mail *mockRepoMail
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	catalog, err := i18n.New(i18n.Options{})
	require.NoError(t, err)

	v, err := validator.NewV10Validator(entity.Brands()...)
	require.NoError(t, err)

	f := fixture{db: new(mockRepoDB), mail: new(mockRepoMail)}
	f.uc = New(Dependency{
		RepoDB:     f.db,
		RepoMail:   f.mail,
		Translator: catalog,
		Validator:  v,
		Instrument: instrument.NewNoop(),
	})

	return f
}

func donald(app entity.Brand) *entity.Traveler {
	return &entity.Traveler{ID: 1, FirstName: "Donald", LastName: "Duck", Email: "donald@disney.com", RegisteringApp: app}
}

func brisbaneBooking() *entity.Booking {
	return &entity.Booking{
		ID:                10,
		TravelerID:        1,
		ZoneID:            20,
		OriginID:          30,
		Price:             decimal.RequireFromString("3.0"),
		PaymentMethod:     "CASH",
		CreatedAt:         time.Date(2021, time.January, 23, 0, 0, 0, 0, time.UTC),
		PickupScheduledAt: time.Date(2021, time.January, 28, 4, 30, 0, 0, time.UTC),
	}
}

func brisbaneZone() *entity.Zone {
	return &entity.Zone{ID: 20, Name: "Test Zone", Currency: "AUD", TimeZone: "Australia/Brisbane"}
}

func westEnd() *entity.Location {
	return &entity.Location{ID: 30, ZoneID: 20, Name: "60 Bristol Street, Hill End, West End"}
}

func (f fixture) expectBookingLookups(traveler *entity.Traveler) {
	f.db.On("GetTraveler", mock.Anything, int64(1)).Return(traveler, nil)
	f.db.On("GetBooking", mock.Anything, int64(10)).Return(brisbaneBooking(), nil)
	f.db.On("GetZone", mock.Anything, int64(20)).Return(brisbaneZone(), nil)
	f.db.On("GetLocation", mock.Anything, int64(30)).Return(westEnd(), nil)
}

func TestUsecase_ComposeBookingConfirmation(t *testing.T) {
	in := BookingConfirmationInput{TravelerID: 1, BookingID: 10, Price: decimal.RequireFromString("1.5"), Currency: "AUD"}

	t.Run("default brand in zone time", func(t *testing.T) {
		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandBridj))

		got, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, entity.KindBookingConfirmation, got.Kind)
		assert.Equal(t, "admin-booking-success-au", got.Template)
		assert.Equal(t, "user_mailer.booking_success_subject", got.SubjectKey)
		assert.Equal(t, entity.Recipient{Email: "donald@disney.com", Name: "Donald"}, got.Recipient)
		assert.Equal(t, map[string]string{
			"FNAME":          "Donald",
			"LNAME":          "Duck",
			"ORIGIN":         "60 Bristol Street, Hill End, West End",
			"TRIP_PRICE":     "$1.50",
			"DATE":           "Thu 28/01",
			"TIME":           "14:30 AEST",
			"BOOKING_DATE":   "23 Jan 2021 10:00 AEST",
			"PAYMENT_METHOD": "Cash",
		}, got.Vars)
	})

	t.Run("jbird switches template and subject only", func(t *testing.T) {
		def := newFixture(t)
		def.expectBookingLookups(donald(entity.BrandBridj))
		want, err := def.uc.ComposeBookingConfirmation(context.Background(), in)
		require.NoError(t, err)

		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandJBird))
		got, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, "jbird-booking-confirmed-au", got.Template)
		assert.Equal(t, "jbird_mailer.booking_success_subject", got.SubjectKey)
		assert.Equal(t, want.Vars, got.Vars)
		assert.Equal(t, want.Recipient, got.Recipient)
	})

	t.Run("uses supplied price not stored price", func(t *testing.T) {
		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandBridj))

		got, err := f.uc.ComposeBookingConfirmation(context.Background(), BookingConfirmationInput{
			TravelerID: 1, BookingID: 10, Price: decimal.RequireFromString("2.25"), Currency: "nzd",
		})
		require.NoError(t, err)
		assert.Equal(t, "NZD2.25", got.Vars["TRIP_PRICE"])
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.ComposeBookingConfirmation(context.Background(), BookingConfirmationInput{})
		assert.Equal(t, goerror.CodeInvalidInput, goerror.CodeOf(err))
		f.db.AssertNotCalled(t, "GetTraveler", mock.Anything, mock.Anything)
	})

	t.Run("traveler not found", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(nil, goerror.ErrNotFound)

		_, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
		assert.EqualError(t, err, "traveler not found")
	})

	t.Run("booking not found", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)
		f.db.On("GetBooking", mock.Anything, int64(10)).Return(nil, goerror.ErrNotFound)

		_, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t)
		dbErr := errors.New("connection reset")
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(nil, dbErr)

		_, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("invalid zone time zone", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)
		f.db.On("GetBooking", mock.Anything, int64(10)).Return(brisbaneBooking(), nil)
		f.db.On("GetZone", mock.Anything, int64(20)).Return(&entity.Zone{ID: 20, Currency: "AUD", TimeZone: "Mars/Olympus"}, nil)

		_, err := f.uc.ComposeBookingConfirmation(context.Background(), in)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
	})
}

func TestUsecase_ComposeBookingCancellation(t *testing.T) {
	in := BookingCancellationInput{BookingID: 10}

	t.Run("prices from booking and omits payment method", func(t *testing.T) {
		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandBridj))

		got, err := f.uc.ComposeBookingCancellation(context.Background(), in)
		require.NoError(t, err)

		assert.Equal(t, "admin-booking-cancel-au", got.Template)
		assert.Equal(t, "user_mailer.cancelled_booking_subject", got.SubjectKey)
		assert.Equal(t, "$3.00", got.Vars["TRIP_PRICE"])
		assert.Equal(t, "Thu 28/01", got.Vars["DATE"])
		assert.Equal(t, "14:30 AEST", got.Vars["TIME"])
		assert.Equal(t, "23 Jan 2021 10:00 AEST", got.Vars["BOOKING_DATE"])
		assert.NotContains(t, got.Vars, "PAYMENT_METHOD")
		assert.Equal(t, []string{"BOOKING_DATE", "DATE", "FNAME", "LNAME", "ORIGIN", "TIME", "TRIP_PRICE"}, got.VarNames())
	})

	t.Run("jbird", func(t *testing.T) {
		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandJBird))

		got, err := f.uc.ComposeBookingCancellation(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, "jbird-booking-cancelled-au", got.Template)
		assert.Equal(t, "jbird_mailer.cancelled_booking_subject", got.SubjectKey)
	})

	t.Run("origin not found", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetBooking", mock.Anything, int64(10)).Return(brisbaneBooking(), nil)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)
		f.db.On("GetZone", mock.Anything, int64(20)).Return(brisbaneZone(), nil)
		f.db.On("GetLocation", mock.Anything, int64(30)).Return(nil, goerror.ErrNotFound)

		_, err := f.uc.ComposeBookingCancellation(context.Background(), in)
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
		assert.EqualError(t, err, "location not found")
	})
}

func TestUsecase_ComposeWelcome(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)

		got, err := f.uc.ComposeWelcome(context.Background(), WelcomeInput{TravelerID: 1})
		require.NoError(t, err)
		assert.Equal(t, "admin-welcome-email-au", got.Template)
		assert.Equal(t, "user_mailer.send_welcome_email_subject", got.SubjectKey)
		assert.Equal(t, map[string]string{"FNAME": "Donald", "LNAME": "Duck"}, got.Vars)
	})

	t.Run("jbird", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandJBird), nil)

		got, err := f.uc.ComposeWelcome(context.Background(), WelcomeInput{TravelerID: 1})
		require.NoError(t, err)
		assert.Equal(t, "jbird-welcome-au", got.Template)
		assert.Equal(t, "jbird_mailer.send_welcome_email_subject", got.SubjectKey)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(nil, goerror.ErrNotFound)

		_, err := f.uc.ComposeWelcome(context.Background(), WelcomeInput{TravelerID: 1})
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
	})
}

func TestUsecase_Send(t *testing.T) {
	t.Run("welcome hands composition to gateway", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)
		f.mail.On("SendEmail", mock.Anything, "donald@disney.com", "Donald", "admin-welcome-email-au",
			"user_mailer.send_welcome_email_subject", map[string]string{"FNAME": "Donald", "LNAME": "Duck"}).Return(nil)

		require.NoError(t, f.uc.SendWelcome(context.Background(), WelcomeInput{TravelerID: 1}))
		f.mail.AssertExpectations(t)
	})

	t.Run("gateway error propagates unchanged", func(t *testing.T) {
		f := newFixture(t)
		f.expectBookingLookups(donald(entity.BrandBridj))
		sendErr := goerror.NewUpstream(errors.New("503"), "email provider unavailable")
		f.mail.On("SendEmail", mock.Anything, "donald@disney.com", "Donald", "admin-booking-cancel-au",
			"user_mailer.cancelled_booking_subject", mock.Anything).Return(sendErr)

		err := f.uc.SendBookingCancellation(context.Background(), BookingCancellationInput{BookingID: 10})
		assert.Equal(t, sendErr, err)
	})

	t.Run("compose error skips gateway", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(nil, goerror.ErrNotFound)

		err := f.uc.SendBookingConfirmation(context.Background(), BookingConfirmationInput{
			TravelerID: 1, BookingID: 10, Price: decimal.NewFromInt(1), Currency: "AUD",
		})
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
		f.mail.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUsecase_Preview(t *testing.T) {
	t.Run("brand override", func(t *testing.T) {
		f := newFixture(t)
		f.db.On("GetTraveler", mock.Anything, int64(1)).Return(donald(entity.BrandBridj), nil)

		got, err := f.uc.Preview(context.Background(), PreviewInput{Kind: entity.KindWelcome, TravelerID: 1, Brand: "jbird"})
		require.NoError(t, err)
		assert.Equal(t, "jbird-welcome-au", got.Template)
		assert.Equal(t, "jbird_mailer.send_welcome_email_subject", got.SubjectKey)
		f.mail.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown brand rejected", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Preview(context.Background(), PreviewInput{Kind: entity.KindWelcome, TravelerID: 1, Brand: "acme"})
		assert.Equal(t, goerror.CodeInvalidInput, goerror.CodeOf(err))
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Preview(context.Background(), PreviewInput{Kind: entity.Kind("refund"), TravelerID: 1})
		assert.Equal(t, goerror.CodeNotFound, goerror.CodeOf(err))
	})
}
