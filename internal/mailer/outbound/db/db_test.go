package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestMapError(t *testing.T) {
	other := errors.New("boom")

	assert.NoError(t, mapError(nil))
	assert.ErrorIs(t, mapError(pgx.ErrNoRows), goerror.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}), goerror.ErrConflict)
	assert.Equal(t, other, mapError(other))
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *string:
			*p = r.values[i].(string)
		}
	}
	return nil
}

type fakeQuerier struct{ row fakeRow }

func (q fakeQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return q.row }

func TestGetOne(t *testing.T) {
	ctx := context.Background()

	t.Run("Scanned", func(t *testing.T) {
		s := NewDB(fakeQuerier{row: fakeRow{values: []any{int64(3), int64(1), "Central"}}}, instrument.NewNoop())

		got, err := s.GetLocation(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, &entity.Location{ID: 3, ZoneID: 1, Name: "Central"}, got)
	})

	t.Run("BrandNormalized", func(t *testing.T) {
		s := NewDB(fakeQuerier{row: fakeRow{values: []any{int64(7), "Ada", "Lovelace", "ada@example.com", "JBird"}}}, instrument.NewNoop())

		got, err := s.GetTraveler(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, entity.BrandJBird, got.RegisteringApp)
	})

	t.Run("NoRows", func(t *testing.T) {
		s := NewDB(fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}}, instrument.NewNoop())

		got, err := s.GetZone(ctx, 9)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}

func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tripmailer"),
		tcpostgres.WithUsername("tripmailer"),
		tcpostgres.WithPassword("tripmailer"),
		tcpostgres.WithInitScripts("../../../../migrations/0001_init.sql"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

const seed = `
INSERT INTO zones (id, name, currency, time_zone) VALUES (1, 'Test Zone', 'AUD', 'Australia/Brisbane');
INSERT INTO locations (id, zone_id, name) VALUES (1, 1, '60 Bristol Street, Hill End, West End');
INSERT INTO travelers (id, first_name, last_name, email, registering_app) VALUES
  (1, 'Donald', 'Duck', 'donald@disney.com', 'default'),
  (2, 'Daisy', 'Duck', 'daisy@disney.com', 'jbird');
INSERT INTO bookings (id, traveler_id, zone_id, origin_id, price, payment_method, pickup_scheduled_at, created_at)
VALUES (1, 1, 1, 1, 3.0, 'CASH', '2021-01-28 04:30:00+00', '2021-01-23 00:00:00+00');
`

func TestDB_Lookups(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	pool := newPool(t)
	ctx := context.Background()
	_, err := pool.Exec(ctx, seed)
	require.NoError(t, err)

	s := NewDB(pool, instrument.NewNoop())

	t.Run("GetTraveler", func(t *testing.T) {
		got, err := s.GetTraveler(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &entity.Traveler{
			ID:             1,
			FirstName:      "Donald",
			LastName:       "Duck",
			Email:          "donald@disney.com",
			RegisteringApp: entity.BrandBridj,
		}, got)

		got, err = s.GetTraveler(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, entity.BrandJBird, got.RegisteringApp)
	})

	t.Run("GetBooking", func(t *testing.T) {
		got, err := s.GetBooking(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.TravelerID)
		assert.Equal(t, int64(1), got.ZoneID)
		assert.Equal(t, int64(1), got.OriginID)
		assert.True(t, decimal.RequireFromString("3.00").Equal(got.Price))
		assert.Equal(t, "CASH", got.PaymentMethod)
		assert.True(t, got.CreatedAt.Equal(time.Date(2021, 1, 23, 0, 0, 0, 0, time.UTC)))
		assert.True(t, got.PickupScheduledAt.Equal(time.Date(2021, 1, 28, 4, 30, 0, 0, time.UTC)))
	})

	t.Run("GetZone", func(t *testing.T) {
		got, err := s.GetZone(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &entity.Zone{ID: 1, Name: "Test Zone", Currency: "AUD", TimeZone: "Australia/Brisbane"}, got)
	})

	t.Run("GetLocation", func(t *testing.T) {
		got, err := s.GetLocation(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "60 Bristol Street, Hill End, West End", got.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.GetTraveler(ctx, 404)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = s.GetBooking(ctx, 404)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = s.GetZone(ctx, 404)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = s.GetLocation(ctx, 404)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}
