package db

import (
	"context"
	"fmt"

	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const getTraveler = `
SELECT id, first_name, last_name, email, registering_app
FROM travelers
WHERE id = $1`

func (s *DB) GetTraveler(ctx context.Context, id int64) (*entity.Traveler, error) {
	return getOne(ctx, s, "GetTraveler", getTraveler, id, func(row pgx.Row, t *entity.Traveler) error {
		var app string
		if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.Email, &app); err != nil {
			return err
		}
		t.RegisteringApp = entity.BrandFromString(app)
		return nil
	})
}

// price is read as text so NUMERIC keeps its exact value on the way into decimal.
const getBooking = `
SELECT id, traveler_id, zone_id, origin_id, price::text, payment_method, created_at, pickup_scheduled_at
FROM bookings
WHERE id = $1`

func (s *DB) GetBooking(ctx context.Context, id int64) (*entity.Booking, error) {
	return getOne(ctx, s, "GetBooking", getBooking, id, func(row pgx.Row, b *entity.Booking) error {
		var price string
		err := row.Scan(&b.ID, &b.TravelerID, &b.ZoneID, &b.OriginID, &price,
			&b.PaymentMethod, &b.CreatedAt, &b.PickupScheduledAt)
		if err != nil {
			return err
		}

		if b.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("parse booking %d price %q: %w", id, price, err)
		}
		return nil
	})
}

const getZone = `
SELECT id, name, currency, time_zone
FROM zones
WHERE id = $1`

func (s *DB) GetZone(ctx context.Context, id int64) (*entity.Zone, error) {
	return getOne(ctx, s, "GetZone", getZone, id, func(row pgx.Row, z *entity.Zone) error {
		return row.Scan(&z.ID, &z.Name, &z.Currency, &z.TimeZone)
	})
}

const getLocation = `
SELECT id, zone_id, name
FROM locations
WHERE id = $1`

func (s *DB) GetLocation(ctx context.Context, id int64) (*entity.Location, error) {
	return getOne(ctx, s, "GetLocation", getLocation, id, func(row pgx.Row, l *entity.Location) error {
		return row.Scan(&l.ID, &l.ZoneID, &l.Name)
	})
}
