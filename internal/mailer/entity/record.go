package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Traveler struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	RegisteringApp Brand
}

type Booking struct {
	ID                int64
	TravelerID        int64
	ZoneID            int64
	OriginID          int64
	Price             decimal.Decimal
	PaymentMethod     string
	CreatedAt         time.Time
	PickupScheduledAt time.Time
}

type Zone struct {
	ID       int64
	Name     string
	Currency string
	TimeZone string
}

type Location struct {
	ID     int64
	ZoneID int64
	Name   string
}
