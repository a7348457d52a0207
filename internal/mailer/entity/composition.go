package entity

import (
	"maps"
	"slices"
)

// Template variable names.
const (
	VarFirstName     = "FNAME"
	VarLastName      = "LNAME"
	VarOrigin        = "ORIGIN"
	VarTripPrice     = "TRIP_PRICE"
	VarDate          = "DATE"
	VarTime          = "TIME"
	VarBookingDate   = "BOOKING_DATE"
	VarPaymentMethod = "PAYMENT_METHOD"
)

// Locale time format names.
const (
	FormatTripList    = "trip_list"
	FormatTimeOnly    = "time_only"
	FormatDateAndTime = "date_and_time"
)

type Recipient struct {
	Email string
	Name  string
}

// Composition is a fully resolved email, ready for the gateway.
type Composition struct {
	Kind       Kind
	Template   string
	SubjectKey string
	Vars       map[string]string
	Recipient  Recipient
}

// VarNames returns the variable names in sorted order.
func (c Composition) VarNames() []string {
	return slices.Sorted(maps.Keys(c.Vars))
}
