package event

const BookingConfirmedDestination string = "booking_confirmed"
const BookingConfirmedConsumerMailer string = "booking_confirmed_mailer"

// BookingConfirmedMessage carries the amount actually charged, which may differ from the
// booking's stored price.
type BookingConfirmedMessage struct {
	TravelerID int64  `json:"traveler_id"`
	BookingID  int64  `json:"booking_id"`
	Price      string `json:"price"`
	Currency   string `json:"currency"`
}
