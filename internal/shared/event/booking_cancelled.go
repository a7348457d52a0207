package event

const BookingCancelledDestination string = "booking_cancelled"
const BookingCancelledConsumerMailer string = "booking_cancelled_mailer"

type BookingCancelledMessage struct {
	BookingID int64 `json:"booking_id"`
}
