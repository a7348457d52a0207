package event

const TravelerRegisteredDestination string = "traveler_registered"
const TravelerRegisteredConsumerMailer string = "traveler_registered_mailer"

type TravelerRegisteredMessage struct {
	TravelerID int64 `json:"traveler_id"`
}
