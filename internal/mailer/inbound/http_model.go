package inbound

import (
	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/shopspring/decimal"
)

type BookingConfirmationRequest struct {
	TravelerID int64           `json:"traveler_id"`
	BookingID  int64           `json:"booking_id"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

type BookingCancellationRequest struct {
	BookingID int64 `json:"booking_id"`
}

type WelcomeRequest struct {
	TravelerID int64 `json:"traveler_id"`
}

type PreviewRequest struct {
	TravelerID int64           `json:"traveler_id"`
	BookingID  int64           `json:"booking_id"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	Brand      string          `json:"brand"`
}

type RecipientResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type CompositionResponse struct {
	Kind       string            `json:"kind"`
	Template   string            `json:"template"`
	SubjectKey string            `json:"subject_key"`
	Recipient  RecipientResponse `json:"recipient"`
	Vars       map[string]string `json:"vars"`
}

func (CompositionResponse) Message() string {
	return "email has been composed"
}

func newCompositionResponse(c *entity.Composition) CompositionResponse {
	return CompositionResponse{
		Kind:       c.Kind.String(),
		Template:   c.Template,
		SubjectKey: c.SubjectKey,
		Recipient:  RecipientResponse{Email: c.Recipient.Email, Name: c.Recipient.Name},
		Vars:       c.Vars,
	}
}
