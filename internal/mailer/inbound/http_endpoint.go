package inbound

import (
	"github.com/bridj/tripmailer/internal/mailer/entity"
	"github.com/bridj/tripmailer/internal/mailer/usecase"
	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// SendBookingConfirmation sends the booking confirmation email.
// @Summary Send booking confirmation
// @Tags Mailer
// @Accept json
// @Param request body BookingConfirmationRequest true "Confirmation payload"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 404 {object} router.errorResponse "Traveler or booking not found"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 502 {object} router.errorResponse "Email provider error"
// @Router /api/v1/mailer/booking-confirmation [post]
func (h *HTTPEndpoint) SendBookingConfirmation(r *router.Request) (any, error) {
	var req BookingConfirmationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SendBookingConfirmation(r.Context(), usecase.BookingConfirmationInput{
		TravelerID: req.TravelerID,
		BookingID:  req.BookingID,
		Price:      req.Price,
		Currency:   req.Currency,
	})
}

// SendBookingCancellation sends the booking cancellation email.
// @Summary Send booking cancellation
// @Tags Mailer
// @Accept json
// @Param request body BookingCancellationRequest true "Cancellation payload"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Booking not found"
// @Failure 502 {object} router.errorResponse "Email provider error"
// @Router /api/v1/mailer/booking-cancellation [post]
func (h *HTTPEndpoint) SendBookingCancellation(r *router.Request) (any, error) {
	var req BookingCancellationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SendBookingCancellation(r.Context(), usecase.BookingCancellationInput{BookingID: req.BookingID})
}

// SendWelcome sends the welcome email.
// @Summary Send welcome email
// @Tags Mailer
// @Accept json
// @Param request body WelcomeRequest true "Welcome payload"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Traveler not found"
// @Failure 502 {object} router.errorResponse "Email provider error"
// @Router /api/v1/mailer/welcome [post]
func (h *HTTPEndpoint) SendWelcome(r *router.Request) (any, error) {
	var req WelcomeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.SendWelcome(r.Context(), usecase.WelcomeInput{TravelerID: req.TravelerID})
}

// Preview composes an email without sending it.
// @Summary Preview email
// @Tags Mailer
// @Accept json
// @Produce json
// @Param kind path string true "booking-confirmation, booking-cancellation or welcome"
// @Param request body PreviewRequest true "Preview payload"
// @Success 200 {object} router.successResponse{data=CompositionResponse} "Composed email"
// @Failure 404 {object} router.errorResponse "Unknown kind or record not found"
// @Router /api/v1/mailer/preview/{kind} [post]
func (h *HTTPEndpoint) Preview(r *router.Request) (any, error) {
	kind, ok := entity.KindFromString(r.GetParam("kind"))
	if !ok {
		return nil, goerror.NewBusiness("unknown email kind", goerror.CodeNotFound)
	}

	var req PreviewRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	c, err := h.uc.Preview(r.Context(), usecase.PreviewInput{
		Kind:       kind,
		TravelerID: req.TravelerID,
		BookingID:  req.BookingID,
		Price:      req.Price,
		Currency:   req.Currency,
		Brand:      req.Brand,
	})
	if err != nil {
		return nil, err
	}

	return newCompositionResponse(c), nil
}
