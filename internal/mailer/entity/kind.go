package entity

import "strings"

// Kind identifies a transactional email.
type Kind string

const (
	KindBookingConfirmation Kind = "booking_confirmation"
	KindBookingCancellation Kind = "booking_cancellation"
	KindWelcome             Kind = "welcome"
)

// KindFromString parses kind names, accepting '-' and '_' as separators.
// It returns false for unknown names.
func KindFromString(raw string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	switch k {
	case KindBookingConfirmation, KindBookingCancellation, KindWelcome:
		return k, true
	default:
		return "", false
	}
}

func (k Kind) String() string {
	return string(k)
}
