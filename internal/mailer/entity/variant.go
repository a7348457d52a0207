package entity

// Variant is the provider template slug and locale subject key of one email.
type Variant struct {
	Template   string
	SubjectKey string
}

var variants = map[Kind]map[Brand]Variant{
	KindBookingConfirmation: {
		BrandBridj: {Template: "admin-booking-success-au", SubjectKey: "user_mailer.booking_success_subject"},
		BrandJBird: {Template: "jbird-booking-confirmed-au", SubjectKey: "jbird_mailer.booking_success_subject"},
	},
	KindBookingCancellation: {
		BrandBridj: {Template: "admin-booking-cancel-au", SubjectKey: "user_mailer.cancelled_booking_subject"},
		BrandJBird: {Template: "jbird-booking-cancelled-au", SubjectKey: "jbird_mailer.cancelled_booking_subject"},
	},
	KindWelcome: {
		BrandBridj: {Template: "admin-welcome-email-au", SubjectKey: "user_mailer.send_welcome_email_subject"},
		BrandJBird: {Template: "jbird-welcome-au", SubjectKey: "jbird_mailer.send_welcome_email_subject"},
	},
}

// VariantFor returns the variant of kind for brand, falling back to DefaultBrand.
// ok is false only for an unknown kind.
func VariantFor(kind Kind, brand Brand) (v Variant, ok bool) {
	byBrand, ok := variants[kind]
	if !ok {
		return Variant{}, false
	}

	if v, ok = byBrand[brand]; ok {
		return v, true
	}

	return byBrand[DefaultBrand], true
}
