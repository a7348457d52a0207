package i18n

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogTranslate(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	tests := map[string]string{
		"user_mailer.booking_success_subject":     "Booking Confirmation",
		"user_mailer.cancelled_booking_subject":   "Booking Cancelled",
		"user_mailer.send_welcome_email_subject":  "Welcome to the Bridj family!",
		"jbird_mailer.booking_success_subject":    "Ready to fly!",
		"jbird_mailer.cancelled_booking_subject":  "Cancellation request received",
		"jbird_mailer.send_welcome_email_subject": "Welcome to the J-Bird community!",
	}
	for key, want := range tests {
		got, err := c.Translate(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	_, err = c.Translate("user_mailer.unknown_subject")
	assert.ErrorIs(t, err, ErrMissingTranslation)
}

func TestCatalogLocalize(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	brisbane, err := time.LoadLocation("Australia/Brisbane")
	require.NoError(t, err)

	pickup := time.Date(2021, time.January, 28, 4, 30, 0, 0, time.UTC).In(brisbane)
	booked := time.Date(2021, time.January, 23, 0, 0, 0, 0, time.UTC).In(brisbane)

	got, err := c.Localize(pickup, "trip_list")
	require.NoError(t, err)
	assert.Equal(t, "Thu 28/01", got)

	got, err = c.Localize(pickup, "time_only")
	require.NoError(t, err)
	assert.Equal(t, "14:30 AEST", got)

	got, err = c.Localize(booked, "date_and_time")
	require.NoError(t, err)
	assert.Equal(t, "23 Jan 2021 10:00 AEST", got)

	_, err = c.Localize(pickup, "long")
	assert.ErrorIs(t, err, ErrMissingFormat)
}

func TestCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
en-AU:
  user_mailer:
    booking_success_subject: "Your ride is booked"
  time:
    formats:
      trip_list: "%A %d %B"
`), 0o600))

	c, err := New(Options{Path: path})
	require.NoError(t, err)

	got, err := c.Translate("user_mailer.booking_success_subject")
	require.NoError(t, err)
	assert.Equal(t, "Your ride is booked", got)

	got, err = c.Translate("jbird_mailer.booking_success_subject")
	require.NoError(t, err)
	assert.Equal(t, "Ready to fly!", got)

	got, err = c.Localize(time.Date(2021, time.January, 28, 14, 30, 0, 0, time.UTC), "trip_list")
	require.NoError(t, err)
	assert.Equal(t, "Thursday 28 January", got)
}

func TestNewUnknownLocale(t *testing.T) {
	_, err := New(Options{Locale: "fr-FR"})
	assert.Error(t, err)
}
