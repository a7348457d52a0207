package email

import (
	"context"
	"errors"
	"testing"

	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/i18n"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/bridj/tripmailer/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendTemplate(ctx context.Context, msg mail.TemplateMessage) ([]mail.Result, error) {
	args := m.Called(ctx, msg)
	v, _ := args.Get(0).([]mail.Result)
	return v, args.Error(1)
}

func (m *mockMailer) Close() error { return nil }

func newMail(t *testing.T, client mail.Mailer) *Mail {
	t.Helper()

	catalog, err := i18n.New(i18n.Options{})
	require.NoError(t, err)

	m, err := New(client, catalog, "no-reply@bridj.com", instrument.NewNoop())
	require.NoError(t, err)

	return m
}

func TestMail_SendEmail(t *testing.T) {
	ctx := context.Background()
	vars := map[string]string{"LNAME": "Duck", "FNAME": "Donald"}

	t.Run("sends one template call", func(t *testing.T) {
		client := new(mockMailer)
		want := mail.TemplateMessage{
			Template:  "admin-welcome-email-au",
			Subject:   "Welcome to the Bridj family!",
			From:      "no-reply@bridj.com",
			To:        []mail.Recipient{{Email: "donald@disney.com", Name: "Donald"}},
			Vars:      []mail.Var{{Name: "FNAME", Content: "Donald"}, {Name: "LNAME", Content: "Duck"}},
			InlineCSS: true,
		}
		client.On("SendTemplate", mock.Anything, want).
			Return([]mail.Result{{Email: "donald@disney.com", Status: "sent", ID: "abc"}}, nil).Once()

		err := newMail(t, client).SendEmail(ctx, "donald@disney.com", "Donald",
			"admin-welcome-email-au", "user_mailer.send_welcome_email_subject", vars)
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("missing subject sends nothing", func(t *testing.T) {
		client := new(mockMailer)

		err := newMail(t, client).SendEmail(ctx, "donald@disney.com", "Donald",
			"admin-welcome-email-au", "user_mailer.unknown", vars)
		assert.ErrorIs(t, err, i18n.ErrMissingTranslation)
		assert.Equal(t, goerror.CodeInternal, goerror.CodeOf(err))
		client.AssertNotCalled(t, "SendTemplate", mock.Anything, mock.Anything)
	})

	t.Run("provider errors map to upstream", func(t *testing.T) {
		tests := []struct {
			name string
			err  error
		}{
			{name: "rejected", err: mail.ErrRecipientRejected},
			{name: "provider", err: &mail.ProviderError{HTTPStatus: 500, Name: "GeneralError"}},
			{name: "transport", err: errors.New("dial tcp: timeout")},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				client := new(mockMailer)
				client.On("SendTemplate", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

				err := newMail(t, client).SendEmail(ctx, "donald@disney.com", "Donald",
					"admin-welcome-email-au", "user_mailer.send_welcome_email_subject", vars)
				assert.ErrorIs(t, err, tt.err)
				assert.Equal(t, goerror.CodeUpstream, goerror.CodeOf(err))
				client.AssertNumberOfCalls(t, "SendTemplate", 1)
			})
		}
	})
}
