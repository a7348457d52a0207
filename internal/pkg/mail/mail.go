package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrRecipientRejected is returned when the provider accepts the call but refuses
// delivery to the recipient (rejected or invalid status).
var ErrRecipientRejected = errors.New("mail: recipient rejected by provider")

// Recipient is a single "to" address.
type Recipient struct {
	Email string
	Name  string
}

// Var is one named template merge variable.
type Var struct {
	Name    string
	Content string
}

// TemplateMessage is an email rendered by the provider from a stored template.
type TemplateMessage struct {
	// Template is the provider template slug.
	Template string
	// Subject overrides the template's subject line.
	Subject string
	// From is the sender address; implementations fall back to their default.
	From string
	// To lists the recipients.
	To []Recipient
	// Vars are sent as global merge variables.
	Vars []Var
	// InlineCSS asks the provider to inline stylesheet rules into the HTML.
	InlineCSS bool
}

// Result is the provider's per-recipient outcome.
type Result struct {
	Email        string
	Status       string
	ID           string
	RejectReason string
}

// Mailer abstracts the transactional email provider.
type Mailer interface {
	io.Closer
	// SendTemplate issues one send call and returns per-recipient results.
	SendTemplate(ctx context.Context, msg TemplateMessage) ([]Result, error)
}

// ProviderError is a non-2xx response decoded from the provider.
type ProviderError struct {
	HTTPStatus int
	Name       string
	Code       int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail: provider error %d %s: %s", e.HTTPStatus, e.Name, e.Message)
}
